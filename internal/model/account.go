// Package model はドメインモデルを定義する。
package model

import "time"

// Candidate は求職者アカウントを表す。
// Passwordはハッシュ済みの値を保持し、APIレスポンスには決して含めない。
type Candidate struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Mobile      string
	Password    string
	DateOfBirth *time.Time
	Category    string
	Address     string
	City        string
	State       string
	Photo       string // プロフィール写真の保存ファイル名
	Resume      string // 履歴書の保存ファイル名
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Employer は求人企業アカウントを表す。
type Employer struct {
	ID          string
	CompanyName string
	Email       string
	Mobile      string
	Password    string
	Address     string
	City        string
	State       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Admin は管理者アカウントを表す。
// provision-adminサブコマンドで冪等に作成される。
type Admin struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
}

// CandidatePatch は求職者プロフィールの部分更新を表す。
// nilフィールドは変更せず、既存の値を維持する。パスワードはここでは更新できない。
type CandidatePatch struct {
	FirstName *string
	LastName  *string
	Mobile    *string
	Category  *string
	Address   *string
	City      *string
	State     *string
}

// EmployerPatch は企業プロフィールの部分更新を表す。
type EmployerPatch struct {
	CompanyName *string
	Mobile      *string
	Address     *string
	City        *string
	State       *string
}

// Upload は求職者にぶら下がるアップロード済みファイルのメタデータを表す。
// 追記専用で、所有者以外からは参照できない。
type Upload struct {
	ID           string
	CandidateID  string
	Filename     string
	OriginalName string
	Mimetype     string
	Size         int64
	UploadedAt   time.Time
}
