// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/jobboard/internal/model"
)

// ErrDuplicateApplication は(job_id, candidate_id)の一意制約違反を表す。
// 応募の重複チェックは事前検索だけでなくストアの一意制約で最終的に保証され、
// 同時リクエストの競合はこのエラーとして表面化する。
var ErrDuplicateApplication = errors.New("application already exists for this job and candidate")

// CandidateRepository は求職者アカウントの永続化インターフェース。
type CandidateRepository interface {
	// FindByID は指定IDの求職者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Candidate, error)

	// List は全求職者を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Candidate, error)

	// UpdateProfile はnilでないフィールドのみを更新し、更新後の求職者を返す。
	// 対象が存在しない場合はnilを返す。
	UpdateProfile(ctx context.Context, id string, patch model.CandidatePatch) (*model.Candidate, error)

	// SetPhoto はプロフィール写真のファイル名を差し替える。
	SetPhoto(ctx context.Context, id, filename string) error

	// SetResume は履歴書のファイル名を差し替える。
	SetResume(ctx context.Context, id, filename string) error

	// DeleteByID は指定IDの求職者を削除する。
	// 関連するcandidate_uploadsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// EmployerRepository は企業アカウントの永続化インターフェース。
type EmployerRepository interface {
	// FindByID は指定IDの企業を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Employer, error)

	// List は全企業を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Employer, error)

	// UpdateProfile はnilでないフィールドのみを更新し、更新後の企業を返す。
	// 対象が存在しない場合はnilを返す。
	UpdateProfile(ctx context.Context, id string, patch model.EmployerPatch) (*model.Employer, error)

	// DeleteByID は指定IDの企業を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// AdminRepository は管理者アカウントの永続化インターフェース。
type AdminRepository interface {
	// FindByEmail はメールアドレスで管理者を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)

	// Create は管理者を作成する。
	Create(ctx context.Context, admin *model.Admin) error
}

// JobRepository は求人投稿の永続化インターフェース。
type JobRepository interface {
	// Create は求人を作成する。
	Create(ctx context.Context, job *model.JobPost) error

	// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.JobPost, error)

	// List は全求人を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.JobPost, error)

	// ListByPostedBy は指定企業の求人を作成日時の降順で返す。
	ListByPostedBy(ctx context.Context, postedBy string) ([]*model.JobPost, error)

	// UpdateOwned は(id, postedBy)に一致する求人をnilでないフィールドのみ更新する。
	// 所有権は検索条件に畳み込まれ、非所有者には行が見えない。
	// 一致する求人が無い場合はnilを返す。
	UpdateOwned(ctx context.Context, id, postedBy string, patch model.JobPatch) (*model.JobPost, error)

	// DeleteOwned は(id, postedBy)に一致する求人を削除する。
	// 削除された場合はtrueを返す。関連する応募はCASCADE削除される。
	DeleteOwned(ctx context.Context, id, postedBy string) (bool, error)
}

// ApplicationRepository は応募の永続化インターフェース。
type ApplicationRepository interface {
	// Create は応募を作成する。
	// (job_id, candidate_id)の一意制約に違反した場合はErrDuplicateApplicationを返す。
	Create(ctx context.Context, app *model.Application) error

	// FindByJobAndCandidate は求人IDと求職者IDで応募を検索する。見つからない場合はnilを返す。
	FindByJobAndCandidate(ctx context.Context, jobID, candidateID string) (*model.Application, error)

	// ListByCandidateWithJob は求職者の応募一覧を求人プロジェクション付きで
	// 作成日時の降順で返す。
	ListByCandidateWithJob(ctx context.Context, candidateID string) ([]model.ApplicationWithJob, error)

	// ListByJobWithCandidate は求人への応募一覧を応募者プロジェクション付きで
	// 作成日時の降順で返す。パスワードは取得しない。
	ListByJobWithCandidate(ctx context.Context, jobID string) ([]model.ApplicationWithCandidate, error)
}

// UploadRepository はアップロード済みファイルメタデータの永続化インターフェース。
type UploadRepository interface {
	// Append はアップロードメタデータを追記する。既存レコードは変更されない。
	Append(ctx context.Context, uploads []*model.Upload) error

	// ListByCandidateID は求職者のアップロード一覧をアップロード日時の降順で返す。
	ListByCandidateID(ctx context.Context, candidateID string) ([]*model.Upload, error)
}
