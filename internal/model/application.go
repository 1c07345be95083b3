// Package model はドメインモデルを定義する。
package model

import "time"

// Application は求職者と求人の応募関係を表す。
// (JobID, CandidateID) の組につき高々1件しか存在しない。
// 作成後は不変で、求人削除時にCASCADEで削除される。
type Application struct {
	ID          string
	JobID       string
	CandidateID string
	CreatedAt   time.Time
}

// ApplicationWithJob は応募に参照先求人の読み取り専用プロジェクションを
// 結合したモデル。求職者の応募一覧で返す。
type ApplicationWithJob struct {
	Application
	JobTitle    string
	CompanyName string
	JobLocation string
	JobCategory string
}

// ApplicationWithCandidate は応募に応募者のプロジェクションを結合したモデル。
// 求人所有者と管理者の応募者一覧で返す。パスワードは含めない。
type ApplicationWithCandidate struct {
	Application
	FirstName string
	LastName  string
	Email     string
}
