// Package model はドメインモデルを定義する。
package model

// Role はアカウントの役割を表す。
type Role string

const (
	// RoleCandidate は求職者アカウントの役割。
	RoleCandidate Role = "candidate"
	// RoleEmployer は求人企業アカウントの役割。
	RoleEmployer Role = "employer"
	// RoleAdmin は管理者アカウントの役割。
	RoleAdmin Role = "admin"
)

// NormalizeRole はトークンに含まれる役割文字列をRoleに正規化する。
// 旧トークンの既定役割 "user" は候補者と同等に扱う。
func NormalizeRole(s string) Role {
	switch s {
	case "employer":
		return RoleEmployer
	case "admin":
		return RoleAdmin
	case "candidate", "user", "":
		return RoleCandidate
	default:
		return Role(s)
	}
}

// Identity は検証済みクレデンシャルから導出された認証主体を表す。
// 永続化はせず、リクエストコンテキストにのみ存在する。
type Identity struct {
	ID   string
	Role Role
}
