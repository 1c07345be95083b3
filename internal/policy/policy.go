// Package policy は役割と所有権に基づく認可判定を提供する。
// 参照先リソースの存在確認は呼び出し側（サービス層）が先に行う。
// 存在しないリソースはNotFoundであり、ここでのForbidden判定より優先される。
package policy

import "github.com/hitoshi/jobboard/internal/model"

// CanMutateJob は求人の更新・削除可否を判定する。
// 投稿した企業アカウント本人のみ許可する。
func CanMutateJob(identity *model.Identity, job *model.JobPost) bool {
	if identity == nil || job == nil {
		return false
	}
	return identity.Role == model.RoleEmployer && identity.ID == job.PostedBy
}

// CanViewApplicants は求人の応募者一覧の閲覧可否を判定する。
// 管理者、または求人を投稿した企業アカウント本人に許可する。
func CanViewApplicants(identity *model.Identity, job *model.JobPost) bool {
	if identity == nil || job == nil {
		return false
	}
	if identity.Role == model.RoleAdmin {
		return true
	}
	return identity.Role == model.RoleEmployer && identity.ID == job.PostedBy
}

// CanApply は求人への応募可否を判定する。求職者のみ許可する。
func CanApply(identity *model.Identity) bool {
	return identity != nil && identity.Role == model.RoleCandidate
}

// CanListAccounts は全アカウント一覧の閲覧可否を判定する。管理者のみ許可する。
func CanListAccounts(identity *model.Identity) bool {
	return identity != nil && identity.Role == model.RoleAdmin
}

// CanBrowseCandidates は求職者一覧（企業向け）の閲覧可否を判定する。
func CanBrowseCandidates(identity *model.Identity) bool {
	return identity != nil && identity.Role == model.RoleEmployer
}
