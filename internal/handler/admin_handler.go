package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobboard/internal/model"
)

// AdminAccountServiceInterface は管理者ハンドラーが必要とするアカウントサービス。
type AdminAccountServiceInterface interface {
	ListCandidates(ctx context.Context) ([]*model.Candidate, error)
	ListEmployers(ctx context.Context) ([]*model.Employer, error)
	DeleteCandidate(ctx context.Context, candidateID string) error
	DeleteEmployer(ctx context.Context, employerID string) error
}

// AdminHandler は管理者向けアカウント管理のHTTPハンドラー。
type AdminHandler struct {
	accounts AdminAccountServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(accounts AdminAccountServiceInterface) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// ListCandidates は全求職者の一覧を返す。
// GET /api/admin/candidates
func (h *AdminHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.accounts.ListCandidates(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]candidateResponse, len(candidates))
	for i, c := range candidates {
		results[i] = toCandidateResponse(c)
	}

	writeJSON(w, http.StatusOK, results)
}

// ListEmployers は全企業の一覧を返す。
// GET /api/admin/employers
func (h *AdminHandler) ListEmployers(w http.ResponseWriter, r *http.Request) {
	employers, err := h.accounts.ListEmployers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]employerResponse, len(employers))
	for i, e := range employers {
		results[i] = toEmployerResponse(e)
	}

	writeJSON(w, http.StatusOK, results)
}

// DeleteCandidate は求職者アカウントを削除する。応募とアップロードも連鎖削除される。
// DELETE /api/admin/candidate/:id
func (h *AdminHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.accounts.DeleteCandidate(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteEmployer は企業アカウントを削除する。投稿求人とその応募も連鎖削除される。
// DELETE /api/admin/employer/:id
func (h *AdminHandler) DeleteEmployer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.accounts.DeleteEmployer(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
