package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
)

// EmployerAccountServiceInterface は企業ハンドラーが必要とするアカウントサービス。
type EmployerAccountServiceInterface interface {
	GetEmployerProfile(ctx context.Context, employerID string) (*model.Employer, error)
	UpdateEmployerProfile(ctx context.Context, employerID string, patch model.EmployerPatch) (*model.Employer, error)
}

// EmployerHandler は企業プロフィールのHTTPハンドラー。
type EmployerHandler struct {
	accounts EmployerAccountServiceInterface
}

// NewEmployerHandler はEmployerHandlerを生成する。
func NewEmployerHandler(accounts EmployerAccountServiceInterface) *EmployerHandler {
	return &EmployerHandler{accounts: accounts}
}

// employerResponse は企業プロフィールのAPIレスポンス。パスワードは含めない。
type employerResponse struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Email       string    `json:"email"`
	Mobile      string    `json:"mobile"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEmployerResponse(e *model.Employer) employerResponse {
	return employerResponse{
		ID:          e.ID,
		CompanyName: e.CompanyName,
		Email:       e.Email,
		Mobile:      e.Mobile,
		Address:     e.Address,
		City:        e.City,
		State:       e.State,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// updateEmployerRequest は企業プロフィール更新のリクエストボディ。
type updateEmployerRequest struct {
	CompanyName *string `json:"company_name"`
	Mobile      *string `json:"mobile"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
}

// GetProfile は認証済み企業自身のプロフィールを返す。
// GET /api/employer/profile
func (h *EmployerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	employer, err := h.accounts.GetEmployerProfile(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if employer == nil {
		handleServiceError(w, model.NewEmployerNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, toEmployerResponse(employer))
}

// UpdateProfile は認証済み企業自身のプロフィールを部分更新する。
// PUT /api/employer/profile
func (h *EmployerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req updateEmployerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("リクエストボディの形式が不正です"))
		return
	}

	patch := model.EmployerPatch{
		CompanyName: req.CompanyName,
		Mobile:      req.Mobile,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
	}

	employer, err := h.accounts.UpdateEmployerProfile(r.Context(), identity.ID, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if employer == nil {
		handleServiceError(w, model.NewEmployerNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, toEmployerResponse(employer))
}
