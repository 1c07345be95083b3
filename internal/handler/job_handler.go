package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobboard/internal/job"
	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
)

// JobServiceInterface は求人ハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	// Create は新しい求人を作成する。説明文はサニタイズされる。
	Create(ctx context.Context, employerID string, input job.CreateJobInput) (*model.JobPost, error)
	// List はすべての求人を新しい順で返す。
	List(ctx context.Context) ([]*model.JobPost, error)
	// ListMine は雇用主自身の求人を新しい順で返す。
	ListMine(ctx context.Context, employerID string) ([]*model.JobPost, error)
	// Update は求人をフィールド単位でマージ更新する。
	Update(ctx context.Context, employerID, jobID string, patch model.JobPatch) (*model.JobPost, error)
	// Delete は求人を削除する。
	Delete(ctx context.Context, employerID, jobID string) error
}

// JobCreatedRecorder は求人作成の計数に必要なインターフェース。
type JobCreatedRecorder interface {
	RecordJobCreated()
}

// JobHandler は求人管理のHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
	metrics JobCreatedRecorder
}

// NewJobHandler はJobHandlerを生成する。metricsはnilを許容する。
func NewJobHandler(service JobServiceInterface, metrics JobCreatedRecorder) *JobHandler {
	return &JobHandler{
		service: service,
		metrics: metrics,
	}
}

// jobResponse は求人のAPIレスポンス。
type jobResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	PostedBy    string    `json:"posted_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toJobResponse(post *model.JobPost) jobResponse {
	return jobResponse{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		Location:    post.Location,
		Category:    post.Category,
		PostedBy:    post.PostedBy,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
}

func toJobResponses(posts []*model.JobPost) []jobResponse {
	results := make([]jobResponse, len(posts))
	for i, post := range posts {
		results[i] = toJobResponse(post)
	}
	return results
}

// createJobRequest は求人作成リクエストのボディ。
type createJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
}

// updateJobRequest は求人部分更新リクエストのボディ。
// 省略されたフィールドは既存値を維持する。
type updateJobRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Category    *string `json:"category"`
}

// CreateJob は新しい求人を作成する。
// POST /api/jobs/post
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	post, err := h.service.Create(r.Context(), identity.ID, job.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordJobCreated()
	}

	writeJSON(w, http.StatusCreated, toJobResponse(post))
}

// ListAllJobs はすべての求人を返す。認証不要。
// GET /api/jobs/all
func (h *JobHandler) ListAllJobs(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponses(posts))
}

// ListMyJobs は雇用主自身の求人を返す。
// GET /api/jobs/my-jobs
func (h *JobHandler) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	posts, err := h.service.ListMine(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponses(posts))
}

// UpdateJob は求人をフィールド単位でマージ更新する。
// PUT /api/jobs/:jobId
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "jobId")

	var req updateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	post, err := h.service.Update(r.Context(), identity.ID, jobID, model.JobPatch{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(post))
}

// DeleteJob は求人を削除する。
// DELETE /api/jobs/:jobId
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "jobId")

	if err := h.service.Delete(r.Context(), identity.ID, jobID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
