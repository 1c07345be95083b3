package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
)

// ApplicationServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	// Apply は求職者の応募を作成する。同一ペアの重複は拒否される。
	Apply(ctx context.Context, candidateID, jobID string) (*model.Application, error)
	// ListOwn は求職者自身の応募一覧を求人投影付きで返す。
	ListOwn(ctx context.Context, candidateID string) ([]model.ApplicationWithJob, error)
	// ListApplicants は求人への応募者一覧を応募者投影付きで返す。
	ListApplicants(ctx context.Context, identity *model.Identity, jobID string) ([]model.ApplicationWithCandidate, error)
}

// ApplicationRecorder は応募の計数に必要なインターフェース。
type ApplicationRecorder interface {
	RecordApplicationSubmitted()
	RecordDuplicateApplicationRejected()
}

// ApplicationHandler は応募管理のHTTPハンドラー。
type ApplicationHandler struct {
	service ApplicationServiceInterface
	metrics ApplicationRecorder
}

// NewApplicationHandler はApplicationHandlerを生成する。metricsはnilを許容する。
func NewApplicationHandler(service ApplicationServiceInterface, metrics ApplicationRecorder) *ApplicationHandler {
	return &ApplicationHandler{
		service: service,
		metrics: metrics,
	}
}

// applicationResponse は応募のAPIレスポンス。
type applicationResponse struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	CandidateID string    `json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// applicationWithJobResponse は求人投影付きの応募レスポンス。
type applicationWithJobResponse struct {
	applicationResponse
	Job struct {
		Title       string `json:"title"`
		CompanyName string `json:"company_name"`
		Location    string `json:"location"`
		Category    string `json:"category"`
	} `json:"job"`
}

// applicantResponse は応募者投影付きの応募レスポンス。
// 応募者のパスワードは決して含まれない。
type applicantResponse struct {
	applicationResponse
	Applicant struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	} `json:"applicant"`
}

func toApplicationResponse(app *model.Application) applicationResponse {
	return applicationResponse{
		ID:          app.ID,
		JobID:       app.JobID,
		CandidateID: app.CandidateID,
		CreatedAt:   app.CreatedAt,
	}
}

// Apply は求人への応募を作成する。
// POST /api/applications/apply/:jobId （レガシー別名: POST /api/jobs/apply/:jobId）
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "jobId")

	app, err := h.service.Apply(r.Context(), identity.ID, jobID)
	if err != nil {
		var apiErr *model.APIError
		if h.metrics != nil && errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDuplicateApplication {
			h.metrics.RecordDuplicateApplicationRejected()
		}
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordApplicationSubmitted()
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(app))
}

// ListMyApplications は求職者自身の応募一覧を返す。
// GET /api/applications/my-applications
func (h *ApplicationHandler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	apps, err := h.service.ListOwn(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]applicationWithJobResponse, len(apps))
	for i, app := range apps {
		resp := applicationWithJobResponse{
			applicationResponse: toApplicationResponse(&app.Application),
		}
		resp.Job.Title = app.JobTitle
		resp.Job.CompanyName = app.CompanyName
		resp.Job.Location = app.JobLocation
		resp.Job.Category = app.JobCategory
		results[i] = resp
	}

	writeJSON(w, http.StatusOK, results)
}

// ListApplicants は求人への応募者一覧を返す。
// GET /api/applications/job/:jobId
func (h *ApplicationHandler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "jobId")

	apps, err := h.service.ListApplicants(r.Context(), identity, jobID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]applicantResponse, len(apps))
	for i, app := range apps {
		resp := applicantResponse{
			applicationResponse: toApplicationResponse(&app.Application),
		}
		resp.Applicant.FirstName = app.FirstName
		resp.Applicant.LastName = app.LastName
		resp.Applicant.Email = app.Email
		results[i] = resp
	}

	writeJSON(w, http.StatusOK, results)
}
