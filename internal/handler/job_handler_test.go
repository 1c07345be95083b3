package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobboard/internal/job"
	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
)

// --- モック定義 ---

// mockJobService はJobServiceInterfaceのモック実装。
type mockJobService struct {
	createFn   func(ctx context.Context, employerID string, input job.CreateJobInput) (*model.JobPost, error)
	listFn     func(ctx context.Context) ([]*model.JobPost, error)
	listMineFn func(ctx context.Context, employerID string) ([]*model.JobPost, error)
	updateFn   func(ctx context.Context, employerID, jobID string, patch model.JobPatch) (*model.JobPost, error)
	deleteFn   func(ctx context.Context, employerID, jobID string) error
}

func (m *mockJobService) Create(ctx context.Context, employerID string, input job.CreateJobInput) (*model.JobPost, error) {
	if m.createFn != nil {
		return m.createFn(ctx, employerID, input)
	}
	return nil, nil
}

func (m *mockJobService) List(ctx context.Context) ([]*model.JobPost, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockJobService) ListMine(ctx context.Context, employerID string) ([]*model.JobPost, error) {
	if m.listMineFn != nil {
		return m.listMineFn(ctx, employerID)
	}
	return nil, nil
}

func (m *mockJobService) Update(ctx context.Context, employerID, jobID string, patch model.JobPatch) (*model.JobPost, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, employerID, jobID, patch)
	}
	return nil, nil
}

func (m *mockJobService) Delete(ctx context.Context, employerID, jobID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, employerID, jobID)
	}
	return nil
}

// mockRecorder はMetricsRecorderのモック実装。呼び出し回数を記録する。
type mockRecorder struct {
	authFailures       []string
	httpStatuses       []int
	latencies          int
	jobsCreated        int
	applications       int
	duplicatesRejected int
	uploadsStored      int
}

func (m *mockRecorder) RecordAuthFailure(reason string) {
	m.authFailures = append(m.authFailures, reason)
}

func (m *mockRecorder) RecordHTTPStatus(statusCode int) {
	m.httpStatuses = append(m.httpStatuses, statusCode)
}
func (m *mockRecorder) RecordRequestLatency(duration time.Duration) { m.latencies++ }
func (m *mockRecorder) RecordJobCreated()                           { m.jobsCreated++ }
func (m *mockRecorder) RecordApplicationSubmitted()                 { m.applications++ }
func (m *mockRecorder) RecordDuplicateApplicationRejected()         { m.duplicatesRejected++ }
func (m *mockRecorder) RecordUploadStored(count int)                { m.uploadsStored += count }

var _ MetricsRecorder = (*mockRecorder)(nil)

// --- テストヘルパー ---

// withIdentity はテスト用にリクエストコンテキストに認証済みアイデンティティを注入するヘルパー。
func withIdentity(r *http.Request, id string, role model.Role) *http.Request {
	ctx := middleware.ContextWithIdentity(r.Context(), &model.Identity{ID: id, Role: role})
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// --- POST /api/jobs/post テスト ---

func TestJobHandler_CreateJob_Success(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := &mockJobService{
		createFn: func(ctx context.Context, employerID string, input job.CreateJobInput) (*model.JobPost, error) {
			if employerID != "employer-1" {
				t.Errorf("employerID = %q, want %q", employerID, "employer-1")
			}
			if input.Title != "バックエンドエンジニア" {
				t.Errorf("title = %q, want %q", input.Title, "バックエンドエンジニア")
			}
			return &model.JobPost{
				ID:          "job-1",
				Title:       input.Title,
				Description: input.Description,
				Location:    input.Location,
				Category:    input.Category,
				PostedBy:    employerID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}, nil
		},
	}
	rec := &mockRecorder{}
	h := NewJobHandler(svc, rec)

	body := `{"title":"バックエンドエンジニア","description":"<p>Goでの開発</p>","location":"東京","category":"engineering"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/post", bytes.NewBufferString(body))
	req = withIdentity(req, "employer-1", model.RoleEmployer)
	w := httptest.NewRecorder()

	h.CreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["id"] != "job-1" {
		t.Errorf("id = %v, want %q", result["id"], "job-1")
	}
	if result["posted_by"] != "employer-1" {
		t.Errorf("posted_by = %v, want %q", result["posted_by"], "employer-1")
	}
	if rec.jobsCreated != 1 {
		t.Errorf("jobsCreated = %d, want 1", rec.jobsCreated)
	}
}

func TestJobHandler_CreateJob_InvalidBody(t *testing.T) {
	svc := &mockJobService{}
	rec := &mockRecorder{}
	h := NewJobHandler(svc, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/post", bytes.NewBufferString("{invalid json"))
	req = withIdentity(req, "employer-1", model.RoleEmployer)
	w := httptest.NewRecorder()

	h.CreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if rec.jobsCreated != 0 {
		t.Errorf("jobsCreated = %d, want 0", rec.jobsCreated)
	}
}

func TestJobHandler_CreateJob_ValidationError(t *testing.T) {
	svc := &mockJobService{
		createFn: func(ctx context.Context, employerID string, input job.CreateJobInput) (*model.JobPost, error) {
			return nil, model.NewInvalidRequestError("タイトルは必須です")
		},
	}
	h := NewJobHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/post", bytes.NewBufferString(`{"title":""}`))
	req = withIdentity(req, "employer-1", model.RoleEmployer)
	w := httptest.NewRecorder()

	h.CreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	result := parseAPIErrorResponse(t, w)
	if result["code"] != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", result["code"], model.ErrCodeInvalidRequest)
	}
}

func TestJobHandler_CreateJob_NoIdentity(t *testing.T) {
	h := NewJobHandler(&mockJobService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/post", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()

	h.CreateJob(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- GET /api/jobs/all テスト ---

func TestJobHandler_ListAllJobs_Success(t *testing.T) {
	svc := &mockJobService{
		listFn: func(ctx context.Context) ([]*model.JobPost, error) {
			return []*model.JobPost{
				{ID: "job-1", Title: "求人A", PostedBy: "employer-1"},
				{ID: "job-2", Title: "求人B", PostedBy: "employer-2"},
			}, nil
		},
	}
	h := NewJobHandler(svc, nil)

	// 認証なしでも参照できる
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/all", nil)
	w := httptest.NewRecorder()

	h.ListAllJobs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("result length = %d, want 2", len(result))
	}
	if result[0]["id"] != "job-1" {
		t.Errorf("id = %v, want %q", result[0]["id"], "job-1")
	}
}

// --- GET /api/jobs/my-jobs テスト ---

func TestJobHandler_ListMyJobs_FiltersByEmployer(t *testing.T) {
	svc := &mockJobService{
		listMineFn: func(ctx context.Context, employerID string) ([]*model.JobPost, error) {
			if employerID != "employer-1" {
				t.Errorf("employerID = %q, want %q", employerID, "employer-1")
			}
			return []*model.JobPost{{ID: "job-1", PostedBy: "employer-1"}}, nil
		},
	}
	h := NewJobHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/my-jobs", nil)
	req = withIdentity(req, "employer-1", model.RoleEmployer)
	w := httptest.NewRecorder()

	h.ListMyJobs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("result length = %d, want 1", len(result))
	}
}

// --- PUT /api/jobs/{jobId} テスト ---

func TestJobHandler_UpdateJob_Success(t *testing.T) {
	svc := &mockJobService{
		updateFn: func(ctx context.Context, employerID, jobID string, patch model.JobPatch) (*model.JobPost, error) {
			if jobID != "job-1" {
				t.Errorf("jobID = %q, want %q", jobID, "job-1")
			}
			if patch.Title == nil || *patch.Title != "新タイトル" {
				t.Errorf("patch.Title = %v, want %q", patch.Title, "新タイトル")
			}
			if patch.Location != nil {
				t.Errorf("patch.Location = %v, want nil", patch.Location)
			}
			return &model.JobPost{ID: "job-1", Title: "新タイトル", PostedBy: employerID}, nil
		},
	}
	h := NewJobHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/jobs/job-1", bytes.NewBufferString(`{"title":"新タイトル"}`))
	req = withIdentity(req, "employer-1", model.RoleEmployer)
	req = withChiURLParam(req, "jobId", "job-1")
	w := httptest.NewRecorder()

	h.UpdateJob(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestJobHandler_UpdateJob_NotOwnerReturnsNotFound(t *testing.T) {
	svc := &mockJobService{
		updateFn: func(ctx context.Context, employerID, jobID string, patch model.JobPatch) (*model.JobPost, error) {
			return nil, model.NewJobNotFoundError(jobID)
		},
	}
	h := NewJobHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/jobs/job-1", bytes.NewBufferString(`{"title":"x"}`))
	req = withIdentity(req, "employer-2", model.RoleEmployer)
	req = withChiURLParam(req, "jobId", "job-1")
	w := httptest.NewRecorder()

	h.UpdateJob(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	result := parseAPIErrorResponse(t, w)
	if result["code"] != model.ErrCodeJobNotFound {
		t.Errorf("code = %q, want %q", result["code"], model.ErrCodeJobNotFound)
	}
}

// --- DELETE /api/jobs/{jobId} テスト ---

func TestJobHandler_DeleteJob(t *testing.T) {
	tests := []struct {
		name       string
		deleteErr  error
		wantStatus int
	}{
		{name: "成功時は204", deleteErr: nil, wantStatus: http.StatusNoContent},
		{name: "存在しない求人は404", deleteErr: model.NewJobNotFoundError("job-x"), wantStatus: http.StatusNotFound},
		{name: "不正なIDは400", deleteErr: model.NewInvalidJobIDError("not-a-uuid"), wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockJobService{
				deleteFn: func(ctx context.Context, employerID, jobID string) error {
					return tt.deleteErr
				},
			}
			h := NewJobHandler(svc, nil)

			req := httptest.NewRequest(http.MethodDelete, "/api/jobs/job-1", nil)
			req = withIdentity(req, "employer-1", model.RoleEmployer)
			req = withChiURLParam(req, "jobId", "job-1")
			w := httptest.NewRecorder()

			h.DeleteJob(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
