package handler

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/upload"
)

// maxMultipartMemory はmultipartフォームのメモリ上限。超過分は一時ファイルに落ちる。
const maxMultipartMemory = 8 << 20

// CandidateAccountServiceInterface は求職者ハンドラーが必要とするアカウントサービス。
type CandidateAccountServiceInterface interface {
	GetCandidateProfile(ctx context.Context, candidateID string) (*model.Candidate, error)
	UpdateCandidateProfile(ctx context.Context, candidateID string, patch model.CandidatePatch) (*model.Candidate, error)
	ListCandidates(ctx context.Context) ([]*model.Candidate, error)
}

// UploadServiceInterface は求職者ハンドラーが必要とするアップロードサービス。
type UploadServiceInterface interface {
	SavePhoto(ctx context.Context, candidateID string, in upload.FileInput) (string, error)
	SaveResume(ctx context.Context, candidateID string, in upload.FileInput) (string, error)
	SaveFiles(ctx context.Context, candidateID string, inputs []upload.FileInput) ([]*model.Upload, error)
	ListUploads(ctx context.Context, candidateID string) ([]*model.Upload, error)
}

// UploadRecorder はアップロード計数に必要なインターフェース。
type UploadRecorder interface {
	RecordUploadStored(count int)
}

// CandidateHandler は求職者プロフィールとアップロードのHTTPハンドラー。
type CandidateHandler struct {
	accounts CandidateAccountServiceInterface
	uploads  UploadServiceInterface
	metrics  UploadRecorder
}

// NewCandidateHandler はCandidateHandlerを生成する。metricsはnilを許容する。
func NewCandidateHandler(accounts CandidateAccountServiceInterface, uploads UploadServiceInterface, metrics UploadRecorder) *CandidateHandler {
	return &CandidateHandler{
		accounts: accounts,
		uploads:  uploads,
		metrics:  metrics,
	}
}

// candidateResponse は求職者プロフィールのAPIレスポンス。パスワードは含めない。
type candidateResponse struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Mobile      string     `json:"mobile"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Category    string     `json:"category"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Photo       string     `json:"photo,omitempty"`
	Resume      string     `json:"resume,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toCandidateResponse(c *model.Candidate) candidateResponse {
	return candidateResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Mobile:      c.Mobile,
		DateOfBirth: c.DateOfBirth,
		Category:    c.Category,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		Photo:       c.Photo,
		Resume:      c.Resume,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// uploadResponse はアップロード済みファイルのAPIレスポンス。
type uploadResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Mimetype     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func toUploadResponses(uploads []*model.Upload) []uploadResponse {
	results := make([]uploadResponse, len(uploads))
	for i, u := range uploads {
		results[i] = uploadResponse{
			ID:           u.ID,
			Filename:     u.Filename,
			OriginalName: u.OriginalName,
			Mimetype:     u.Mimetype,
			Size:         u.Size,
			UploadedAt:   u.UploadedAt,
		}
	}
	return results
}

// updateCandidateRequest は求職者プロフィール更新のリクエストボディ。
// 省略されたフィールドは変更しない。
type updateCandidateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Mobile    *string `json:"mobile"`
	Category  *string `json:"category"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
}

// GetProfile は認証済み求職者自身のプロフィールを返す。
// GET /api/candidate/profile
func (h *CandidateHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	candidate, err := h.accounts.GetCandidateProfile(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if candidate == nil {
		handleServiceError(w, model.NewCandidateNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

// UpdateProfile は認証済み求職者自身のプロフィールを部分更新する。
// PUT /api/candidate/profile
func (h *CandidateHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req updateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("リクエストボディの形式が不正です"))
		return
	}

	patch := model.CandidatePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mobile:    req.Mobile,
		Category:  req.Category,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
	}

	candidate, err := h.accounts.UpdateCandidateProfile(r.Context(), identity.ID, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if candidate == nil {
		handleServiceError(w, model.NewCandidateNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

// fileInputFromHeader はmultipartのファイルパートを開いてFileInputへ変換する。
// 返したFileInputの利用後はclose関数を呼ぶこと。
func fileInputFromHeader(header *multipart.FileHeader) (upload.FileInput, func(), error) {
	file, err := header.Open()
	if err != nil {
		return upload.FileInput{}, nil, err
	}
	in := upload.FileInput{
		OriginalName: header.Filename,
		Mimetype:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		Content:      file,
	}
	return in, func() { file.Close() }, nil
}

// singleFileInput はフォームフィールド名fieldの単一ファイルを取り出す。
func singleFileInput(r *http.Request, field string) (upload.FileInput, func(), error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return upload.FileInput{}, nil, model.NewNoFileUploadedError()
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return upload.FileInput{}, nil, model.NewNoFileUploadedError()
	}
	return fileInputFromHeader(r.MultipartForm.File[field][0])
}

// UploadPhoto はプロフィール写真を保存し、ファイル名をプロフィールへ反映する。
// POST /api/candidate/upload/photo （フォームフィールド: photo）
func (h *CandidateHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	in, closeFile, err := singleFileInput(r, "photo")
	if err != nil {
		handleServiceError(w, err)
		return
	}
	defer closeFile()

	filename, err := h.uploads.SavePhoto(r.Context(), identity.ID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUploadStored(1)
	}

	writeJSON(w, http.StatusOK, map[string]string{"filename": filename})
}

// UploadResume は履歴書を保存し、ファイル名をプロフィールへ反映する。
// POST /api/candidate/upload/resume （フォームフィールド: resume）
func (h *CandidateHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	in, closeFile, err := singleFileInput(r, "resume")
	if err != nil {
		handleServiceError(w, err)
		return
	}
	defer closeFile()

	filename, err := h.uploads.SaveResume(r.Context(), identity.ID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUploadStored(1)
	}

	writeJSON(w, http.StatusOK, map[string]string{"filename": filename})
}

// UploadFiles は複数ファイルをまとめて保存し、メタデータを記録する。
// POST /api/candidate/uploads （フォームフィールド: files）
func (h *CandidateHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		handleServiceError(w, model.NewNoFileUploadedError())
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		handleServiceError(w, model.NewNoFileUploadedError())
		return
	}

	headers := r.MultipartForm.File["files"]
	inputs := make([]upload.FileInput, 0, len(headers))
	closers := make([]func(), 0, len(headers))
	defer func() {
		for _, closeFile := range closers {
			closeFile()
		}
	}()

	for _, header := range headers {
		in, closeFile, err := fileInputFromHeader(header)
		if err != nil {
			handleServiceError(w, model.NewInvalidRequestError("アップロードファイルを読み取れません"))
			return
		}
		closers = append(closers, closeFile)
		inputs = append(inputs, in)
	}

	uploads, err := h.uploads.SaveFiles(r.Context(), identity.ID, inputs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUploadStored(len(uploads))
	}

	writeJSON(w, http.StatusCreated, toUploadResponses(uploads))
}

// ListUploads は認証済み求職者自身のアップロード一覧を返す。
// GET /api/candidate/uploads
func (h *CandidateHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	uploads, err := h.uploads.ListUploads(r.Context(), identity.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUploadResponses(uploads))
}

// ListAll は求職者の一覧を返す。企業と管理者のみ利用できる。
// GET /api/candidate/all
func (h *CandidateHandler) ListAll(w http.ResponseWriter, r *http.Request) {
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
