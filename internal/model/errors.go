// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, job, application, account, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingCredential    = "MISSING_CREDENTIAL"
	ErrCodeInvalidCredential    = "INVALID_CREDENTIAL"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInvalidJobID         = "INVALID_JOB_ID"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeJobNotFound          = "JOB_NOT_FOUND"
	ErrCodeCandidateNotFound    = "CANDIDATE_NOT_FOUND"
	ErrCodeEmployerNotFound     = "EMPLOYER_NOT_FOUND"
	ErrCodeDuplicateApplication = "DUPLICATE_APPLICATION"
	ErrCodeNoFileUploaded       = "NO_FILE_UPLOADED"
	ErrCodeUploadTooLarge       = "UPLOAD_TOO_LARGE"
)

// ErrMissingCredential はベアラートークンが提示されなかった場合のエラー。
// ErrInvalidCredentialとは内部的に区別するが、どちらも401として応答する。
var ErrMissingCredential = &APIError{
	Code:     ErrCodeMissingCredential,
	Message:  "認証トークンが提示されていません。",
	Category: "auth",
	Action:   "Authorizationヘッダーにベアラートークンを設定してください。",
}

// ErrInvalidCredential はトークンの検証に失敗した場合のエラー。
var ErrInvalidCredential = &APIError{
	Code:     ErrCodeInvalidCredential,
	Message:  "認証トークンが無効です。",
	Category: "auth",
	Action:   "再度ログインしてトークンを取得し直してください。",
}

// NewForbiddenError は役割または所有権の不一致によるアクセス拒否エラーを生成する。
func NewForbiddenError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("この操作を行う権限がありません: %s", reason),
		Category: "auth",
		Action:   "適切な役割のアカウントでログインしてください。",
	}
}

// NewInvalidJobIDError は不正な形式の求人IDエラーを生成する。
func NewInvalidJobIDError(jobID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidJobID,
		Message:  fmt.Sprintf("求人IDの形式が不正です: %s", jobID),
		Category: "validation",
		Action:   "正しい求人IDを指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディ不正のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewJobNotFoundError は求人未検出エラーを生成する。
func NewJobNotFoundError(jobID string) *APIError {
	return &APIError{
		Code:     ErrCodeJobNotFound,
		Message:  fmt.Sprintf("指定された求人が見つかりません: %s", jobID),
		Category: "job",
		Action:   "求人IDを確認してください。",
	}
}

// NewCandidateNotFoundError は求職者アカウント未検出エラーを生成する。
func NewCandidateNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCandidateNotFound,
		Message:  "求職者アカウントが見つかりません。",
		Category: "account",
		Action:   "ログインし直してください。",
	}
}

// NewEmployerNotFoundError は企業アカウント未検出エラーを生成する。
func NewEmployerNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeEmployerNotFound,
		Message:  "企業アカウントが見つかりません。",
		Category: "account",
		Action:   "ログインし直してください。",
	}
}

// NewDuplicateApplicationError は同一求人への重複応募エラーを生成する。
func NewDuplicateApplicationError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateApplication,
		Message:  "この求人にはすでに応募しています。",
		Category: "application",
		Action:   "応募一覧から応募状況を確認してください。",
	}
}

// NewNoFileUploadedError はファイル未添付エラーを生成する。
func NewNoFileUploadedError() *APIError {
	return &APIError{
		Code:     ErrCodeNoFileUploaded,
		Message:  "ファイルがアップロードされていません。",
		Category: "validation",
		Action:   "アップロードするファイルを添付してください。",
	}
}

// NewUploadTooLargeError はファイルサイズ超過エラーを生成する。
func NewUploadTooLargeError(maxSize int64) *APIError {
	return &APIError{
		Code:     ErrCodeUploadTooLarge,
		Message:  fmt.Sprintf("ファイルサイズが上限（%dバイト）を超えています。", maxSize),
		Category: "validation",
		Action:   "ファイルサイズを小さくして再度お試しください。",
	}
}
