// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/jobboard/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに認証済みアイデンティティを格納するためのキー。
var identityContextKey = contextKey("identity")

// TokenVerifier はベアラートークンの検証に必要なインターフェース。
// auth.Verifierの部分集合として定義する。
type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

// AuthFailureRecorder は認証失敗の計数に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type AuthFailureRecorder interface {
	RecordAuthFailure(reason string)
}

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証し、
// 認証済みアイデンティティをリクエストコンテキストに注入するミドルウェアを返す。
// トークン未提示と検証失敗は内部的に区別されるが、どちらも401で応答する。
// recorderはnilを許容する。
func NewAuthMiddleware(verifier TokenVerifier, recorder AuthFailureRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)

			identity, err := verifier.Verify(token)
			if err != nil {
				apiErr := model.ErrInvalidCredential
				reason := "invalid_credential"
				if errors.Is(err, model.ErrMissingCredential) {
					apiErr = model.ErrMissingCredential
					reason = "missing_credential"
				}
				if recorder != nil {
					recorder.RecordAuthFailure(reason)
				}
				WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからベアラートークンを取り出す。
// ヘッダーが無い、またはBearerスキームでない場合は空文字列を返す。
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireRole は指定された役割のアイデンティティのみを通過させるミドルウェアを返す。
// 認証ミドルウェアの後に配置すること。役割不一致は403で応答する。
func RequireRole(role model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.ErrMissingCredential)
				return
			}
			if identity.Role != role {
				WriteErrorResponse(w, http.StatusForbidden,
					model.NewForbiddenError(fmt.Sprintf("この操作には%s権限が必要です", role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole は指定された役割のいずれかを持つアイデンティティのみを通過させる
// ミドルウェアを返す。RequireRoleと同様に認証ミドルウェアの後に配置すること。
func RequireAnyRole(roles ...model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.ErrMissingCredential)
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteErrorResponse(w, http.StatusForbidden,
				model.NewForbiddenError("この操作を行う権限がありません"))
		})
	}
}

// IdentityFromContext はリクエストコンテキストから認証済みアイデンティティを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (*model.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok || identity == nil {
		return nil, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// ContextWithIdentity はコンテキストにアイデンティティを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
