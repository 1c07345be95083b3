package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/jobboard/internal/model"
)

// stubVerifier はトークン文字列ごとの応答を固定したTokenVerifier。
type stubVerifier struct {
	identities map[string]*model.Identity
}

func (v *stubVerifier) Verify(token string) (*model.Identity, error) {
	if token == "" {
		return nil, model.ErrMissingCredential
	}
	if identity, ok := v.identities[token]; ok {
		return identity, nil
	}
	return nil, model.ErrInvalidCredential
}

type stubRecorder struct {
	reasons []string
}

func (r *stubRecorder) RecordAuthFailure(reason string) {
	r.reasons = append(r.reasons, reason)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("エラーレスポンスのデコードに失敗: %v", err)
	}
	return body
}

// TestAuthMiddleware_ValidToken は有効なトークンでアイデンティティが注入されることを検証する。
func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &stubVerifier{identities: map[string]*model.Identity{
		"good-token": {ID: "cand-1", Role: model.RoleCandidate},
	}}
	mw := NewAuthMiddleware(verifier, nil)

	var gotIdentity *model.Identity
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromContext(r.Context())
		if err != nil {
			t.Errorf("IdentityFromContext returned error: %v", err)
		}
		gotIdentity = identity
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/candidate/profile", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotIdentity == nil || gotIdentity.ID != "cand-1" || gotIdentity.Role != model.RoleCandidate {
		t.Errorf("unexpected identity: %+v", gotIdentity)
	}
}

// TestAuthMiddleware_MissingToken はトークン未提示が401かつMISSING_CREDENTIALに
// なることを検証する。無効トークンとはエラーコードで区別される。
func TestAuthMiddleware_MissingToken(t *testing.T) {
	recorder := &stubRecorder{}
	mw := NewAuthMiddleware(&stubVerifier{}, recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/candidate/profile", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeError(t, w)
	if body.Code != model.ErrCodeMissingCredential {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeMissingCredential)
	}
	if len(recorder.reasons) != 1 || recorder.reasons[0] != "missing_credential" {
		t.Errorf("recorded reasons = %v, want [missing_credential]", recorder.reasons)
	}
}

// TestAuthMiddleware_InvalidToken は無効なトークンが401かつINVALID_CREDENTIALに
// なることを検証する。
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	recorder := &stubRecorder{}
	mw := NewAuthMiddleware(&stubVerifier{}, recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/candidate/profile", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeError(t, w)
	if body.Code != model.ErrCodeInvalidCredential {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidCredential)
	}
	if len(recorder.reasons) != 1 || recorder.reasons[0] != "invalid_credential" {
		t.Errorf("recorded reasons = %v, want [invalid_credential]", recorder.reasons)
	}
}

// TestExtractBearerToken はAuthorizationヘッダーの解析を検証する。
func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "ヘッダー無し", header: "", want: ""},
		{name: "Bearerスキーム", header: "Bearer abc123", want: "abc123"},
		{name: "小文字のbearerも許容する", header: "bearer abc123", want: "abc123"},
		{name: "Basicスキームは拒否する", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "トークン無しのBearerは空", header: "Bearer ", want: ""},
		{name: "スキームのみ", header: "Bearer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

// TestRequireRole は役割ゲートの通過と拒否を検証する。
func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		identity   *model.Identity
		required   model.Role
		wantStatus int
	}{
		{
			name:       "役割一致で通過する",
			identity:   &model.Identity{ID: "emp-1", Role: model.RoleEmployer},
			required:   model.RoleEmployer,
			wantStatus: http.StatusOK,
		},
		{
			name:       "役割不一致は403になる",
			identity:   &model.Identity{ID: "cand-1", Role: model.RoleCandidate},
			required:   model.RoleEmployer,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "管理者でも指定外の役割なら403になる",
			identity:   &model.Identity{ID: "admin-1", Role: model.RoleAdmin},
			required:   model.RoleCandidate,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "アイデンティティ無しは401になる",
			identity:   nil,
			required:   model.RoleEmployer,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := RequireRole(tt.required)
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/jobs/my-jobs", nil)
			if tt.identity != nil {
				req = req.WithContext(ContextWithIdentity(req.Context(), tt.identity))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden {
				body := decodeError(t, w)
				if body.Code != model.ErrCodeForbidden {
					t.Errorf("code = %q, want %q", body.Code, model.ErrCodeForbidden)
				}
			}
		})
	}
}

func TestRequireAnyRole(t *testing.T) {
	tests := []struct {
		name       string
		identity   *model.Identity
		allowed    []model.Role
		wantStatus int
	}{
		{
			name:       "許可リストのいずれかに一致すれば通過する",
			identity:   &model.Identity{ID: "admin-1", Role: model.RoleAdmin},
			allowed:    []model.Role{model.RoleEmployer, model.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "いずれにも一致しなければ403になる",
			identity:   &model.Identity{ID: "cand-1", Role: model.RoleCandidate},
			allowed:    []model.Role{model.RoleEmployer, model.RoleAdmin},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "アイデンティティ無しは401になる",
			identity:   nil,
			allowed:    []model.Role{model.RoleEmployer},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := RequireAnyRole(tt.allowed...)
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/candidate/all", nil)
			if tt.identity != nil {
				req = req.WithContext(ContextWithIdentity(req.Context(), tt.identity))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
