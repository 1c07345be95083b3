// Package auth はベアラートークンの検証とIdentityの導出を提供する。
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/jobboard/internal/model"
)

// nestedClaims は旧トークンのネストされたクレーム形式を表す。
type nestedClaims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// tokenClaims は受理する全クレーム形式の和集合。
// 互換性のため以下の2形式を受理する:
//  1. ネスト形式: { "user": { "id": ..., "role": ... } }
//  2. フラット形式: { "id": ..., "role": ... }（idの別名として "_id" も可）
type tokenClaims struct {
	jwt.RegisteredClaims
	ID       string        `json:"id,omitempty"`
	LegacyID string        `json:"_id,omitempty"`
	Role     string        `json:"role,omitempty"`
	User     *nestedClaims `json:"user,omitempty"`
}

// Verifier はHS256署名のベアラートークンを検証し、Identityを導出する。
// 署名シークレットは生成時に明示的に渡す。グローバル状態は持たない。
type Verifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewVerifier はVerifierを生成する。
// maxAgeはIssueで発行するトークンの有効期間として使用する。
func NewVerifier(secret string, maxAge time.Duration) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Verify はトークン文字列を検証しIdentityを返す。
// トークンが空の場合はErrMissingCredential、
// 署名・期限・形式の検証に失敗した場合はErrInvalidCredentialを返す。
// 両者は外部的には同じ401として応答するが、内部では区別する。
func (v *Verifier) Verify(tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, model.ErrMissingCredential
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil || !token.Valid {
		return nil, model.ErrInvalidCredential
	}

	// 主体IDの解決: ネスト形式 → フラット形式 → 旧フィールド(_id)
	id := ""
	if claims.User != nil && claims.User.ID != "" {
		id = claims.User.ID
	} else if claims.ID != "" {
		id = claims.ID
	} else if claims.LegacyID != "" {
		id = claims.LegacyID
	}
	if id == "" {
		return nil, model.ErrInvalidCredential
	}

	// 役割の解決: フラット形式 → ネスト形式 → 既定値 "user"
	role := claims.Role
	if role == "" && claims.User != nil {
		role = claims.User.Role
	}

	return &model.Identity{
		ID:   id,
		Role: model.NormalizeRole(role),
	}, nil
}

// Issue は指定した主体IDと役割のトークンをフラット形式で発行する。
// 有効期間はVerifier生成時のmaxAgeに従う。
func (v *Verifier) Issue(id string, role model.Role) (string, error) {
	now := v.now()
	claims := &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.maxAge)),
		},
		ID:   id,
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
