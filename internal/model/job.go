// Package model はドメインモデルを定義する。
package model

import "time"

// JobPost は求人投稿を表す。
// PostedByは投稿した企業アカウントのIDで、更新・削除の所有権判定に使用する。
type JobPost struct {
	ID          string
	Title       string
	Description string // サニタイズ済みHTML
	Location    string
	Category    string
	PostedBy    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JobPatch は求人の部分更新を表す。
// nilフィールドは変更せず、既存の値を維持する。
type JobPatch struct {
	Title       *string
	Description *string
	Location    *string
	Category    *string
}
