// Package job は求人投稿のドメインロジックを提供する。
package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/repository"
	"github.com/hitoshi/jobboard/internal/security"
)

// CreateJobInput は求人作成の入力フィールド。
type CreateJobInput struct {
	Title       string
	Description string
	Location    string
	Category    string
}

// Service は求人投稿のサービス層。
// 作成、一覧取得、更新、削除のビジネスロジックを提供する。
// 更新と削除は (id, posted_by) でスコープされるため、
// 所有者以外には存在しない求人として扱われる。
type Service struct {
	jobRepo   repository.JobRepository
	sanitizer security.DescriptionSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(jobRepo repository.JobRepository, sanitizer security.DescriptionSanitizerService) *Service {
	return &Service{
		jobRepo:   jobRepo,
		sanitizer: sanitizer,
	}
}

// Create は新しい求人を作成する。
// 説明文は保存前にサニタイズされる。
func (s *Service) Create(ctx context.Context, employerID string, input CreateJobInput) (*model.JobPost, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewInvalidRequestError("タイトルは必須です")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, model.NewInvalidRequestError("説明文は必須です")
	}

	now := time.Now()
	post := &model.JobPost{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: s.sanitizer.Sanitize(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Category:    strings.TrimSpace(input.Category),
		PostedBy:    employerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.jobRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("求人の作成に失敗しました: %w", err)
	}

	return post, nil
}

// List はすべての求人を新しい順で返す。認証不要の公開一覧。
func (s *Service) List(ctx context.Context) ([]*model.JobPost, error) {
	posts, err := s.jobRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// ListMine は雇用主自身が投稿した求人を新しい順で返す。
func (s *Service) ListMine(ctx context.Context, employerID string) ([]*model.JobPost, error) {
	posts, err := s.jobRepo.ListByPostedBy(ctx, employerID)
	if err != nil {
		return nil, fmt.Errorf("投稿済み求人の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// Update は求人をフィールド単位でマージ更新する。
// patchでnilのフィールドは既存値を保持する。
// (jobID, employerID) に一致する求人がない場合はNotFoundを返す。
// 所有者以外が更新を試みた場合も同じくNotFoundになる。
func (s *Service) Update(ctx context.Context, employerID, jobID string, patch model.JobPatch) (*model.JobPost, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, model.NewInvalidJobIDError(jobID)
	}

	if patch.Description != nil {
		sanitized := s.sanitizer.Sanitize(*patch.Description)
		patch.Description = &sanitized
	}

	post, err := s.jobRepo.UpdateOwned(ctx, jobID, employerID, patch)
	if err != nil {
		return nil, fmt.Errorf("求人の更新に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewJobNotFoundError(jobID)
	}

	return post, nil
}

// Delete は求人を削除する。関連する応募はストア側でカスケード削除される。
// (jobID, employerID) に一致する求人がない場合はNotFoundを返す。
func (s *Service) Delete(ctx context.Context, employerID, jobID string) error {
	if _, err := uuid.Parse(jobID); err != nil {
		return model.NewInvalidJobIDError(jobID)
	}

	deleted, err := s.jobRepo.DeleteOwned(ctx, jobID, employerID)
	if err != nil {
		return fmt.Errorf("求人の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewJobNotFoundError(jobID)
	}

	return nil
}
