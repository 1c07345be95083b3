// Package application は求人応募のドメインロジックを提供する。
//
// 応募は (求人, 求職者) のペアごとに高々1件という不変条件を持つ。
// サービス層の事前チェックに加え、ストアの一意制約で同時リクエストの
// 競合も閉じる。応募は作成後に変更されない。
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/policy"
	"github.com/hitoshi/jobboard/internal/repository"
)

// Service は求人応募のサービス層。
type Service struct {
	appRepo repository.ApplicationRepository
	jobRepo repository.JobRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(appRepo repository.ApplicationRepository, jobRepo repository.JobRepository) *Service {
	return &Service{
		appRepo: appRepo,
		jobRepo: jobRepo,
	}
}

// Apply は求職者の求人への応募を作成する。
// 求人IDの形式不正はBadRequest、求人未検出はNotFound、
// 同一ペアの既存応募はDuplicateApplicationを返す。
// 事前チェックをすり抜けた同時リクエストはストアの一意制約で拒否され、
// 同じくDuplicateApplicationとして扱われる。
func (s *Service) Apply(ctx context.Context, candidateID, jobID string) (*model.Application, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, model.NewInvalidJobIDError(jobID)
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError(jobID)
	}

	existing, err := s.appRepo.FindByJobAndCandidate(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("応募の重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateApplicationError()
	}

	app := &model.Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		CandidateID: candidateID,
		CreatedAt:   time.Now(),
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			return nil, model.NewDuplicateApplicationError()
		}
		return nil, fmt.Errorf("応募の作成に失敗しました: %w", err)
	}

	return app, nil
}

// ListOwn は求職者自身の応募一覧を新しい順で返す。
// 各応募には参照先求人の読み取り専用投影（タイトル・会社名・勤務地・カテゴリ）が付く。
func (s *Service) ListOwn(ctx context.Context, candidateID string) ([]model.ApplicationWithJob, error) {
	apps, err := s.appRepo.ListByCandidateWithJob(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return apps, nil
}

// ListApplicants は求人への応募者一覧を新しい順で返す。
// 閲覧は管理者または求人を投稿した企業アカウント本人に限られる。
// 求人の存在確認を認可判定より先に行うため、存在しない求人IDは
// ForbiddenではなくNotFoundになる。
// 各応募には応募者の読み取り専用投影（氏名・メールアドレス）が付き、
// パスワードは決して含まれない。
func (s *Service) ListApplicants(ctx context.Context, identity *model.Identity, jobID string) ([]model.ApplicationWithCandidate, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, model.NewInvalidJobIDError(jobID)
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	if job == nil {
		return nil, model.NewJobNotFoundError(jobID)
	}

	if !policy.CanViewApplicants(identity, job) {
		return nil, model.NewForbiddenError("この求人の応募者を閲覧できるのは投稿した企業または管理者のみです")
	}

	apps, err := s.appRepo.ListByJobWithCandidate(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("応募者一覧の取得に失敗しました: %w", err)
	}
	return apps, nil
}
