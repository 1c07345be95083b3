// Package account はアカウント管理のドメインロジックを提供する。
//
// 求職者・企業のプロフィール操作は常に認証済みアイデンティティのIDに
// スコープされ、任意のIDを受け付けない。APIレスポンスにパスワードを
// 含めないことはこの層で保証する。
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/repository"
)

// Service はアカウント管理のサービス層。
type Service struct {
	candidateRepo repository.CandidateRepository
	employerRepo  repository.EmployerRepository
	adminRepo     repository.AdminRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	candidateRepo repository.CandidateRepository,
	employerRepo repository.EmployerRepository,
	adminRepo repository.AdminRepository,
) *Service {
	return &Service{
		candidateRepo: candidateRepo,
		employerRepo:  employerRepo,
		adminRepo:     adminRepo,
	}
}

// stripCandidatePassword はパスワードハッシュを除いた求職者を返す。
func stripCandidatePassword(c *model.Candidate) *model.Candidate {
	if c == nil {
		return nil
	}
	stripped := *c
	stripped.Password = ""
	return &stripped
}

// stripEmployerPassword はパスワードハッシュを除いた企業を返す。
func stripEmployerPassword(e *model.Employer) *model.Employer {
	if e == nil {
		return nil
	}
	stripped := *e
	stripped.Password = ""
	return &stripped
}

// GetCandidateProfile は求職者自身のプロフィールを返す。パスワードは含まれない。
func (s *Service) GetCandidateProfile(ctx context.Context, candidateID string) (*model.Candidate, error) {
	c, err := s.candidateRepo.FindByID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("求職者プロフィールの取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewCandidateNotFoundError()
	}
	return stripCandidatePassword(c), nil
}

// UpdateCandidateProfile は求職者プロフィールをフィールド単位でマージ更新する。
// patchでnilのフィールドは既存値を保持する。
func (s *Service) UpdateCandidateProfile(ctx context.Context, candidateID string, patch model.CandidatePatch) (*model.Candidate, error) {
	c, err := s.candidateRepo.UpdateProfile(ctx, candidateID, patch)
	if err != nil {
		return nil, fmt.Errorf("求職者プロフィールの更新に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewCandidateNotFoundError()
	}
	return stripCandidatePassword(c), nil
}

// GetEmployerProfile は企業自身のプロフィールを返す。パスワードは含まれない。
func (s *Service) GetEmployerProfile(ctx context.Context, employerID string) (*model.Employer, error) {
	e, err := s.employerRepo.FindByID(ctx, employerID)
	if err != nil {
		return nil, fmt.Errorf("企業プロフィールの取得に失敗しました: %w", err)
	}
	if e == nil {
		return nil, model.NewEmployerNotFoundError()
	}
	return stripEmployerPassword(e), nil
}

// UpdateEmployerProfile は企業プロフィールをフィールド単位でマージ更新する。
func (s *Service) UpdateEmployerProfile(ctx context.Context, employerID string, patch model.EmployerPatch) (*model.Employer, error) {
	e, err := s.employerRepo.UpdateProfile(ctx, employerID, patch)
	if err != nil {
		return nil, fmt.Errorf("企業プロフィールの更新に失敗しました: %w", err)
	}
	if e == nil {
		return nil, model.NewEmployerNotFoundError()
	}
	return stripEmployerPassword(e), nil
}

// ListCandidates は全求職者を新しい順で返す。
// 企業向けの閲覧と管理者向けの一覧の両方で使用される。パスワードは含まれない。
func (s *Service) ListCandidates(ctx context.Context) ([]*model.Candidate, error) {
	candidates, err := s.candidateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("求職者一覧の取得に失敗しました: %w", err)
	}

	results := make([]*model.Candidate, len(candidates))
	for i, c := range candidates {
		results[i] = stripCandidatePassword(c)
	}
	return results, nil
}

// ListEmployers は全企業を新しい順で返す。管理者向け。パスワードは含まれない。
func (s *Service) ListEmployers(ctx context.Context) ([]*model.Employer, error) {
	employers, err := s.employerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("企業一覧の取得に失敗しました: %w", err)
	}

	results := make([]*model.Employer, len(employers))
	for i, e := range employers {
		results[i] = stripEmployerPassword(e)
	}
	return results, nil
}

// DeleteCandidate は求職者アカウントを削除する。管理者向け。
func (s *Service) DeleteCandidate(ctx context.Context, candidateID string) error {
	if _, err := uuid.Parse(candidateID); err != nil {
		return model.NewInvalidRequestError("求職者IDの形式が不正です")
	}

	c, err := s.candidateRepo.FindByID(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("求職者の取得に失敗しました: %w", err)
	}
	if c == nil {
		return model.NewCandidateNotFoundError()
	}

	if err := s.candidateRepo.DeleteByID(ctx, candidateID); err != nil {
		return fmt.Errorf("求職者の削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteEmployer は企業アカウントを削除する。管理者向け。
// 企業の求人とそれに紐づく応募はストア側でカスケード削除される。
func (s *Service) DeleteEmployer(ctx context.Context, employerID string) error {
	if _, err := uuid.Parse(employerID); err != nil {
		return model.NewInvalidRequestError("企業IDの形式が不正です")
	}

	e, err := s.employerRepo.FindByID(ctx, employerID)
	if err != nil {
		return fmt.Errorf("企業の取得に失敗しました: %w", err)
	}
	if e == nil {
		return model.NewEmployerNotFoundError()
	}

	if err := s.employerRepo.DeleteByID(ctx, employerID); err != nil {
		return fmt.Errorf("企業の削除に失敗しました: %w", err)
	}
	return nil
}

// ProvisionAdmin は管理者アカウントを冪等に作成する。
// 同じメールアドレスの管理者がすでに存在する場合は何もしない。
// プロセス起動の副作用ではなく、provision-adminサブコマンドから明示的に呼ばれる。
func (s *Service) ProvisionAdmin(ctx context.Context, email, password string) (created bool, err error) {
	if email == "" || password == "" {
		return false, model.NewInvalidRequestError("管理者のメールアドレスとパスワードは必須です")
	}

	existing, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("管理者の検索に失敗しました: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	admin := &model.Admin{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(hash),
		CreatedAt: time.Now(),
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("管理者の作成に失敗しました: %w", err)
	}
	return true, nil
}
