package job

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/security"
)

// --- モック ---

type mockJobRepo struct {
	createFn         func(ctx context.Context, post *model.JobPost) error
	findByIDFn       func(ctx context.Context, id string) (*model.JobPost, error)
	listFn           func(ctx context.Context) ([]*model.JobPost, error)
	listByPostedByFn func(ctx context.Context, employerID string) ([]*model.JobPost, error)
	updateOwnedFn    func(ctx context.Context, id, postedBy string, patch model.JobPatch) (*model.JobPost, error)
	deleteOwnedFn    func(ctx context.Context, id, postedBy string) (bool, error)
}

func (m *mockJobRepo) Create(ctx context.Context, post *model.JobPost) error {
	return m.createFn(ctx, post)
}
func (m *mockJobRepo) FindByID(ctx context.Context, id string) (*model.JobPost, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockJobRepo) List(ctx context.Context) ([]*model.JobPost, error) {
	return m.listFn(ctx)
}
func (m *mockJobRepo) ListByPostedBy(ctx context.Context, employerID string) ([]*model.JobPost, error) {
	return m.listByPostedByFn(ctx, employerID)
}
func (m *mockJobRepo) UpdateOwned(ctx context.Context, id, postedBy string, patch model.JobPatch) (*model.JobPost, error) {
	return m.updateOwnedFn(ctx, id, postedBy, patch)
}
func (m *mockJobRepo) DeleteOwned(ctx context.Context, id, postedBy string) (bool, error) {
	return m.deleteOwnedFn(ctx, id, postedBy)
}

const validJobID = "a3000000-0000-4000-8000-000000000001"

// --- テスト ---

// TestService_Create は求人作成と説明文のサニタイズを検証する。
func TestService_Create(t *testing.T) {
	var saved *model.JobPost
	repo := &mockJobRepo{
		createFn: func(ctx context.Context, post *model.JobPost) error {
			saved = post
			return nil
		},
	}
	svc := NewService(repo, security.NewDescriptionSanitizer())

	post, err := svc.Create(context.Background(), "emp-1", CreateJobInput{
		Title:       "バックエンドエンジニア",
		Description: `<p>Goでの開発</p><script>alert('xss')</script>`,
		Location:    "東京",
		Category:    "engineering",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if post.ID == "" {
		t.Error("expected generated ID")
	}
	if post.PostedBy != "emp-1" {
		t.Errorf("PostedBy = %q, want emp-1", post.PostedBy)
	}
	if strings.Contains(post.Description, "script") {
		t.Errorf("description not sanitized: %q", post.Description)
	}
	if !strings.Contains(post.Description, "<p>Goでの開発</p>") {
		t.Errorf("safe HTML removed: %q", post.Description)
	}
	if saved == nil {
		t.Fatal("expected repository Create to be called")
	}
	if saved.ID != post.ID {
		t.Error("saved post differs from returned post")
	}
}

// TestService_Create_RequiredFields はタイトル・説明文の必須チェックを検証する。
func TestService_Create_RequiredFields(t *testing.T) {
	repo := &mockJobRepo{
		createFn: func(ctx context.Context, post *model.JobPost) error {
			t.Error("Create should not be called for invalid input")
			return nil
		},
	}
	svc := NewService(repo, security.NewDescriptionSanitizer())

	tests := []struct {
		name  string
		input CreateJobInput
	}{
		{name: "タイトルが空", input: CreateJobInput{Title: "  ", Description: "desc"}},
		{name: "説明文が空", input: CreateJobInput{Title: "title", Description: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "emp-1", tt.input)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
				t.Errorf("expected INVALID_REQUEST error, got %v", err)
			}
		})
	}
}

// TestService_Update_SanitizesDescription は更新時の説明文サニタイズを検証する。
func TestService_Update_SanitizesDescription(t *testing.T) {
	repo := &mockJobRepo{
		updateOwnedFn: func(ctx context.Context, id, postedBy string, patch model.JobPatch) (*model.JobPost, error) {
			if patch.Description == nil {
				t.Fatal("expected description in patch")
			}
			if strings.Contains(*patch.Description, "script") {
				t.Errorf("description not sanitized before update: %q", *patch.Description)
			}
			return &model.JobPost{ID: id, PostedBy: postedBy, Description: *patch.Description}, nil
		},
	}
	svc := NewService(repo, security.NewDescriptionSanitizer())

	desc := `<p>更新後</p><script>x()</script>`
	_, err := svc.Update(context.Background(), "emp-1", validJobID, model.JobPatch{Description: &desc})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
}

// TestService_Update_NotFoundForNonOwner は所有者以外の更新がNotFoundになることを検証する。
// 所有権はリポジトリの (id, posted_by) 検索に畳み込まれているため、
// 他の雇用主には求人が存在しないように見える。
func TestService_Update_NotFoundForNonOwner(t *testing.T) {
	repo := &mockJobRepo{
		updateOwnedFn: func(ctx context.Context, id, postedBy string, patch model.JobPatch) (*model.JobPost, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, security.NewDescriptionSanitizer())

	title := "新タイトル"
	_, err := svc.Update(context.Background(), "emp-2", validJobID, model.JobPatch{Title: &title})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotFound {
		t.Errorf("expected JOB_NOT_FOUND, got %v", err)
	}
}

// TestService_Update_InvalidJobID は不正なIDがBadRequest相当になることを検証する。
func TestService_Update_InvalidJobID(t *testing.T) {
	svc := NewService(&mockJobRepo{}, security.NewDescriptionSanitizer())

	title := "新タイトル"
	_, err := svc.Update(context.Background(), "emp-1", "not-a-uuid", model.JobPatch{Title: &title})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidJobID {
		t.Errorf("expected INVALID_JOB_ID, got %v", err)
	}
}

// TestService_Delete は削除の成功と所有者不一致のNotFoundを検証する。
func TestService_Delete(t *testing.T) {
	t.Run("所有者による削除は成功する", func(t *testing.T) {
		repo := &mockJobRepo{
			deleteOwnedFn: func(ctx context.Context, id, postedBy string) (bool, error) {
				return true, nil
			},
		}
		svc := NewService(repo, security.NewDescriptionSanitizer())
		if err := svc.Delete(context.Background(), "emp-1", validJobID); err != nil {
			t.Errorf("Delete returned error: %v", err)
		}
	})

	t.Run("所有者以外の削除はNotFoundになる", func(t *testing.T) {
		repo := &mockJobRepo{
			deleteOwnedFn: func(ctx context.Context, id, postedBy string) (bool, error) {
				return false, nil
			},
		}
		svc := NewService(repo, security.NewDescriptionSanitizer())
		err := svc.Delete(context.Background(), "emp-2", validJobID)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeJobNotFound {
			t.Errorf("expected JOB_NOT_FOUND, got %v", err)
		}
	})

	t.Run("不正なIDはBadRequest相当になる", func(t *testing.T) {
		svc := NewService(&mockJobRepo{}, security.NewDescriptionSanitizer())
		err := svc.Delete(context.Background(), "emp-1", "###")
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidJobID {
			t.Errorf("expected INVALID_JOB_ID, got %v", err)
		}
	})
}

// TestService_ListMine は自身の投稿のみが返ることを検証する。
func TestService_ListMine(t *testing.T) {
	repo := &mockJobRepo{
		listByPostedByFn: func(ctx context.Context, employerID string) ([]*model.JobPost, error) {
			if employerID != "emp-1" {
				t.Errorf("employerID = %q, want emp-1", employerID)
			}
			return []*model.JobPost{
				{ID: "job-2", PostedBy: "emp-1"},
				{ID: "job-1", PostedBy: "emp-1"},
			}, nil
		},
	}
	svc := NewService(repo, security.NewDescriptionSanitizer())

	posts, err := svc.ListMine(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("ListMine returned error: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("len(posts) = %d, want 2", len(posts))
	}
}
