package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

// PostgresAdminRepo はPostgreSQLを使用した管理者リポジトリ。
type PostgresAdminRepo struct {
	db *sql.DB
}

// NewPostgresAdminRepo はPostgresAdminRepoを生成する。
func NewPostgresAdminRepo(db *sql.DB) *PostgresAdminRepo {
	return &PostgresAdminRepo{db: db}
}

// FindByEmail はメールアドレスで管理者を検索する。見つからない場合はnilを返す。
func (r *PostgresAdminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	admin := &model.Admin{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password, created_at FROM admins WHERE email = $1`,
		email,
	).Scan(&admin.ID, &admin.Email, &admin.Password, &admin.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("管理者の検索に失敗しました: %w", err)
	}

	return admin, nil
}

// Create は管理者を作成する。
func (r *PostgresAdminRepo) Create(ctx context.Context, admin *model.Admin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password, created_at)
		 VALUES ($1, $2, $3, $4)`,
		admin.ID, admin.Email, admin.Password, admin.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("管理者の作成に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AdminRepository = (*PostgresAdminRepo)(nil)
