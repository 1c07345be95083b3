package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

const jobColumns = `id, title, description, location, category, posted_by, created_at, updated_at`

// PostgresJobRepo はPostgreSQLを使用した求人リポジトリ。
type PostgresJobRepo struct {
	db *sql.DB
}

// NewPostgresJobRepo はPostgresJobRepoを生成する。
func NewPostgresJobRepo(db *sql.DB) *PostgresJobRepo {
	return &PostgresJobRepo{db: db}
}

func scanJob(row interface{ Scan(...any) error }) (*model.JobPost, error) {
	j := &model.JobPost{}
	err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.Location, &j.Category,
		&j.PostedBy, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// Create は求人を作成する。
func (r *PostgresJobRepo) Create(ctx context.Context, job *model.JobPost) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_posts (id, title, description, location, category, posted_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.Title, job.Description, job.Location, job.Category,
		job.PostedBy, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("求人の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
func (r *PostgresJobRepo) FindByID(ctx context.Context, id string) (*model.JobPost, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM job_posts WHERE id = $1`,
		id,
	)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗しました: %w", err)
	}
	return j, nil
}

// List は全求人を作成日時の降順で返す。
func (r *PostgresJobRepo) List(ctx context.Context) ([]*model.JobPost, error) {
	return r.listWhere(ctx,
		`SELECT `+jobColumns+` FROM job_posts ORDER BY created_at DESC`,
	)
}

// ListByPostedBy は指定企業の求人を作成日時の降順で返す。
func (r *PostgresJobRepo) ListByPostedBy(ctx context.Context, postedBy string) ([]*model.JobPost, error) {
	return r.listWhere(ctx,
		`SELECT `+jobColumns+` FROM job_posts WHERE posted_by = $1 ORDER BY created_at DESC`,
		postedBy,
	)
}

func (r *PostgresJobRepo) listWhere(ctx context.Context, query string, args ...any) ([]*model.JobPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var jobs []*model.JobPost
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("求人行の読み取りに失敗しました: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("求人一覧の走査に失敗しました: %w", err)
	}
	return jobs, nil
}

// UpdateOwned は(id, postedBy)に一致する求人をnilでないフィールドのみ更新する。
// 所有権を検索条件に畳み込むため、非所有者からはNotFoundに見える。
func (r *PostgresJobRepo) UpdateOwned(ctx context.Context, id, postedBy string, patch model.JobPatch) (*model.JobPost, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE job_posts SET
			title       = COALESCE($3, title),
			description = COALESCE($4, description),
			location    = COALESCE($5, location),
			category    = COALESCE($6, category),
			updated_at  = NOW()
		 WHERE id = $1 AND posted_by = $2
		 RETURNING `+jobColumns,
		id, postedBy, patch.Title, patch.Description, patch.Location, patch.Category,
	)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("求人の更新に失敗しました: %w", err)
	}
	return j, nil
}

// DeleteOwned は(id, postedBy)に一致する求人を削除する。
// 削除された場合はtrueを返す。関連する応募はCASCADE削除される。
func (r *PostgresJobRepo) DeleteOwned(ctx context.Context, id, postedBy string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM job_posts WHERE id = $1 AND posted_by = $2`,
		id, postedBy,
	)
	if err != nil {
		return false, fmt.Errorf("求人の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ JobRepository = (*PostgresJobRepo)(nil)
