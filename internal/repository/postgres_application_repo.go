package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/jobboard/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresApplicationRepo はPostgreSQLを使用した応募リポジトリ。
type PostgresApplicationRepo struct {
	db *sql.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: db}
}

// Create は応募を作成する。
// (job_id, candidate_id)の一意制約に違反した場合はErrDuplicateApplicationを返す。
// 事前チェックをすり抜けた同時リクエストもここで一方が必ず失敗する。
func (r *PostgresApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (id, job_id, candidate_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		app.ID, app.JobID, app.CandidateID, app.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("応募の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByJobAndCandidate は求人IDと求職者IDで応募を検索する。見つからない場合はnilを返す。
func (r *PostgresApplicationRepo) FindByJobAndCandidate(ctx context.Context, jobID, candidateID string) (*model.Application, error) {
	app := &model.Application{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, job_id, candidate_id, created_at
		 FROM applications WHERE job_id = $1 AND candidate_id = $2`,
		jobID, candidateID,
	).Scan(&app.ID, &app.JobID, &app.CandidateID, &app.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("応募の検索に失敗しました: %w", err)
	}

	return app, nil
}

// ListByCandidateWithJob は求職者の応募一覧を求人プロジェクション付きで
// 作成日時の降順で返す。
func (r *PostgresApplicationRepo) ListByCandidateWithJob(ctx context.Context, candidateID string) ([]model.ApplicationWithJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			a.id, a.job_id, a.candidate_id, a.created_at,
			j.title, e.company_name, j.location, j.category
		 FROM applications a
		 JOIN job_posts j ON a.job_id = j.id
		 JOIN employers e ON j.posted_by = e.id
		 WHERE a.candidate_id = $1
		 ORDER BY a.created_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []model.ApplicationWithJob
	for rows.Next() {
		var info model.ApplicationWithJob
		if err := rows.Scan(
			&info.ID, &info.JobID, &info.CandidateID, &info.CreatedAt,
			&info.JobTitle, &info.CompanyName, &info.JobLocation, &info.JobCategory,
		); err != nil {
			return nil, fmt.Errorf("応募行（求人情報付き）の読み取りに失敗しました: %w", err)
		}
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("応募一覧の走査に失敗しました: %w", err)
	}
	return results, nil
}

// ListByJobWithCandidate は求人への応募一覧を応募者プロジェクション付きで
// 作成日時の降順で返す。パスワード列はSELECTしない。
func (r *PostgresApplicationRepo) ListByJobWithCandidate(ctx context.Context, jobID string) ([]model.ApplicationWithCandidate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			a.id, a.job_id, a.candidate_id, a.created_at,
			c.first_name, c.last_name, c.email
		 FROM applications a
		 JOIN candidates c ON a.candidate_id = c.id
		 WHERE a.job_id = $1
		 ORDER BY a.created_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("応募者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []model.ApplicationWithCandidate
	for rows.Next() {
		var info model.ApplicationWithCandidate
		if err := rows.Scan(
			&info.ID, &info.JobID, &info.CandidateID, &info.CreatedAt,
			&info.FirstName, &info.LastName, &info.Email,
		); err != nil {
			return nil, fmt.Errorf("応募者行の読み取りに失敗しました: %w", err)
		}
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("応募者一覧の走査に失敗しました: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)
