package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

const employerColumns = `id, company_name, email, mobile, password,
	address, city, state, created_at, updated_at`

// PostgresEmployerRepo はPostgreSQLを使用した企業リポジトリ。
type PostgresEmployerRepo struct {
	db *sql.DB
}

// NewPostgresEmployerRepo はPostgresEmployerRepoを生成する。
func NewPostgresEmployerRepo(db *sql.DB) *PostgresEmployerRepo {
	return &PostgresEmployerRepo{db: db}
}

func scanEmployer(row interface{ Scan(...any) error }) (*model.Employer, error) {
	e := &model.Employer{}
	err := row.Scan(
		&e.ID, &e.CompanyName, &e.Email, &e.Mobile, &e.Password,
		&e.Address, &e.City, &e.State, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindByID は指定IDの企業を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployerRepo) FindByID(ctx context.Context, id string) (*model.Employer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+employerColumns+` FROM employers WHERE id = $1`,
		id,
	)
	e, err := scanEmployer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("企業の取得に失敗しました: %w", err)
	}
	return e, nil
}

// List は全企業を作成日時の降順で返す。
func (r *PostgresEmployerRepo) List(ctx context.Context) ([]*model.Employer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employerColumns+` FROM employers ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("企業一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var employers []*model.Employer
	for rows.Next() {
		e, err := scanEmployer(rows)
		if err != nil {
			return nil, fmt.Errorf("企業行の読み取りに失敗しました: %w", err)
		}
		employers = append(employers, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("企業一覧の走査に失敗しました: %w", err)
	}
	return employers, nil
}

// UpdateProfile はnilでないフィールドのみを更新し、更新後の企業を返す。
// 対象が存在しない場合はnilを返す。
func (r *PostgresEmployerRepo) UpdateProfile(ctx context.Context, id string, patch model.EmployerPatch) (*model.Employer, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE employers SET
			company_name = COALESCE($2, company_name),
			mobile       = COALESCE($3, mobile),
			address      = COALESCE($4, address),
			city         = COALESCE($5, city),
			state        = COALESCE($6, state),
			updated_at   = NOW()
		 WHERE id = $1
		 RETURNING `+employerColumns,
		id, patch.CompanyName, patch.Mobile, patch.Address, patch.City, patch.State,
	)
	e, err := scanEmployer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("企業プロフィールの更新に失敗しました: %w", err)
	}
	return e, nil
}

// DeleteByID は指定IDの企業を削除する。
// 企業の求人とその応募はCASCADE削除される。
func (r *PostgresEmployerRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM employers WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete employer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("employer not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ EmployerRepository = (*PostgresEmployerRepo)(nil)
