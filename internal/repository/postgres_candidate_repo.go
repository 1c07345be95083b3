package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

// candidateColumns は求職者取得で常にSELECTする列。パスワードも含むが、
// レスポンスへの露出はサービス層・ハンドラー層で遮断する。
const candidateColumns = `id, first_name, last_name, email, mobile, password,
	date_of_birth, category, address, city, state,
	COALESCE(photo, ''), COALESCE(resume, ''), created_at, updated_at`

// PostgresCandidateRepo はPostgreSQLを使用した求職者リポジトリ。
type PostgresCandidateRepo struct {
	db *sql.DB
}

// NewPostgresCandidateRepo はPostgresCandidateRepoを生成する。
func NewPostgresCandidateRepo(db *sql.DB) *PostgresCandidateRepo {
	return &PostgresCandidateRepo{db: db}
}

func scanCandidate(row interface{ Scan(...any) error }) (*model.Candidate, error) {
	c := &model.Candidate{}
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Mobile, &c.Password,
		&c.DateOfBirth, &c.Category, &c.Address, &c.City, &c.State,
		&c.Photo, &c.Resume, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByID は指定IDの求職者を取得する。見つからない場合はnilを返す。
func (r *PostgresCandidateRepo) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`,
		id,
	)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("求職者の取得に失敗しました: %w", err)
	}
	return c, nil
}

// List は全求職者を作成日時の降順で返す。
func (r *PostgresCandidateRepo) List(ctx context.Context) ([]*model.Candidate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("求職者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var candidates []*model.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("求職者行の読み取りに失敗しました: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("求職者一覧の走査に失敗しました: %w", err)
	}
	return candidates, nil
}

// UpdateProfile はnilでないフィールドのみを更新し、更新後の求職者を返す。
// 対象が存在しない場合はnilを返す。
func (r *PostgresCandidateRepo) UpdateProfile(ctx context.Context, id string, patch model.CandidatePatch) (*model.Candidate, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE candidates SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			mobile     = COALESCE($4, mobile),
			category   = COALESCE($5, category),
			address    = COALESCE($6, address),
			city       = COALESCE($7, city),
			state      = COALESCE($8, state),
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+candidateColumns,
		id, patch.FirstName, patch.LastName, patch.Mobile,
		patch.Category, patch.Address, patch.City, patch.State,
	)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("求職者プロフィールの更新に失敗しました: %w", err)
	}
	return c, nil
}

// SetPhoto はプロフィール写真のファイル名を差し替える。
func (r *PostgresCandidateRepo) SetPhoto(ctx context.Context, id, filename string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE candidates SET photo = $2, updated_at = NOW() WHERE id = $1`,
		id, filename,
	)
	if err != nil {
		return fmt.Errorf("プロフィール写真の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("求職者が見つかりません: %s", id)
	}
	return nil
}

// SetResume は履歴書のファイル名を差し替える。
func (r *PostgresCandidateRepo) SetResume(ctx context.Context, id, filename string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE candidates SET resume = $2, updated_at = NOW() WHERE id = $1`,
		id, filename,
	)
	if err != nil {
		return fmt.Errorf("履歴書の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("求職者が見つかりません: %s", id)
	}
	return nil
}

// DeleteByID は指定IDの求職者を削除する。
// 関連するcandidate_uploads、applicationsはCASCADE削除される。
func (r *PostgresCandidateRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM candidates WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("candidate not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ CandidateRepository = (*PostgresCandidateRepo)(nil)
