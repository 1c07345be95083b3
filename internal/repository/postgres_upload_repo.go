package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

// PostgresUploadRepo はPostgreSQLを使用したアップロードメタデータリポジトリ。
type PostgresUploadRepo struct {
	db *sql.DB
}

// NewPostgresUploadRepo はPostgresUploadRepoを生成する。
func NewPostgresUploadRepo(db *sql.DB) *PostgresUploadRepo {
	return &PostgresUploadRepo{db: db}
}

// Append はアップロードメタデータを同一トランザクションで追記する。
// 追記専用であり、既存レコードの更新・削除は行わない。
func (r *PostgresUploadRepo) Append(ctx context.Context, uploads []*model.Upload) error {
	if len(uploads) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range uploads {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO candidate_uploads (id, candidate_id, filename, original_name, mimetype, size, uploaded_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			u.ID, u.CandidateID, u.Filename, u.OriginalName, u.Mimetype, u.Size, u.UploadedAt,
		)
		if err != nil {
			return fmt.Errorf("アップロードメタデータの追記に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByCandidateID は求職者のアップロード一覧をアップロード日時の降順で返す。
func (r *PostgresUploadRepo) ListByCandidateID(ctx context.Context, candidateID string) ([]*model.Upload, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, candidate_id, filename, original_name, mimetype, size, uploaded_at
		 FROM candidate_uploads WHERE candidate_id = $1 ORDER BY uploaded_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("アップロード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var uploads []*model.Upload
	for rows.Next() {
		u := &model.Upload{}
		if err := rows.Scan(&u.ID, &u.CandidateID, &u.Filename, &u.OriginalName, &u.Mimetype, &u.Size, &u.UploadedAt); err != nil {
			return nil, fmt.Errorf("アップロード行の読み取りに失敗しました: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("アップロード一覧の走査に失敗しました: %w", err)
	}
	return uploads, nil
}

// compile-time interface check
var _ UploadRepository = (*PostgresUploadRepo)(nil)
