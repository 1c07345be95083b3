// Package upload は求職者のファイルアップロードのドメインロジックを提供する。
//
// 保存先ファイル名は <candidateID>-<unixナノ秒>-<乱数サフィックス><拡張子> で
// 一意化し、元のファイル名はメタデータとしてのみ保持する。保存されたファイルは
// 静的パス /uploads/ 配下で配信される。
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/repository"
)

// FileInput はアップロードされた1ファイルの入力を表す。
type FileInput struct {
	OriginalName string
	Mimetype     string
	Size         int64
	Content      io.Reader
}

// Service はファイルアップロードのサービス層。
type Service struct {
	candidateRepo repository.CandidateRepository
	uploadRepo    repository.UploadRepository
	dir           string
	maxSize       int64
	now           func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// dirは保存先ディレクトリ、maxSizeは1ファイルあたりの上限バイト数。
func NewService(
	candidateRepo repository.CandidateRepository,
	uploadRepo repository.UploadRepository,
	dir string,
	maxSize int64,
) *Service {
	return &Service{
		candidateRepo: candidateRepo,
		uploadRepo:    uploadRepo,
		dir:           dir,
		maxSize:       maxSize,
		now:           time.Now,
	}
}

// storeFile はファイルをディスクに書き込み、保存ファイル名を返す。
// 書き込み中にmaxSizeを超えた場合はファイルを削除してエラーを返す。
func (s *Service) storeFile(candidateID string, in FileInput) (string, error) {
	if in.Content == nil {
		return "", model.NewNoFileUploadedError()
	}
	if in.Size > s.maxSize {
		return "", model.NewUploadTooLargeError(s.maxSize)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("アップロードディレクトリの作成に失敗しました: %w", err)
	}

	// タイムスタンプだけでは同一バッチ内の同時保存で衝突しうるため乱数サフィックスを付ける
	ext := filepath.Ext(in.OriginalName)
	suffix := uuid.NewString()[:8]
	filename := fmt.Sprintf("%s-%d-%s%s", candidateID, s.now().UnixNano(), suffix, ext)
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("ファイルの作成に失敗しました: %w", err)
	}
	defer f.Close()

	// 申告サイズを信用せず、書き込み量でも上限を強制する
	written, err := io.Copy(f, io.LimitReader(in.Content, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", model.NewUploadTooLargeError(s.maxSize)
	}

	return filename, nil
}

// SavePhoto はプロフィール写真を保存し、求職者の写真スロットを差し替える。
// 保存ファイル名を返す。
func (s *Service) SavePhoto(ctx context.Context, candidateID string, in FileInput) (string, error) {
	filename, err := s.storeFile(candidateID, in)
	if err != nil {
		return "", err
	}

	if err := s.candidateRepo.SetPhoto(ctx, candidateID, filename); err != nil {
		os.Remove(filepath.Join(s.dir, filename))
		return "", fmt.Errorf("プロフィール写真の登録に失敗しました: %w", err)
	}
	return filename, nil
}

// SaveResume は履歴書を保存し、求職者の履歴書スロットを差し替える。
// 保存ファイル名を返す。
func (s *Service) SaveResume(ctx context.Context, candidateID string, in FileInput) (string, error) {
	filename, err := s.storeFile(candidateID, in)
	if err != nil {
		return "", err
	}

	if err := s.candidateRepo.SetResume(ctx, candidateID, filename); err != nil {
		os.Remove(filepath.Join(s.dir, filename))
		return "", fmt.Errorf("履歴書の登録に失敗しました: %w", err)
	}
	return filename, nil
}

// SaveFiles は複数ファイルを保存し、アップロードメタデータを追記する。
// 1件も添付されていない場合はエラーを返す。
func (s *Service) SaveFiles(ctx context.Context, candidateID string, inputs []FileInput) ([]*model.Upload, error) {
	if len(inputs) == 0 {
		return nil, model.NewNoFileUploadedError()
	}

	uploadedAt := s.now()
	uploads := make([]*model.Upload, 0, len(inputs))
	stored := make([]string, 0, len(inputs))

	cleanup := func() {
		for _, name := range stored {
			os.Remove(filepath.Join(s.dir, name))
		}
	}

	for _, in := range inputs {
		filename, err := s.storeFile(candidateID, in)
		if err != nil {
			cleanup()
			return nil, err
		}
		stored = append(stored, filename)

		uploads = append(uploads, &model.Upload{
			ID:           uuid.NewString(),
			CandidateID:  candidateID,
			Filename:     filename,
			OriginalName: in.OriginalName,
			Mimetype:     in.Mimetype,
			Size:         in.Size,
			UploadedAt:   uploadedAt,
		})
	}

	if err := s.uploadRepo.Append(ctx, uploads); err != nil {
		cleanup()
		return nil, fmt.Errorf("アップロードメタデータの保存に失敗しました: %w", err)
	}

	return uploads, nil
}

// ListUploads は求職者自身のアップロード一覧を新しい順で返す。
func (s *Service) ListUploads(ctx context.Context, candidateID string) ([]*model.Upload, error) {
	uploads, err := s.uploadRepo.ListByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("アップロード一覧の取得に失敗しました: %w", err)
	}
	return uploads, nil
}
