package postgres

import (
	"context"
	"database/sql"

	"dossierapi/internal/model"
	"dossierapi/internal/repository"
)

// FileStore is the PostgreSQL implementation of repository.FileRepository.
type FileStore struct {
	q querier
}

var _ repository.FileRepository = (*FileStore)(nil)

const fileColumns = `id, document_id, version_id, storage_path, original_name, extension, content_type, size, page_number, deleted_at, created_at`

func scanFile(row interface{ Scan(dest ...any) error }) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.DocumentID,
		&f.VersionID,
		&f.StoragePath,
		&f.OriginalName,
		&f.Extension,
		&f.ContentType,
		&f.Size,
		&f.PageNumber,
		&f.DeletedAt,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts one file row and returns the stored record.
func (r *FileStore) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, document_id, version_id, storage_path, original_name, extension, content_type, size, page_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + fileColumns
	row := r.q.QueryRowContext(ctx, q,
		f.ID,
		f.DocumentID,
		f.VersionID,
		f.StoragePath,
		f.OriginalName,
		f.Extension,
		f.ContentType,
		f.Size,
		f.PageNumber,
		f.CreatedAt,
	)
	return scanFile(row)
}

// FindByID fetches a file row regardless of soft-delete state.
func (r *FileStore) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.q.QueryRowContext(ctx, q, id))
}

// ListLiveByVersion returns live files of a version in page-number order.
func (r *FileStore) ListLiveByVersion(ctx context.Context, versionID int64) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE version_id = $1 AND deleted_at IS NULL
		ORDER BY page_number ASC
	`
	rows, err := r.q.QueryContext(ctx, q, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// MaxLivePageNumber returns the highest live page number, 0 when none.
func (r *FileStore) MaxLivePageNumber(ctx context.Context, versionID int64) (int, error) {
	const q = `
		SELECT COALESCE(MAX(page_number), 0)
		FROM files
		WHERE version_id = $1 AND deleted_at IS NULL
	`
	var max int
	if err := r.q.QueryRowContext(ctx, q, versionID).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// SoftDelete marks a live file deleted. Re-deleting reports sql.ErrNoRows so
// the caller can answer not-found instead of a second success.
func (r *FileStore) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE files SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.q.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
