package postgres

import (
	"context"
	"database/sql"

	"dossierapi/internal/model"
	"dossierapi/internal/repository"
)

// VersionStore is the PostgreSQL implementation of repository.VersionRepository.
type VersionStore struct {
	q querier
}

var _ repository.VersionRepository = (*VersionStore)(nil)

// Create inserts a new version row; the id is assigned by the sequence.
func (r *VersionStore) Create(ctx context.Context, v *model.Version) (*model.Version, error) {
	const q = `
		INSERT INTO versions (document_id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, document_id, name, created_at
	`
	row := r.q.QueryRowContext(ctx, q, v.DocumentID, v.Name, v.CreatedAt)
	var out model.Version
	if err := row.Scan(&out.ID, &out.DocumentID, &out.Name, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single version by its numeric id.
func (r *VersionStore) FindByID(ctx context.Context, id int64) (*model.Version, error) {
	const q = `
		SELECT id, document_id, name, created_at
		FROM versions
		WHERE id = $1
	`
	row := r.q.QueryRowContext(ctx, q, id)
	var v model.Version
	if err := row.Scan(&v.ID, &v.DocumentID, &v.Name, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Rename updates the version name. Missing rows surface as sql.ErrNoRows.
func (r *VersionStore) Rename(ctx context.Context, id int64, name string) error {
	const q = `UPDATE versions SET name = $2 WHERE id = $1`
	res, err := r.q.ExecContext(ctx, q, id, name)
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

// Delete removes the version row; its files are cascade-deleted by the
// foreign key. Missing rows surface as sql.ErrNoRows.
func (r *VersionStore) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM versions WHERE id = $1`
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

// LatestForDocument returns the most recently created version of a document,
// skipping excludeID. sql.ErrNoRows when none remain.
func (r *VersionStore) LatestForDocument(ctx context.Context, documentID string, excludeID int64) (*model.Version, error) {
	const q = `
		SELECT id, document_id, name, created_at
		FROM versions
		WHERE document_id = $1 AND id <> $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	row := r.q.QueryRowContext(ctx, q, documentID, excludeID)
	var v model.Version
	if err := row.Scan(&v.ID, &v.DocumentID, &v.Name, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}
