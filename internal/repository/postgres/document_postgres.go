package postgres

import (
	"context"

	"dossierapi/internal/model"
	"dossierapi/internal/repository"
)

// DocumentStore is the PostgreSQL implementation of repository.DocumentRepository.
type DocumentStore struct {
	q querier
}

var _ repository.DocumentRepository = (*DocumentStore)(nil)

// FindByDossierAndType fetches the document slot for (dossier, type code).
func (r *DocumentStore) FindByDossierAndType(ctx context.Context, dossierID, typeCode string) (*model.Document, error) {
	const q = `
		SELECT id, dossier_id, type_code, current_version_id, created_at
		FROM documents
		WHERE dossier_id = $1 AND type_code = $2
	`
	row := r.q.QueryRowContext(ctx, q, dossierID, typeCode)
	var d model.Document
	if err := row.Scan(&d.ID, &d.DossierID, &d.TypeCode, &d.CurrentVersionID, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentStore) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, dossier_id, type_code, current_version_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, dossier_id, type_code, current_version_id, created_at
	`
	row := r.q.QueryRowContext(ctx, q,
		doc.ID,
		doc.DossierID,
		doc.TypeCode,
		doc.CurrentVersionID,
		doc.CreatedAt,
	)
	var out model.Document
	if err := row.Scan(&out.ID, &out.DossierID, &out.TypeCode, &out.CurrentVersionID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetCurrentVersion updates the current-version pointer; nil clears it.
func (r *DocumentStore) SetCurrentVersion(ctx context.Context, documentID string, versionID *int64) error {
	const q = `UPDATE documents SET current_version_id = $2 WHERE id = $1`
	res, err := r.q.ExecContext(ctx, q, documentID, versionID)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// ListByDossier returns documents of a dossier using LIMIT/OFFSET pagination
// and a total count.
func (r *DocumentStore) ListByDossier(ctx context.Context, dossierID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE dossier_id = $1`
	var total int
	if err := r.q.QueryRowContext(ctx, qCount, dossierID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, dossier_id, type_code, current_version_id, created_at
		FROM documents
		WHERE dossier_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.q.QueryContext(ctx, qList, dossierID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.DossierID, &d.TypeCode, &d.CurrentVersionID, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}
