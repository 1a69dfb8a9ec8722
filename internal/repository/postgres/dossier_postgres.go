package postgres

import (
	"context"

	"dossierapi/internal/model"
	"dossierapi/internal/repository"
)

// DossierStore is the PostgreSQL implementation of repository.DossierRepository.
// It uses parameterized queries and contains no business logic.
type DossierStore struct {
	q querier
}

var _ repository.DossierRepository = (*DossierStore)(nil)

// FindByExternalID fetches a dossier by the externally supplied identifier.
func (r *DossierStore) FindByExternalID(ctx context.Context, externalID string) (*model.Dossier, error) {
	const q = `
		SELECT id, external_id, schema_name, created_at
		FROM dossiers
		WHERE external_id = $1
	`
	row := r.q.QueryRowContext(ctx, q, externalID)
	var d model.Dossier
	if err := row.Scan(&d.ID, &d.ExternalID, &d.SchemaName, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new dossier row and returns the stored record.
func (r *DossierStore) Create(ctx context.Context, d *model.Dossier) (*model.Dossier, error) {
	const q = `
		INSERT INTO dossiers (id, external_id, schema_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, external_id, schema_name, created_at
	`
	row := r.q.QueryRowContext(ctx, q, d.ID, d.ExternalID, d.SchemaName, d.CreatedAt)
	var out model.Dossier
	if err := row.Scan(&out.ID, &out.ExternalID, &out.SchemaName, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}
