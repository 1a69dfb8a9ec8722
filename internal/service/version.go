package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dossierapi/internal/model"
	"dossierapi/internal/repository"
)

// VersionService is the version manager: it creates, renames, switches and
// deletes versions of a document while keeping the "at most one current
// version" invariant intact.
type VersionService interface {
	// Create allocates a new version for the document. It does not become
	// current. An empty name gets the generated timestamp form.
	Create(ctx context.Context, dossierExternalID, typeCode, name string) (*model.Version, error)

	// Rename updates a version's name in place.
	Rename(ctx context.Context, dossierExternalID, typeCode string, versionID int64, name string) error

	// SetCurrent points the document at the given version. A version that is
	// missing or belongs to a different document yields ErrNotFound.
	SetCurrent(ctx context.Context, dossierExternalID, typeCode string, versionID int64) error

	// Delete removes a version and its files. When the deleted version was
	// current, the pointer moves to the most recently created remaining
	// version, or is cleared when none remain — never left dangling.
	Delete(ctx context.Context, dossierExternalID, typeCode string, versionID int64) error
}

type versionService struct {
	store repository.Store
}

// NewVersionService constructs a VersionService over the given store.
func NewVersionService(store repository.Store) VersionService {
	return &versionService{store: store}
}

func (s *versionService) Create(ctx context.Context, dossierExternalID, typeCode, name string) (*model.Version, error) {
	doc, err := resolveDocument(ctx, s.store, dossierExternalID, typeCode)
	if err != nil {
		return nil, err
	}
	v, err := s.store.Versions().Create(ctx, &model.Version{
		DocumentID: doc.ID,
		Name:       versionName(name, time.Now()),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}
	return v, nil
}

func (s *versionService) Rename(ctx context.Context, dossierExternalID, typeCode string, versionID int64, name string) error {
	if name == "" {
		return fmt.Errorf("%w: version name is required", ErrValidation)
	}
	doc, err := resolveDocument(ctx, s.store, dossierExternalID, typeCode)
	if err != nil {
		return err
	}
	if _, err := resolveOwnedVersion(ctx, s.store, doc, versionID); err != nil {
		return err
	}
	return notFoundOr(s.store.Versions().Rename(ctx, versionID, name))
}

func (s *versionService) SetCurrent(ctx context.Context, dossierExternalID, typeCode string, versionID int64) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		doc, err := resolveDocument(ctx, tx, dossierExternalID, typeCode)
		if err != nil {
			return err
		}
		if _, err := resolveOwnedVersion(ctx, tx, doc, versionID); err != nil {
			return err
		}
		return tx.Documents().SetCurrentVersion(ctx, doc.ID, &versionID)
	})
}

func (s *versionService) Delete(ctx context.Context, dossierExternalID, typeCode string, versionID int64) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		doc, err := resolveDocument(ctx, tx, dossierExternalID, typeCode)
		if err != nil {
			return err
		}
		if _, err := resolveOwnedVersion(ctx, tx, doc, versionID); err != nil {
			return err
		}

		// Move the current pointer off the doomed version before the delete
		// so the FK never dangles. Successor: most recently created sibling.
		if doc.CurrentVersionID != nil && *doc.CurrentVersionID == versionID {
			var successor *int64
			next, err := tx.Versions().LatestForDocument(ctx, doc.ID, versionID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			if next != nil {
				successor = &next.ID
			}
			if err := tx.Documents().SetCurrentVersion(ctx, doc.ID, successor); err != nil {
				return err
			}
		}

		return notFoundOr(tx.Versions().Delete(ctx, versionID))
	})
}
