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

// resolveDocument walks dossier → document by external id and type code.
func resolveDocument(ctx context.Context, s repository.Store, dossierExternalID, typeCode string) (*model.Document, error) {
	if dossierExternalID == "" || typeCode == "" {
		return nil, fmt.Errorf("%w: dossier id and type code are required", ErrValidation)
	}
	dossier, err := s.Dossiers().FindByExternalID(ctx, dossierExternalID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	doc, err := s.Documents().FindByDossierAndType(ctx, dossier.ID, typeCode)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return doc, nil
}

// resolveOwnedVersion loads a version and verifies it belongs to the
// document. A version owned by a different document is reported as not found,
// never silently accepted.
func resolveOwnedVersion(ctx context.Context, s repository.Store, doc *model.Document, versionID int64) (*model.Version, error) {
	v, err := s.Versions().FindByID(ctx, versionID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if v.DocumentID != doc.ID {
		return nil, ErrNotFound
	}
	return v, nil
}

// versionName returns the supplied name or generates one from the timestamp
// template.
func versionName(name string, now time.Time) string {
	if name != "" {
		return name
	}
	return now.UTC().Format(model.VersionNameLayout)
}

// resolveVersionForUpload implements the find-or-create binding of the
// upload orchestrator: a new-version request always creates; otherwise the
// document's current version is reused when it exists.
func resolveVersionForUpload(ctx context.Context, s repository.Store, doc *model.Document, name string, isNewVersion bool) (*model.Version, error) {
	if !isNewVersion && doc.CurrentVersionID != nil {
		v, err := s.Versions().FindByID(ctx, *doc.CurrentVersionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("document %s: current version %d missing", doc.ID, *doc.CurrentVersionID)
			}
			return nil, err
		}
		return v, nil
	}
	return s.Versions().Create(ctx, &model.Version{
		DocumentID: doc.ID,
		Name:       versionName(name, time.Now()),
		CreatedAt:  time.Now().UTC(),
	})
}
