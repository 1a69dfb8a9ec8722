package repository

import (
	"context"

	"dossierapi/internal/model"
)

// Package repository contains the data access contracts for the versioning
// engine. Implementations live in subpackages (postgres) and report a
// missing row as sql.ErrNoRows; translation into service errors happens one
// layer up. No business logic here — strictly persistence operations.

// DossierRepository persists the top-level case containers.
type DossierRepository interface {
	// FindByExternalID returns the dossier registered under the externally
	// supplied identifier.
	FindByExternalID(ctx context.Context, externalID string) (*model.Dossier, error)

	// Create inserts a new dossier and returns the stored row.
	Create(ctx context.Context, d *model.Dossier) (*model.Dossier, error)
}

// DocumentRepository persists the typed document slots of a dossier.
type DocumentRepository interface {
	// FindByDossierAndType returns the document for (dossier, type code).
	FindByDossierAndType(ctx context.Context, dossierID, typeCode string) (*model.Document, error)

	// Create inserts a new document row and returns the stored record.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// SetCurrentVersion updates the document's current-version pointer.
	// A nil versionID clears the pointer.
	SetCurrentVersion(ctx context.Context, documentID string, versionID *int64) error

	// ListByDossier returns a page of the dossier's documents plus the total count.
	ListByDossier(ctx context.Context, dossierID string, pq PageQuery) (*PageResult[model.Document], error)
}

// VersionRepository persists named snapshots of a document's file set.
type VersionRepository interface {
	// Create inserts a new version row; the database assigns the numeric id.
	Create(ctx context.Context, v *model.Version) (*model.Version, error)

	// FindByID returns a version by its numeric id.
	FindByID(ctx context.Context, id int64) (*model.Version, error)

	// Rename updates a version's name in place.
	Rename(ctx context.Context, id int64, name string) error

	// Delete removes a version row; files cascade at the database level.
	Delete(ctx context.Context, id int64) error

	// LatestForDocument returns the most recently created version of the
	// document, skipping excludeID (pass 0 to skip nothing). Used to pick
	// the successor when the current version is deleted.
	LatestForDocument(ctx context.Context, documentID string, excludeID int64) (*model.Version, error)
}

// FileRepository persists stored artifacts. Files are only ever soft-deleted
// by this interface; hard deletes happen through the version cascade.
type FileRepository interface {
	// Create inserts one file row and returns the stored record.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file row regardless of its soft-delete state.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// ListLiveByVersion returns the version's live files ordered by page number.
	ListLiveByVersion(ctx context.Context, versionID int64) ([]model.File, error)

	// MaxLivePageNumber returns the highest live page number of the version,
	// or 0 when the version holds no live files.
	MaxLivePageNumber(ctx context.Context, versionID int64) (int, error)

	// SoftDelete marks a live file deleted. Returns sql.ErrNoRows when no
	// live row matched, so a second delete is reported as not found.
	SoftDelete(ctx context.Context, id string) error
}

// Store aggregates the entity repositories and scopes them to one connection
// or transaction. WithinTx hands fn a transaction-bound view; everything fn
// does through that view commits or rolls back atomically.
type Store interface {
	Dossiers() DossierRepository
	Documents() DocumentRepository
	Versions() VersionRepository
	Files() FileRepository

	WithinTx(ctx context.Context, fn func(s Store) error) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
