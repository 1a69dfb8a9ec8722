package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dossierapi/internal/model"
	"dossierapi/internal/policy"
	"dossierapi/internal/processor"
	"dossierapi/internal/repository"
	"dossierapi/internal/storage"
)

// FileClassifier is the processing seam the orchestrator drives; satisfied by
// processor.Classifier.
type FileClassifier interface {
	Process(ctx context.Context, keyPrefix string, up processor.Upload) ([]processor.Artifact, error)
}

// UploadInput is one upload call for a (dossier, document type) pair.
type UploadInput struct {
	DossierExternalID string
	// SchemaName applies only when this call creates the dossier; existing
	// dossiers keep their stored schema.
	SchemaName  string
	TypeCode    string
	VersionName string
	NewVersion  bool
	Files       []processor.Upload
}

// UploadResult reports the bound entities and processing counts.
type UploadResult struct {
	Document       *model.Document
	Version        *model.Version
	FilesProcessed int
	PagesAdded     int
}

// UploadService is the document upload orchestrator. One call validates the
// batch against the schema policy, runs every file through the classifier and
// persists the resulting rows in a single transaction. Concurrent uploads to
// the same document are not serialized; the last committed current-version
// pointer wins.
type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
}

type uploadService struct {
	store         repository.Store
	objects       storage.Storage
	classifier    FileClassifier
	schemaPolicy  policy.SchemaPolicy
	defaultSchema string
}

// NewUploadService constructs the orchestrator.
func NewUploadService(store repository.Store, objects storage.Storage, classifier FileClassifier, schemaPolicy policy.SchemaPolicy, defaultSchema string) UploadService {
	return &uploadService{
		store:         store,
		objects:       objects,
		classifier:    classifier,
		schemaPolicy:  schemaPolicy,
		defaultSchema: defaultSchema,
	}
}

func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.DossierExternalID == "" || in.TypeCode == "" {
		return nil, fmt.Errorf("%w: dossier id and type code are required", ErrValidation)
	}
	if len(in.Files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", ErrValidation)
	}

	schema, err := s.resolveSchema(ctx, in)
	if err != nil {
		return nil, err
	}

	// Extension validation happens before any processing so a rejected batch
	// has no side effects.
	allowed, typeKnown, err := s.schemaPolicy.AllowedExtensions(ctx, schema, in.TypeCode)
	if err != nil {
		return nil, fmt.Errorf("resolve type policy: %w", err)
	}
	if !typeKnown {
		return nil, fmt.Errorf("%w: unknown document type %q for schema %q", ErrValidation, in.TypeCode, schema)
	}
	for _, f := range in.Files {
		ext := model.ExtensionOf(f.Filename)
		if ext == "" || !policy.Allows(allowed, ext) {
			return nil, fmt.Errorf("%w: extension %q is not permitted for type %q", ErrValidation, ext, in.TypeCode)
		}
	}

	keyPrefix := fmt.Sprintf("dossiers/%s/%s", in.DossierExternalID, in.TypeCode)

	// Classify and store all artifacts up front. Object storage has no
	// transaction, so on any later failure the stored objects are removed
	// best-effort, mirroring the row rollback.
	batches := make([][]processor.Artifact, 0, len(in.Files))
	var storedKeys []string
	for _, f := range in.Files {
		artifacts, err := s.classifier.Process(ctx, keyPrefix, f)
		if err != nil {
			s.discard(ctx, storedKeys)
			return nil, err
		}
		for _, a := range artifacts {
			storedKeys = append(storedKeys, a.StoragePath)
		}
		batches = append(batches, artifacts)
	}

	res, err := s.persist(ctx, in, schema, batches)
	if err != nil {
		s.discard(ctx, storedKeys)
		return nil, err
	}
	res.FilesProcessed = len(in.Files)
	return res, nil
}

// resolveSchema prefers the stored schema of an existing dossier.
func (s *uploadService) resolveSchema(ctx context.Context, in UploadInput) (string, error) {
	dossier, err := s.store.Dossiers().FindByExternalID(ctx, in.DossierExternalID)
	switch {
	case err == nil:
		return dossier.SchemaName, nil
	case errors.Is(err, sql.ErrNoRows):
		if in.SchemaName != "" {
			return in.SchemaName, nil
		}
		return s.defaultSchema, nil
	default:
		return "", err
	}
}

// persist writes dossier, document, version and file rows atomically.
func (s *uploadService) persist(ctx context.Context, in UploadInput, schema string, batches [][]processor.Artifact) (*UploadResult, error) {
	res := &UploadResult{}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		dossier, err := s.findOrCreateDossier(ctx, tx, in.DossierExternalID, schema)
		if err != nil {
			return err
		}
		doc, err := s.findOrCreateDocument(ctx, tx, dossier.ID, in.TypeCode)
		if err != nil {
			return err
		}
		version, err := resolveVersionForUpload(ctx, tx, doc, in.VersionName, in.NewVersion)
		if err != nil {
			return err
		}

		// Page numbers are global across the batch and continue from the
		// version's highest live page, so appending never collides.
		page, err := tx.Files().MaxLivePageNumber(ctx, version.ID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, artifacts := range batches {
			for _, a := range artifacts {
				page++
				if _, err := tx.Files().Create(ctx, &model.File{
					ID:           a.ID,
					DocumentID:   doc.ID,
					VersionID:    version.ID,
					StoragePath:  a.StoragePath,
					OriginalName: a.OriginalName,
					Extension:    a.Extension,
					ContentType:  a.ContentType,
					Size:         a.Size,
					PageNumber:   page,
					CreatedAt:    now,
				}); err != nil {
					return fmt.Errorf("persist file row: %w", err)
				}
				res.PagesAdded++
			}
		}

		if doc.CurrentVersionID == nil {
			if err := tx.Documents().SetCurrentVersion(ctx, doc.ID, &version.ID); err != nil {
				return err
			}
			doc.CurrentVersionID = &version.ID
		}

		res.Document = doc
		res.Version = version
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *uploadService) findOrCreateDossier(ctx context.Context, tx repository.Store, externalID, schema string) (*model.Dossier, error) {
	dossier, err := tx.Dossiers().FindByExternalID(ctx, externalID)
	if err == nil {
		return dossier, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return tx.Dossiers().Create(ctx, &model.Dossier{
		ID:         uuid.New().String(),
		ExternalID: externalID,
		SchemaName: schema,
		CreatedAt:  time.Now().UTC(),
	})
}

func (s *uploadService) findOrCreateDocument(ctx context.Context, tx repository.Store, dossierID, typeCode string) (*model.Document, error) {
	doc, err := tx.Documents().FindByDossierAndType(ctx, dossierID, typeCode)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return tx.Documents().Create(ctx, &model.Document{
		ID:        uuid.New().String(),
		DossierID: dossierID,
		TypeCode:  typeCode,
		CreatedAt: time.Now().UTC(),
	})
}

// discard removes stored objects after a failed call, best-effort.
func (s *uploadService) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.objects.Delete(ctx, key); err != nil {
			logDiscardFailure(key, err)
		}
	}
}
