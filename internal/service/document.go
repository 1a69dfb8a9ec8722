package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dossierapi/internal/model"
	"dossierapi/internal/processor"
	"dossierapi/internal/repository"
	"dossierapi/internal/storage"
)

// PageMerger folds an ordered, fully mergeable page set into one PDF path;
// satisfied by processor.Merger.
type PageMerger interface {
	Merge(ctx context.Context, inputs []processor.MergeInput) (string, error)
}

// Archiver zips a page set; satisfied by processor.ArchiveBuilder.
type Archiver interface {
	Build(ctx context.Context, entries []processor.ArchiveEntry) (string, error)
}

// Download is one streamable result. Content must be closed by the caller;
// closing also removes any temp artifact backing a merged or zipped result.
type Download struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadCloser
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService reconstitutes stored documents for download and manages
// individual pages. The download decision is exact: one live file streams
// directly, an all-mergeable set merges to PDF, anything else becomes a zip.
type DocumentService interface {
	// Fetch streams the document's current version, or the requested one.
	// Zero live files is ErrNotFound.
	Fetch(ctx context.Context, dossierExternalID, typeCode string, versionID *int64) (*Download, error)

	// FetchPage streams one live file by id; files that are soft-deleted or
	// owned by another document are ErrNotFound.
	FetchPage(ctx context.Context, dossierExternalID, typeCode, fileID string) (*Download, error)

	// DeletePage soft-deletes one live file. Repeating yields ErrNotFound.
	DeletePage(ctx context.Context, dossierExternalID, typeCode, fileID string) error

	// List returns the dossier's documents using limit/offset and a total count.
	List(ctx context.Context, dossierExternalID string, limit, offset int) (*DocumentListResult, error)
}

type documentService struct {
	store    repository.Store
	objects  storage.Storage
	merger   PageMerger
	archiver Archiver
	tmpDir   string
}

// NewDocumentService constructs the retrieval/streaming service.
func NewDocumentService(store repository.Store, objects storage.Storage, merger PageMerger, archiver Archiver, tmpDir string) DocumentService {
	return &documentService{
		store:    store,
		objects:  objects,
		merger:   merger,
		archiver: archiver,
		tmpDir:   tmpDir,
	}
}

func (s *documentService) Fetch(ctx context.Context, dossierExternalID, typeCode string, versionID *int64) (*Download, error) {
	doc, err := resolveDocument(ctx, s.store, dossierExternalID, typeCode)
	if err != nil {
		return nil, err
	}

	var targetVersion int64
	switch {
	case versionID != nil:
		v, err := resolveOwnedVersion(ctx, s.store, doc, *versionID)
		if err != nil {
			return nil, err
		}
		targetVersion = v.ID
	case doc.CurrentVersionID != nil:
		targetVersion = *doc.CurrentVersionID
	default:
		return nil, ErrNotFound
	}

	files, err := s.store.Files().ListLiveByVersion(ctx, targetVersion)
	if err != nil {
		return nil, err
	}
	switch {
	case len(files) == 0:
		return nil, ErrNotFound
	case len(files) == 1:
		return s.streamSingle(ctx, &files[0])
	case allMergeable(files):
		return s.streamMerged(ctx, typeCode, files)
	default:
		return s.streamArchive(ctx, typeCode, files)
	}
}

func (s *documentService) FetchPage(ctx context.Context, dossierExternalID, typeCode, fileID string) (*Download, error) {
	doc, err := resolveDocument(ctx, s.store, dossierExternalID, typeCode)
	if err != nil {
		return nil, err
	}
	file, err := s.findOwnedLiveFile(ctx, doc, fileID)
	if err != nil {
		return nil, err
	}
	return s.streamSingle(ctx, file)
}

func (s *documentService) DeletePage(ctx context.Context, dossierExternalID, typeCode, fileID string) error {
	doc, err := resolveDocument(ctx, s.store, dossierExternalID, typeCode)
	if err != nil {
		return err
	}
	if _, err := s.findOwnedLiveFile(ctx, doc, fileID); err != nil {
		return err
	}
	return notFoundOr(s.store.Files().SoftDelete(ctx, fileID))
}

func (s *documentService) List(ctx context.Context, dossierExternalID string, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	dossier, err := s.store.Dossiers().FindByExternalID(ctx, dossierExternalID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	res, err := s.store.Documents().ListByDossier(ctx, dossier.ID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) findOwnedLiveFile(ctx context.Context, doc *model.Document, fileID string) (*model.File, error) {
	file, err := s.store.Files().FindByID(ctx, fileID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !file.Live() || file.DocumentID != doc.ID {
		return nil, ErrNotFound
	}
	return file, nil
}

// streamSingle hands out the stored object as-is with its own MIME and name.
func (s *documentService) streamSingle(ctx context.Context, file *model.File) (*Download, error) {
	rc, info, err := s.objects.Get(ctx, file.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("fetch object: %w", err)
	}
	name := file.OriginalName
	if name == "" {
		name = file.ID
		if file.Extension != "" {
			name += "." + file.Extension
		}
	}
	return &Download{
		Filename:    name,
		ContentType: file.ContentType,
		Size:        info.Size,
		Content:     rc,
	}, nil
}

// streamMerged stages every page locally, merges to one PDF and streams it.
func (s *documentService) streamMerged(ctx context.Context, typeCode string, files []model.File) (*Download, error) {
	stage, err := os.MkdirTemp(s.tmpDir, "fetch-")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %v", processor.ErrFileSystem, err)
	}
	defer os.RemoveAll(stage)

	inputs := make([]processor.MergeInput, 0, len(files))
	for i, f := range files {
		path := filepath.Join(stage, fmt.Sprintf("page-%d.%s", i, f.Extension))
		if err := s.fetchTo(ctx, f.StoragePath, path); err != nil {
			return nil, err
		}
		inputs = append(inputs, processor.MergeInput{Path: path, Extension: f.Extension})
	}

	out, err := s.merger.Merge(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return openArtifact(out, typeCode+".pdf", "application/pdf")
}

// streamArchive zips the page set, streaming entries straight from storage.
func (s *documentService) streamArchive(ctx context.Context, typeCode string, files []model.File) (*Download, error) {
	entries := make([]processor.ArchiveEntry, 0, len(files))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for _, f := range files {
		rc, _, err := s.objects.Get(ctx, f.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("fetch object: %w", err)
		}
		closers = append(closers, rc)
		entries = append(entries, processor.ArchiveEntry{
			Name:      f.OriginalName,
			ID:        f.ID,
			Extension: f.Extension,
			Reader:    rc,
		})
	}

	out, err := s.archiver.Build(ctx, entries)
	if err != nil {
		return nil, err
	}
	return openArtifact(out, typeCode+".zip", "application/zip")
}

func (s *documentService) fetchTo(ctx context.Context, key, path string) error {
	rc, _, err := s.objects.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch object: %w", err)
	}
	defer rc.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: stage object: %v", processor.ErrFileSystem, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, rc); err != nil {
		return fmt.Errorf("%w: stage object: %v", processor.ErrFileSystem, err)
	}
	return nil
}

func allMergeable(files []model.File) bool {
	for _, f := range files {
		if !model.Mergeable(f.Extension) {
			return false
		}
	}
	return true
}

// tempArtifact removes its parent temp directory when the stream is closed.
type tempArtifact struct {
	*os.File
	dir string
}

func (t *tempArtifact) Close() error {
	err := t.File.Close()
	os.RemoveAll(t.dir)
	return err
}

func openArtifact(path, filename, contentType string) (*Download, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open artifact: %v", processor.ErrFileSystem, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat artifact: %v", processor.ErrFileSystem, err)
	}
	return &Download{
		Filename:    filename,
		ContentType: contentType,
		Size:        st.Size(),
		Content:     &tempArtifact{File: f, dir: filepath.Dir(path)},
	}, nil
}
