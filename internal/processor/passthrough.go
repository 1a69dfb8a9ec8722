package processor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"dossierapi/internal/config"
	"dossierapi/internal/model"
	"dossierapi/internal/storage"
)

// Passthrough stores office documents, spreadsheets, archives and any other
// accepted non-image type unmodified, preserving extension and MIME type.
type Passthrough struct {
	store  storage.Storage
	tmpDir string
}

// NewPassthrough creates a passthrough processor.
func NewPassthrough(store storage.Storage, cfg config.ProcessingConfig) *Passthrough {
	return &Passthrough{store: store, tmpDir: cfg.TempDir}
}

// Store copies the upload byte-for-byte into object storage and emits one
// artifact. Staging still goes through a temp file so a half-written upload
// never reaches the store directly from the request buffer.
func (p *Passthrough) Store(ctx context.Context, keyPrefix string, up Upload) (*Artifact, error) {
	workdir, err := os.MkdirTemp(p.tmpDir, "passthrough-")
	if err != nil {
		return nil, fsErr("create temp dir", err)
	}
	defer os.RemoveAll(workdir)

	staged := filepath.Join(workdir, "staged")
	if err := os.WriteFile(staged, up.Data, 0o600); err != nil {
		return nil, fsErr("stage file", err)
	}

	f, err := os.Open(staged)
	if err != nil {
		return nil, fsErr("open staged file", err)
	}
	defer f.Close()

	original := model.SanitizeFilename(up.Filename)
	ext := model.ExtensionOf(up.Filename)
	contentType := resolveContentType(up.Data, up.ContentType)

	id := uuid.New().String()
	key := keyPrefix + "/" + id
	if ext != "" {
		key += "." + ext
	}

	info, err := p.store.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        int64(len(up.Data)),
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": original},
	})
	if err != nil {
		return nil, err
	}

	return &Artifact{
		ID:           id,
		StoragePath:  info.Key,
		OriginalName: original,
		Extension:    ext,
		ContentType:  contentType,
		Size:         info.Size,
		PageIndex:    1,
	}, nil
}
