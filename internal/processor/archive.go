package processor

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"dossierapi/internal/config"
)

// ArchiveEntry is one file to place in the zip. Name may be empty; ID and
// Extension provide the fallback entry name.
type ArchiveEntry struct {
	Name      string
	ID        string
	Extension string
	Reader    io.Reader
}

// ArchiveBuilder zips a heterogeneous page set when the merge precondition is
// not met. Entries keep their sanitized original names; a collision or a
// missing name falls back to <uuid>.<extension>.
type ArchiveBuilder struct {
	tmpDir string
}

// NewArchiveBuilder creates an archive builder staging under the configured
// temp dir.
func NewArchiveBuilder(cfg config.ProcessingConfig) *ArchiveBuilder {
	return &ArchiveBuilder{tmpDir: cfg.TempDir}
}

// Build writes the zip to a fresh temp directory and returns its path. The
// caller removes the directory after streaming.
func (b *ArchiveBuilder) Build(ctx context.Context, entries []ArchiveEntry) (string, error) {
	if len(entries) == 0 {
		return "", processingErr("archive", fmt.Errorf("no input files"))
	}

	workdir, err := os.MkdirTemp(b.tmpDir, "archive-")
	if err != nil {
		return "", fsErr("create temp dir", err)
	}
	ok := false
	defer func() {
		if !ok {
			os.RemoveAll(workdir)
		}
	}()

	out := filepath.Join(workdir, "archive.zip")
	f, err := os.Create(out)
	if err != nil {
		return "", fsErr("create zip", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name := e.Name
		if _, dup := seen[name]; name == "" || dup {
			name = fallbackName(e)
		}
		seen[name] = struct{}{}

		w, err := zw.Create(name)
		if err != nil {
			return "", processingErr("add zip entry", err)
		}
		if _, err := io.Copy(w, e.Reader); err != nil {
			return "", processingErr("write zip entry", err)
		}
	}

	if err := zw.Close(); err != nil {
		return "", processingErr("finalize zip", err)
	}
	if err := f.Close(); err != nil {
		return "", fsErr("close zip", err)
	}

	ok = true
	return out, nil
}

func fallbackName(e ArchiveEntry) string {
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	if e.Extension != "" {
		return id + "." + e.Extension
	}
	return id
}
