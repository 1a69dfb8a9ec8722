package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"dossierapi/internal/config"
	"dossierapi/internal/model"
	"dossierapi/internal/storage"
)

// PDFSplitter normalizes a PDF into one bounded-resolution JPEG per page.
// Rendering is delegated to pdftoppm through the CommandRunner; page count
// comes from pdfcpu. A page that fails to render is logged and skipped so a
// partially corrupt document still yields its readable pages.
type PDFSplitter struct {
	store   storage.Storage
	runner  CommandRunner
	bin     string
	dpi     int
	quality int
	tmpDir  string
}

// NewPDFSplitter creates a splitter with the configured renderer settings.
func NewPDFSplitter(store storage.Storage, cfg config.ProcessingConfig, runner CommandRunner) *PDFSplitter {
	return &PDFSplitter{
		store:   store,
		runner:  runner,
		bin:     cfg.PdftoppmBin,
		dpi:     cfg.RenderDPI,
		quality: cfg.JPEGQuality,
		tmpDir:  cfg.TempDir,
	}
}

// Split renders each page of the uploaded PDF to a JPEG artifact stored under
// keyPrefix. Artifacts are numbered sequentially from 1 in emission order.
func (s *PDFSplitter) Split(ctx context.Context, keyPrefix string, up Upload) ([]Artifact, error) {
	workdir, err := os.MkdirTemp(s.tmpDir, "pdfsplit-")
	if err != nil {
		return nil, fsErr("create temp dir", err)
	}
	defer os.RemoveAll(workdir)

	src := filepath.Join(workdir, "source.pdf")
	if err := os.WriteFile(src, up.Data, 0o600); err != nil {
		return nil, fsErr("stage source pdf", err)
	}

	pages, err := api.PageCountFile(src)
	if err != nil {
		return nil, processingErr("read pdf page count", err)
	}
	if pages == 0 {
		return nil, processingErr("split pdf", fmt.Errorf("document has no pages"))
	}

	original := model.SanitizeFilename(up.Filename)
	artifacts := make([]Artifact, 0, pages)

	for page := 1; page <= pages; page++ {
		data, err := s.renderPage(ctx, src, workdir, page)
		if err != nil {
			logJSON(map[string]any{
				"level":     "warn",
				"component": "processor",
				"event":     "pdf_page_render_skipped",
				"page":      page,
				"filename":  original,
				"error":     err.Error(),
			})
			continue
		}

		id := uuid.New().String()
		key := keyPrefix + "/" + id + ".jpg"
		info, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
			Size:        int64(len(data)),
			ContentType: "image/jpeg",
			Metadata:    map[string]string{"original-filename": original},
		})
		if err != nil {
			return nil, fmt.Errorf("upload rendered page %d: %w", page, err)
		}

		artifacts = append(artifacts, Artifact{
			ID:           id,
			StoragePath:  info.Key,
			OriginalName: original,
			Extension:    "jpg",
			ContentType:  "image/jpeg",
			Size:         info.Size,
			PageIndex:    len(artifacts) + 1,
		})
	}

	if len(artifacts) == 0 {
		return nil, processingErr("split pdf", fmt.Errorf("none of %d pages could be rendered", pages))
	}
	return artifacts, nil
}

// renderPage rasterizes one page to a JPEG file and returns its bytes.
func (s *PDFSplitter) renderPage(ctx context.Context, src, workdir string, page int) ([]byte, error) {
	outPrefix := filepath.Join(workdir, fmt.Sprintf("page-%d", page))
	p := strconv.Itoa(page)
	_, stderr, err := s.runner.Run(ctx, s.bin,
		"-jpeg",
		"-r", strconv.Itoa(s.dpi),
		"-jpegopt", "quality="+strconv.Itoa(s.quality),
		"-f", p,
		"-l", p,
		"-singlefile",
		src,
		outPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("render: %v (stderr: %s)", err, stderr)
	}
	data, err := os.ReadFile(outPrefix + ".jpg")
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %v", err)
	}
	return data, nil
}
