package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"dossierapi/internal/config"
	"dossierapi/internal/model"
)

// MergeInput is one local file to fold into the merged output, in page order.
type MergeInput struct {
	Path      string
	Extension string
}

// Merger combines an ordered page set back into one continuous PDF. PDFs
// contribute all their pages in order; images are placed centered on an A4
// page, scaled to fit without distortion. Callers must check Mergeable for
// every input first — a non-mergeable type means the archive builder applies.
type Merger struct {
	tmpDir string
}

// NewMerger creates a merge engine staging under the configured temp dir.
func NewMerger(cfg config.ProcessingConfig) *Merger {
	return &Merger{tmpDir: cfg.TempDir}
}

// imageImportSpec places an image centered on an A4 page scaled relative to
// the page box, preserving aspect ratio.
const imageImportSpec = "form:A4, pos:c, sc:1.0 rel"

// Merge produces a single PDF from the ordered inputs and returns its path.
// The output lives in a fresh temp directory; the caller removes it after
// streaming. Intermediate page PDFs are cleaned up before returning.
func (m *Merger) Merge(ctx context.Context, inputs []MergeInput) (string, error) {
	if len(inputs) == 0 {
		return "", processingErr("merge", fmt.Errorf("no input files"))
	}
	for _, in := range inputs {
		if !model.Mergeable(in.Extension) {
			return "", processingErr("merge", fmt.Errorf("non-mergeable type %q", in.Extension))
		}
	}

	workdir, err := os.MkdirTemp(m.tmpDir, "pdfmerge-")
	if err != nil {
		return "", fsErr("create temp dir", err)
	}
	ok := false
	defer func() {
		if !ok {
			os.RemoveAll(workdir)
		}
	}()

	parts := make([]string, 0, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if model.NormalizeExtension(in.Extension) == "pdf" {
			parts = append(parts, in.Path)
			continue
		}
		page, err := m.imageToPage(in.Path, filepath.Join(workdir, fmt.Sprintf("part-%d.pdf", i)))
		if err != nil {
			return "", err
		}
		parts = append(parts, page)
	}

	out := filepath.Join(workdir, "merged.pdf")
	if len(parts) == 1 {
		// Single embedded PDF: copy-through, nothing to merge.
		if err := copyFile(parts[0], out); err != nil {
			return "", err
		}
	} else if err := api.MergeCreateFile(parts, out, false, nil); err != nil {
		return "", processingErr("merge pdf", err)
	}

	ok = true
	return out, nil
}

// imageToPage embeds one image on a fresh A4 page.
func (m *Merger) imageToPage(imgPath, outPath string) (string, error) {
	imp, err := api.Import(imageImportSpec, types.POINTS)
	if err != nil {
		return "", processingErr("configure image import", err)
	}
	if err := api.ImportImagesFile([]string{imgPath}, outPath, imp, nil); err != nil {
		return "", processingErr("embed image page", err)
	}
	return outPath, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fsErr("read pdf", err)
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return fsErr("write pdf", err)
	}
	return nil
}
