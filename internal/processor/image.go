package processor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"dossierapi/internal/config"
	"dossierapi/internal/model"
	"dossierapi/internal/storage"
)

// ImageProcessor recompresses an uploaded raster image to JPEG at a fixed
// quality and downscales it to fit the configured bounding box. Images
// already inside the box are never upscaled.
type ImageProcessor struct {
	store     storage.Storage
	quality   int
	maxWidth  int
	maxHeight int
	tmpDir    string
}

// NewImageProcessor creates an image processor with the configured bounds.
func NewImageProcessor(store storage.Storage, cfg config.ProcessingConfig) *ImageProcessor {
	return &ImageProcessor{
		store:     store,
		quality:   cfg.JPEGQuality,
		maxWidth:  cfg.ImageMaxWidth,
		maxHeight: cfg.ImageMaxHeight,
		tmpDir:    cfg.TempDir,
	}
}

// Process normalizes one image upload into exactly one stored JPEG artifact.
func (p *ImageProcessor) Process(ctx context.Context, keyPrefix string, up Upload) (*Artifact, error) {
	workdir, err := os.MkdirTemp(p.tmpDir, "image-")
	if err != nil {
		return nil, fsErr("create temp dir", err)
	}
	defer os.RemoveAll(workdir)

	src := filepath.Join(workdir, "source")
	if err := os.WriteFile(src, up.Data, 0o600); err != nil {
		return nil, fsErr("stage source image", err)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, processingErr("decode image", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.maxWidth || bounds.Dy() > p.maxHeight {
		img = imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	}

	out := filepath.Join(workdir, "normalized.jpg")
	if err := imaging.Save(img, out, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fsErr("encode jpeg", err)
	}

	f, err := os.Open(out)
	if err != nil {
		return nil, fsErr("open normalized image", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fsErr("stat normalized image", err)
	}

	original := model.SanitizeFilename(up.Filename)
	id := uuid.New().String()
	key := keyPrefix + "/" + id + ".jpg"
	info, err := p.store.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        st.Size(),
		ContentType: "image/jpeg",
		Metadata:    map[string]string{"original-filename": original},
	})
	if err != nil {
		return nil, err
	}

	return &Artifact{
		ID:           id,
		StoragePath:  info.Key,
		OriginalName: original,
		Extension:    "jpg",
		ContentType:  "image/jpeg",
		Size:         info.Size,
		PageIndex:    1,
	}, nil
}
