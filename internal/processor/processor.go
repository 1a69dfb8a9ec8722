package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"dossierapi/internal/config"
	"dossierapi/internal/model"
	"dossierapi/internal/storage"
)

// Package processor normalizes uploaded files into stored artifacts and
// reassembles them for download. Every processor stages through a temp
// directory that is removed on success and failure.

var (
	// ErrProcessing marks a corrupt or unreadable source file. Non-retriable;
	// the upload orchestrator aborts the enclosing transaction.
	ErrProcessing = errors.New("processing failed")
	// ErrFileSystem marks a local read/write/stat failure.
	ErrFileSystem = errors.New("file system error")
)

// Upload is one raw uploaded file as received from the transport layer.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Artifact is one normalized output written to object storage.
type Artifact struct {
	ID           string
	StoragePath  string
	OriginalName string
	Extension    string
	ContentType  string
	Size         int64
	// PageIndex is the 1-based position of this artifact within its source
	// upload. Global numbering across a batch is assigned by the orchestrator.
	PageIndex int
}

// Classifier dispatches one upload to the processor matching its detected
// extension: PDFs are split into page images, raster images are recompressed,
// everything else passes through unmodified.
type Classifier struct {
	splitter *PDFSplitter
	images   *ImageProcessor
	pass     *Passthrough
}

// NewClassifier wires the three processors against the given object storage.
func NewClassifier(store storage.Storage, cfg config.ProcessingConfig, runner CommandRunner) *Classifier {
	return &Classifier{
		splitter: NewPDFSplitter(store, cfg, runner),
		images:   NewImageProcessor(store, cfg),
		pass:     NewPassthrough(store, cfg),
	}
}

// Process normalizes one upload into one or more artifacts stored under
// keyPrefix. A PDF yields one artifact per renderable page; any other type
// yields exactly one.
func (c *Classifier) Process(ctx context.Context, keyPrefix string, up Upload) ([]Artifact, error) {
	switch ext := model.ExtensionOf(up.Filename); {
	case ext == "pdf":
		return c.splitter.Split(ctx, keyPrefix, up)
	case model.IsImage(ext):
		a, err := c.images.Process(ctx, keyPrefix, up)
		if err != nil {
			return nil, err
		}
		return []Artifact{*a}, nil
	default:
		a, err := c.pass.Store(ctx, keyPrefix, up)
		if err != nil {
			return nil, err
		}
		return []Artifact{*a}, nil
	}
}

// resolveContentType sniffs the MIME type from content and falls back to the
// declared type when sniffing is inconclusive.
func resolveContentType(data []byte, declared string) string {
	detected := mimetype.Detect(data).String()
	if detected == "application/octet-stream" && declared != "" {
		return declared
	}
	return detected
}

func processingErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrProcessing, op, err)
}

func fsErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFileSystem, op, err)
}

// logJSON emits one structured log line, matching the service-wide format.
func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal processor log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
