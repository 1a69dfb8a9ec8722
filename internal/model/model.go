package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Dossier is the top-level case container. It is created lazily on first
// reference by its externally supplied identifier and is never deleted here.
type Dossier struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	SchemaName string    `json:"schema_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Document is a typed slot within a dossier (e.g. "passport"). At most one
// document exists per (dossier, type code). CurrentVersionID, when set, must
// reference a version belonging to this document.
type Document struct {
	ID               string    `json:"id"`
	DossierID        string    `json:"dossier_id"`
	TypeCode         string    `json:"type_code"`
	CurrentVersionID *int64    `json:"current_version_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Version is a named snapshot of a document's file set.
type Version struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// VersionNameLayout is the time layout used for machine-generated version names.
const VersionNameLayout = "Version 2006-01-02 15:04:05"

// File is one stored artifact belonging to a version. PageNumber is the
// 1-based ordering key among live files of the version. DeletedAt marks a
// soft delete; soft-deleted files stay in object storage for audit purposes
// but are excluded from counts, listings, merges and archives.
type File struct {
	ID           string     `json:"id"`
	DocumentID   string     `json:"document_id"`
	VersionID    int64      `json:"version_id"`
	StoragePath  string     `json:"storage_path"`
	OriginalName string     `json:"original_name"`
	Extension    string     `json:"extension"`
	ContentType  string     `json:"content_type"`
	Size         int64      `json:"size"`
	PageNumber   int        `json:"page_number"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Live reports whether the file has not been soft-deleted.
func (f *File) Live() bool { return f.DeletedAt == nil }

// mergeableExtensions are the types the merge engine can fold into a single
// PDF: PDFs contribute their pages, images are placed on a fresh page.
var mergeableExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"webp": {},
}

// imageExtensions are the types routed to the image processor on upload.
var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
	"webp": {},
}

// Mergeable reports whether a file of the given extension can be folded into
// a merged PDF.
func Mergeable(ext string) bool {
	_, ok := mergeableExtensions[NormalizeExtension(ext)]
	return ok
}

// IsImage reports whether the extension denotes a raster image format.
func IsImage(ext string) bool {
	_, ok := imageExtensions[NormalizeExtension(ext)]
	return ok
}

// NormalizeExtension lowercases an extension and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ExtensionOf extracts the normalized extension from a filename.
func ExtensionOf(filename string) string {
	return NormalizeExtension(filepath.Ext(filename))
}

// SanitizeFilename reduces a client-supplied filename to its base name and
// strips characters that are unsafe in Content-Disposition headers and zip
// entries. An empty result is returned as-is; callers fall back to a
// generated name.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r < 0x20, r == 0x7f:
			// control characters
		case r == '"', r == '/', r == '\\':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
