package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeable(t *testing.T) {
	assert.True(t, Mergeable("pdf"))
	assert.True(t, Mergeable(".PDF"))
	assert.True(t, Mergeable("jpeg"))
	assert.True(t, Mergeable("webp"))
	assert.False(t, Mergeable("docx"))
	assert.False(t, Mergeable("gif"))
	assert.False(t, Mergeable(""))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("jpg"))
	assert.True(t, IsImage("GIF"))
	assert.True(t, IsImage(".bmp"))
	assert.False(t, IsImage("pdf"))
	assert.False(t, IsImage("docx"))
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, "pdf", ExtensionOf("scan.PDF"))
	assert.Equal(t, "jpg", ExtensionOf("photo.final.jpg"))
	assert.Equal(t, "", ExtensionOf("README"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name kept", "scan.pdf", "scan.pdf"},
		{"path stripped", "/tmp/uploads/scan.pdf", "scan.pdf"},
		{"windows path stripped", `C:\Users\scan.pdf`, "scan.pdf"},
		{"quotes replaced", `"scan".pdf`, "_scan_.pdf"},
		{"control characters removed", "scan\x00\x1f.pdf", "scan.pdf"},
		{"dot-dot rejected", "..", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestFileLive(t *testing.T) {
	f := File{}
	assert.True(t, f.Live())

	now := time.Now()
	f.DeletedAt = &now
	assert.False(t, f.Live())
}
