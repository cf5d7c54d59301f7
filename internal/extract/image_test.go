package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippo-mem/hippo/internal/memory"
)

func TestImageExtractor_NoExifSegment_ReturnsEmptyMetadataNotError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not a real jpeg"), 0o644))

	e := NewImageExtractor()
	meta, err := e.Extract(context.Background(), path, memory.NewImageKind(0, 0, "jpg"))

	require.NoError(t, err)
	assert.Nil(t, meta.Exif)
	assert.Nil(t, meta.Location)
}

func TestImageExtractor_MissingFile_ReturnsError(t *testing.T) {
	e := NewImageExtractor()
	_, err := e.Extract(context.Background(), "/nonexistent/path.jpg", memory.NewImageKind(0, 0, "jpg"))
	assert.Error(t, err)
}
