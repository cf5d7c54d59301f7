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

func TestRegistry_Dispatch_UnregisteredKind_ReturnsEmptyMetadata(t *testing.T) {
	r := NewRegistry()
	meta, err := r.Dispatch(context.Background(), "/does/not/matter", memory.NewFolderKind())

	require.NoError(t, err)
	assert.Equal(t, memory.Metadata{}, meta)
}

func TestRegistry_Dispatch_RoutesCodeKindToCodeExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	r := NewRegistry()
	meta, err := r.Dispatch(context.Background(), path, memory.NewCodeKind("go", 0))

	require.NoError(t, err)
	require.NotNil(t, meta.Code)
	assert.Equal(t, 1, meta.Code.Lines)
}

func TestRegistry_Register_Overwrites(t *testing.T) {
	r := NewRegistry()
	r.Register(memory.KindDocument, NewDocumentExtractor())
	assert.NotNil(t, r.extractors[memory.KindDocument])
}
