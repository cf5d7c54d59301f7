package thumbnail

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func TestCache_Generate_ProducesBoundedJPEG(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "photo.jpg")
	writeTestJPEG(t, src, 1000, 500)

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	out, err := cache.Generate(context.Background(), src)
	require.NoError(t, err)
	assert.FileExists(t, out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, MaxDimension)
	assert.LessOrEqual(t, cfg.Height, MaxDimension)
	assert.Equal(t, 2*cfg.Height, cfg.Width) // aspect ratio preserved (2:1 source)
}

func TestCache_Generate_IsIdempotentOnCacheHit(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "photo.jpg")
	writeTestJPEG(t, src, 100, 100)

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	first, err := cache.Generate(context.Background(), src)
	require.NoError(t, err)

	_, hit := cache.Lookup(mustAbs(t, src))
	assert.True(t, hit)

	second, err := cache.Generate(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCache_Lookup_MissReturnsFalse(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	_, ok := cache.Lookup("/never/generated.jpg")
	assert.False(t, ok)
}

func TestKeyFor_IsStableAndPathSpecific(t *testing.T) {
	assert.Equal(t, KeyFor("/a/b.jpg"), KeyFor("/a/b.jpg"))
	assert.NotEqual(t, KeyFor("/a/b.jpg"), KeyFor("/a/c.jpg"))
}

func TestCache_Generate_SmallImageStillReturnsRGBA(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "tiny.jpg")
	writeTestJPEG(t, src, 10, 10)

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	out, err := cache.Generate(context.Background(), src)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
