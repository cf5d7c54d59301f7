// Package thumbnail renders and caches small JPEG previews of image
// memories, content-addressed by the SHA-256 of the source file's
// absolute path so the same file always resolves to the same cache entry
// without a database lookup, grounded on the aspect-preserving resize
// golang.org/x/image/draw performs in
// yungbote-neurobridge-backend's avatar generator.
package thumbnail

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
)

// MaxDimension bounds a generated thumbnail's longer edge: JPEG, at most
// 256x256, aspect-preserving.
const MaxDimension = 256

// JPEGQuality is the encoder quality used for every cached thumbnail.
const JPEGQuality = 85

// Cache renders thumbnails into a directory tree keyed by the SHA-256 hex
// digest of each source file's absolute path, split into a two-character
// fan-out prefix so the directory never holds more than a few hundred
// entries per bucket (the same fan-out shape internal/store's
// hash-bucket duplicate index uses for its own lookup keys).
type Cache struct {
	dir string
}

// NewCache builds a Cache rooted at dir, creating it if absent.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, hippoerrors.StorageError("failed to create thumbnail cache directory", err).WithDetail("dir", dir)
	}
	return &Cache{dir: dir}, nil
}

// KeyFor returns the content-addressed cache key for absPath, without
// touching the filesystem.
func KeyFor(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return hex.EncodeToString(sum[:])
}

// pathFor returns the on-disk location for key, fanning out by its first
// two hex characters.
func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, key[:2], key+".jpg")
}

// Lookup returns the cached thumbnail path for absPath if one already
// exists, and false otherwise. Callers should fall back to Generate on a
// miss.
func (c *Cache) Lookup(absPath string) (string, bool) {
	key := KeyFor(absPath)
	path := c.pathFor(key)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Generate decodes the image at srcPath, resizes it to fit within
// MaxDimension x MaxDimension preserving aspect ratio, and writes it as a
// JPEG into the cache keyed by srcPath's absolute form. Returns the cache
// path. Idempotent: a cache hit short-circuits decoding entirely.
func (c *Cache) Generate(ctx context.Context, srcPath string) (string, error) {
	absPath, err := filepath.Abs(srcPath)
	if err != nil {
		return "", hippoerrors.ExtractorError("failed to resolve absolute path for thumbnail", err).WithDetail("path", srcPath)
	}
	if cached, ok := c.Lookup(absPath); ok {
		return cached, nil
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", hippoerrors.ExtractorError("failed to open image for thumbnail generation", err).WithDetail("path", srcPath)
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return "", hippoerrors.ExtractorError("failed to decode image for thumbnail generation", err).WithDetail("path", srcPath)
	}

	thumb := resize(img, MaxDimension)

	key := KeyFor(absPath)
	dstPath := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return "", hippoerrors.StorageError("failed to create thumbnail bucket directory", err).WithDetail("path", dstPath)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", hippoerrors.StorageError("failed to create thumbnail file", err).WithDetail("path", dstPath)
	}
	defer dst.Close()

	if err := jpeg.Encode(dst, thumb, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", hippoerrors.ExtractorError("failed to encode thumbnail", err).WithDetail("path", dstPath)
	}

	return dstPath, nil
}

// resize scales img so its longer edge is at most max, preserving aspect
// ratio. Images already within bounds are returned as an RGBA copy so
// every cached thumbnail is consistently encodable as JPEG regardless of
// the source's color model.
func resize(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return img
	}

	scale := 1.0
	if w > max || h > max {
		wScale := float64(max) / float64(w)
		hScale := float64(max) / float64(h)
		if wScale < hScale {
			scale = wScale
		} else {
			scale = hScale
		}
	}

	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
