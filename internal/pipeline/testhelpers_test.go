package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

func writeFile(path string, content []byte) error {
	return os.WriteFile(path, content, 0o644)
}

func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		t.Fatalf("failed to write test png: %v", err)
	}
}
