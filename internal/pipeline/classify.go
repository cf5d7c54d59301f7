// Package pipeline implements the walk → batch → process → write → embed
// indexing flow that turns a Source's files into Store-backed Memory
// records.
package pipeline

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hippo-mem/hippo/internal/extract"
	"github.com/hippo-mem/hippo/internal/memory"
)

// classify builds the Kind for path from its extension, opportunistically
// reading image dimensions. Failures to read dimensions (corrupt file,
// unsupported sub-format) leave Width/Height zero rather than aborting
// classification.
func classify(path string) memory.Kind {
	ext := extensionOf(path)
	name := memory.KindFromExtension(ext)

	switch name {
	case memory.KindImage:
		width, height, format := imageDimensions(path)
		return memory.NewImageKind(width, height, format)
	case memory.KindCode:
		return memory.NewCodeKind(extract.LanguageName(ext), 0)
	case memory.KindVideo:
		return memory.NewVideoKind(0, ext)
	case memory.KindAudio:
		return memory.NewAudioKind(0, ext)
	case memory.KindDocument:
		return memory.NewDocumentKind(ext, nil)
	case memory.KindSpreadsheet:
		return memory.NewSpreadsheetKind(0)
	case memory.KindPresentation:
		return memory.NewPresentationKind(0)
	case memory.KindArchive:
		return memory.NewArchiveKind(0)
	default:
		return memory.NewUnknownKind()
	}
}

// imageDimensions reads just enough of path to decode its header, never
// the full pixel data.
func imageDimensions(path string) (width, height int, format string) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, ""
	}
	defer f.Close()

	cfg, fmtName, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, ""
	}
	return cfg.Width, cfg.Height, fmtName
}

func extensionOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i+1:])
}
