package extract

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/hippo-mem/hippo/internal/memory"
)

// textPreviewRunes is the approximate length (in runes) of the text
// preview stored in Metadata.TextPreview.
const textPreviewRunes = 500

// plainTextExtensions are the document extensions DocumentExtractor reads
// as UTF-8 text. Other document formats (pdf, doc, docx, rtf, odt)
// populate only Kind; hippo doesn't own a binary-document parser.
var plainTextExtensions = map[string]bool{
	"txt": true,
	"md":  true,
}

// DocumentExtractor computes a word count and text preview for
// plain-text and markdown documents, streamed line by line with a
// bufio.Scanner.
type DocumentExtractor struct{}

// NewDocumentExtractor builds a DocumentExtractor.
func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// Extract reads path line by line. Formats outside plainTextExtensions
// (recognized by Kind.Document.Format) return an empty Metadata.
func (e *DocumentExtractor) Extract(_ context.Context, path string, kind memory.Kind) (memory.Metadata, error) {
	if kind.Document == nil || !plainTextExtensions[strings.ToLower(kind.Document.Format)] {
		return memory.Metadata{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return memory.Metadata{}, nil
	}
	defer f.Close()

	var (
		wordCount int
		preview   strings.Builder
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		wordCount += len(strings.Fields(line))
		if preview.Len() < textPreviewRunes {
			if preview.Len() > 0 {
				preview.WriteByte('\n')
			}
			preview.WriteString(line)
		}
	}

	previewText := []rune(preview.String())
	if len(previewText) > textPreviewRunes {
		previewText = previewText[:textPreviewRunes]
	}
	previewStr := string(previewText)
	wc := wordCount

	return memory.Metadata{
		TextPreview: &previewStr,
		WordCount:   &wc,
	}, nil
}
