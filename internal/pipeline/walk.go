package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// recognizedExtensions is the fixed glossary table of extensions the
// walker considers indexable. Anything outside it is skipped during the
// walk, before a Kind is ever assigned (memory.KindFromExtension remains
// the source of truth for *classifying* a recognized file; this table is
// the "is it worth walking at all" gate).
var recognizedExtensions = buildRecognizedExtensions()

func buildRecognizedExtensions() map[string]bool {
	groups := [][]string{
		{"jpg", "jpeg", "png", "gif", "webp", "bmp", "tiff", "heic", "heif", "raw", "cr2", "nef"},
		{"mp4", "mov", "avi", "mkv", "webm", "m4v"},
		{"mp3", "wav", "flac", "m4a", "ogg", "aac"},
		{"pdf", "doc", "docx", "txt", "md", "rtf", "odt"},
		{"xls", "xlsx", "csv", "ods"},
		{"ppt", "pptx", "odp"},
		{"rs", "py", "js", "ts", "jsx", "tsx", "go", "java", "c", "cpp", "h", "hpp",
			"rb", "php", "swift", "kt", "scala", "sh", "bash", "zsh", "sql", "html",
			"css", "json", "yaml", "yml", "toml", "xml"},
		{"zip", "tar", "gz", "7z", "rar"},
	}
	set := make(map[string]bool)
	for _, g := range groups {
		for _, ext := range g {
			set[ext] = true
		}
	}
	return set
}

// walk recursively enumerates recognized files under root, sending each
// absolute path on paths. It follows symlinked
// directories and files, guarding against cycles with a visited-realpath
// set, and skips hidden entries (dotfiles/dotdirs) and any entry it
// cannot stat, without aborting the walk.
func walk(ctx context.Context, root string, paths chan<- string) error {
	visited := make(map[string]bool)
	return walkDir(ctx, root, root, visited, paths)
}

func walkDir(ctx context.Context, absRoot, dir string, visited map[string]bool, paths chan<- string) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil
	}
	if visited[real] {
		return nil
	}
	visited[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if isHidden(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := walkDir(ctx, absRoot, path, visited, paths); err != nil {
				return err
			}
			continue
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil {
				continue
			}
			if info.IsDir() {
				if err := walkDir(ctx, absRoot, path, visited, paths); err != nil {
					return err
				}
				continue
			}
		}

		if !recognizedExtensions[extensionOf(entry.Name())] {
			continue
		}

		select {
		case paths <- path:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
