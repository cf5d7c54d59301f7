package pipeline

import "mime"

// mimeTypeFor derives a mime type from a lowercase, dot-less extension,
// using the stdlib's registered type table with a few extra extensions
// it doesn't know about layered on top.
func mimeTypeFor(ext string) string {
	if t, ok := extraMimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	return ""
}

var extraMimeTypes = map[string]string{
	"heic": "image/heic",
	"heif": "image/heif",
	"raw":  "image/x-raw",
	"cr2":  "image/x-canon-cr2",
	"nef":  "image/x-nikon-nef",
	"md":   "text/markdown",
	"yaml": "application/yaml",
	"yml":  "application/yaml",
	"toml": "application/toml",
	"rs":   "text/x-rust",
	"go":   "text/x-go",
	"py":   "text/x-python",
}
