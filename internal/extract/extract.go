// Package extract implements the per-kind metadata extractors: stateless
// functions from (path, kind) to a best-effort memory.Metadata. Each
// extractor never aborts the pipeline; a failure yields whatever partial
// metadata it managed to build plus a non-fatal error for the caller to
// log.
package extract

import (
	"context"

	"github.com/hippo-mem/hippo/internal/memory"
)

// Extractor is the capability interface every per-kind extractor
// implements. A central Registry dispatches to the right one by kind.
type Extractor interface {
	Extract(ctx context.Context, path string, kind memory.Kind) (memory.Metadata, error)
}

// Registry maps a Kind's discriminant to the Extractor responsible for it,
// an extension→config lookup table generalized from languages to kinds.
type Registry struct {
	extractors map[memory.KindName]Extractor
}

// NewRegistry builds a Registry wired with the default extractor for
// every kind that has one. Image/Video/Audio/Document/Code are covered;
// Spreadsheet/Presentation/Archive/Database/Folder/Unknown have no
// dedicated extractor (they populate only Kind) and are left
// unregistered — Dispatch returns a zero Metadata for those.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[memory.KindName]Extractor)}
	r.Register(memory.KindImage, NewImageExtractor())
	r.Register(memory.KindVideo, NewVideoExtractor())
	r.Register(memory.KindAudio, NewAudioExtractor())
	r.Register(memory.KindDocument, NewDocumentExtractor())
	r.Register(memory.KindCode, NewCodeExtractor())
	return r
}

// Register wires an Extractor for a kind, overwriting any previous one.
func (r *Registry) Register(kind memory.KindName, e Extractor) {
	r.extractors[kind] = e
}

// Dispatch extracts metadata for path given its kind, using whichever
// extractor is registered for kind.Name. Returns an empty Metadata, nil
// for kinds with no registered extractor.
func (r *Registry) Dispatch(ctx context.Context, path string, kind memory.Kind) (memory.Metadata, error) {
	e, ok := r.extractors[kind.Name]
	if !ok {
		return memory.Metadata{}, nil
	}
	return e.Extract(ctx, path, kind)
}
