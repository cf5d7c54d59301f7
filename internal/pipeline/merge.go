package pipeline

import (
	"context"
	"time"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
	"github.com/hippo-mem/hippo/internal/memory"
)

// resolve decides what Memory to upsert for fresh: if path already has a
// record, the existing record is refreshed in place via
// Memory.ReplaceWith (preserving id, CreatedAt, IsFavorite, Connections,
// and User-sourced tags) instead of minting a new id for the same file on
// every re-index. Otherwise fresh is used as-is, a brand new record.
func resolve(ctx context.Context, store memoryLookup, fresh *memory.Memory, now time.Time) (*memory.Memory, error) {
	existing, err := store.GetByPath(ctx, fresh.Path)
	if err != nil {
		if hippoerrors.GetCode(err) == hippoerrors.ErrCodeNotFound {
			return fresh, nil
		}
		return nil, err
	}
	return existing.ReplaceWith(fresh, now), nil
}

// memoryLookup is the subset of Store's read surface merge needs.
type memoryLookup interface {
	GetByPath(ctx context.Context, path string) (*memory.Memory, error)
}
