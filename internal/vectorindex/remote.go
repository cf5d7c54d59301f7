package vectorindex

import "context"

// RemoteBackend is the interface an out-of-process vector database (e.g. a
// Qdrant-style service on a loopback port) would implement. Nothing
// currently satisfies it — coder/hnsw runs
// embedded in-process, so this stays reserved for a future backend and the
// stub below is the only implementation.
type RemoteBackend interface {
	Search(ctx context.Context, query []float32, family Family, k int) ([]Result, error)
	Upsert(ctx context.Context, id string, vector []float32, family Family) error
	Delete(ctx context.Context, id string, family Family) error
}

// UnconfiguredRemote is a RemoteBackend that always reports degraded mode.
// It exists so callers that want to prefer a remote backend when one is
// configured have something to hold before one is.
type UnconfiguredRemote struct{}

func (UnconfiguredRemote) Search(context.Context, []float32, Family, int) ([]Result, error) {
	return nil, ErrDegraded
}

func (UnconfiguredRemote) Upsert(context.Context, string, []float32, Family) error {
	return ErrDegraded
}

func (UnconfiguredRemote) Delete(context.Context, string, Family) error {
	return ErrDegraded
}
