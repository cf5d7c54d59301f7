package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
	"github.com/hippo-mem/hippo/internal/memory"
)

type fakeLookup struct {
	byPath map[string]*memory.Memory
}

func (f *fakeLookup) GetByPath(ctx context.Context, path string) (*memory.Memory, error) {
	if m, ok := f.byPath[path]; ok {
		return m, nil
	}
	return nil, hippoerrors.NotFoundError("no memory at path", nil)
}

func TestResolve_NewPath_ReturnsFreshUnchanged(t *testing.T) {
	store := &fakeLookup{byPath: map[string]*memory.Memory{}}
	fresh := memory.New("/a.go", memory.NewLocalSource("/"), memory.NewCodeKind("go", 0), time.Now())

	resolved, err := resolve(context.Background(), store, fresh, time.Now())
	require.NoError(t, err)
	assert.Same(t, fresh, resolved)
}

func TestResolve_ExistingPath_MergesIntoExistingRecord(t *testing.T) {
	now := time.Now()
	existing := memory.New("/a.go", memory.NewLocalSource("/"), memory.NewCodeKind("go", 0), now.Add(-time.Hour))
	existing.AddTag(memory.Tag{Name: "starred", Source: memory.TagSourceUser})
	existingID := existing.ID

	store := &fakeLookup{byPath: map[string]*memory.Memory{"/a.go": existing}}

	fresh := memory.New("/a.go", memory.NewLocalSource("/"), memory.NewCodeKind("go", 42), now)
	fresh.AddTag(memory.Tag{Name: "type:code", Source: memory.TagSourceSystem})

	resolved, err := resolve(context.Background(), store, fresh, now)
	require.NoError(t, err)

	assert.Equal(t, existingID, resolved.ID)
	assert.True(t, resolved.HasTag("starred"))
	assert.True(t, resolved.HasTag("type:code"))
	require.NotNil(t, resolved.Kind.Code)
	assert.Equal(t, 42, resolved.Kind.Code.Lines)
}

func TestResolve_LookupError_Propagates(t *testing.T) {
	store := &errLookup{}
	fresh := memory.New("/a.go", memory.NewLocalSource("/"), memory.NewCodeKind("go", 0), time.Now())

	_, err := resolve(context.Background(), store, fresh, time.Now())
	assert.Error(t, err)
}

type errLookup struct{}

func (errLookup) GetByPath(ctx context.Context, path string) (*memory.Memory, error) {
	return nil, hippoerrors.StorageError("boom", nil)
}
