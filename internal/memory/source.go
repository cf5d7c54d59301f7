package memory

import "time"

// SourceKind discriminates the Source tagged union.
type SourceKind string

const (
	// SourceLocal is the only variant hippo actively indexes: a directory
	// tree on the local filesystem.
	SourceLocal SourceKind = "local"
	// SourceCloud is a round-tripped-only variant for cloud storage
	// accounts; hippo stores and exports it but never walks it.
	SourceCloud SourceKind = "cloud"
)

// Source identifies where a Memory's path came from. Only Local is
// actively indexed; other variants may be stored and round-tripped through
// export/import but are inert.
type Source struct {
	Kind SourceKind `json:"kind"`
	// Root is the absolute root directory, set when Kind is SourceLocal.
	Root string `json:"root,omitempty"`
	// Account identifies a cloud account/bucket, set for non-local kinds.
	Account string `json:"account,omitempty"`
}

// NewLocalSource builds a Source for a local directory root.
func NewLocalSource(root string) Source {
	return Source{Kind: SourceLocal, Root: root}
}

// Key returns a stable identifier for a Source suitable for use as a map
// key (e.g. SourceConfig lookups, watcher registration).
func (s Source) Key() string {
	switch s.Kind {
	case SourceLocal:
		return string(SourceLocal) + ":" + s.Root
	default:
		return string(s.Kind) + ":" + s.Account
	}
}

// SourceConfig is the per-source configuration persisted by Store: sync
// cadence, enable state, and path filters.
type SourceConfig struct {
	Source   Source `json:"source"`
	Enabled  bool   `json:"enabled"`
	// SyncInterval is how often the scheduler re-syncs this source.
	SyncInterval time.Duration `json:"sync_interval"`
	// LastSync is nil until the source has been synced at least once.
	LastSync *time.Time `json:"last_sync,omitempty"`

	IncludePatterns []string `json:"include_patterns,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
}

// DefaultSyncInterval is the per-source re-sync cadence used when a
// SourceConfig doesn't specify one.
const DefaultSyncInterval = 3600 * time.Second
