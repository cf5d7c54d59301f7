package store

import (
	"context"
	"strings"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
	"github.com/hippo-mem/hippo/internal/memory"
)

// CandidateFilter narrows the SQL-expressible part of a search query
// before in-process scoring takes over, a two-stage retrieve-then-score
// shape: substring match on the denormalized tags_text column, exact kind
// name, and a path LIKE prefix. Any zero field is not applied.
type CandidateFilter struct {
	IncludeTags []string
	PathPrefix  string
	Kinds       []memory.KindName
	Limit       int
}

const defaultCandidateLimit = 5000

// SearchCandidates returns up to filter.Limit (default 5000) memories
// matching filter, most-recently-modified first. Finer scoring (term
// weights, tag excludes, fuzzy/semantic fusion) happens in-process over
// this candidate set, a retrieve-then-score split over a keyword stage
// and a vector stage.
func (s *Store) SearchCandidates(ctx context.Context, filter CandidateFilter) ([]*memory.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}

	var where []string
	var args []any

	for _, tag := range filter.IncludeTags {
		where = append(where, `tags_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(tag))+"%")
	}
	if filter.PathPrefix != "" {
		where = append(where, `path LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(filter.PathPrefix)+"%")
	}
	if len(filter.Kinds) > 0 {
		placeholders := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		where = append(where, "kind_name IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT ` + memoryColumns + ` FROM memories`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY modified_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, hippoerrors.StorageError("failed to query search candidates", err)
	}
	defer rows.Close()

	var out []*memory.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
