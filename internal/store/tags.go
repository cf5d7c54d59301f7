package store

import (
	"context"
	"database/sql"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
)

// TagCount is one row of the denormalized tag index: a tag name and the
// number of memories currently carrying it.
type TagCount struct {
	Name  string
	Count int
}

// ListTags returns every tag with count > 0, ordered by count descending
// then name ascending.
func (s *Store) ListTags(ctx context.Context) ([]TagCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, count FROM tags WHERE count > 0 ORDER BY count DESC, name ASC`)
	if err != nil {
		return nil, hippoerrors.StorageError("failed to list tags", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, hippoerrors.StorageError("failed to scan tag row", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// adjustTagCounts diffs before and after tag name sets and applies the
// delta to the tags table within tx: names only in before are decremented,
// names only in after are incremented. Always runs in the same
// transaction as the memories row write it accompanies.
func adjustTagCounts(ctx context.Context, tx *sql.Tx, before, after []string) error {
	beforeSet := toSet(before)
	afterSet := toSet(after)

	for name := range afterSet {
		if beforeSet[name] {
			continue
		}
		if err := incrementTag(ctx, tx, name, 1); err != nil {
			return err
		}
	}
	for name := range beforeSet {
		if afterSet[name] {
			continue
		}
		if err := incrementTag(ctx, tx, name, -1); err != nil {
			return err
		}
	}
	return nil
}

func incrementTag(ctx context.Context, tx *sql.Tx, name string, delta int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tags (name, count) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET count = MAX(count + excluded.count, 0)
	`, name, delta)
	if err != nil {
		return hippoerrors.StorageError("failed to adjust tag count", err).WithDetail("tag", name)
	}
	return nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
