package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
	"github.com/hippo-mem/hippo/internal/memory"
)

const timeLayout = time.RFC3339Nano

// Upsert replaces the record at m.Path, if any, preserving the existing
// row's id — callers that want a memory's id to stay stable across
// re-index must pass the same *memory.Memory returned by GetByPath
// (mutated via Memory.ReplaceWith), not a freshly constructed one. The
// row write and the tag-count denormalization happen in one transaction.
func (s *Store) Upsert(ctx context.Context, m *memory.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hippoerrors.StorageError("failed to begin upsert transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previousTags []string
	row := tx.QueryRowContext(ctx, `SELECT tags_json FROM memories WHERE id = ?`, string(m.ID))
	var tagsJSON string
	if err := row.Scan(&tagsJSON); err == nil {
		previousTags = tagNames(decodeTags(tagsJSON))
	} else if err != sql.ErrNoRows {
		return hippoerrors.StorageError("failed to read previous tags", err)
	}

	sourceJSON, err := json.Marshal(m.Source)
	if err != nil {
		return hippoerrors.StorageError("failed to marshal source", err)
	}
	kindJSON, err := json.Marshal(m.Kind)
	if err != nil {
		return hippoerrors.StorageError("failed to marshal kind", err)
	}
	metadataJSON, err := json.Marshal(m.Metadata)
	if err != nil {
		return hippoerrors.StorageError("failed to marshal metadata", err)
	}
	tagsOut, err := json.Marshal(m.Tags)
	if err != nil {
		return hippoerrors.StorageError("failed to marshal tags", err)
	}
	connectionsJSON, err := json.Marshal(m.Connections)
	if err != nil {
		return hippoerrors.StorageError("failed to marshal connections", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO memories (
			id, path, filename, extension, source_json, kind_name, kind_json,
			metadata_json, tags_json, tags_text, embedding_id, connections_json,
			is_favorite, title, created_at, modified_at, indexed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind_name = excluded.kind_name,
			kind_json = excluded.kind_json,
			metadata_json = excluded.metadata_json,
			tags_json = excluded.tags_json,
			tags_text = excluded.tags_text,
			embedding_id = excluded.embedding_id,
			connections_json = excluded.connections_json,
			is_favorite = excluded.is_favorite,
			title = excluded.title,
			modified_at = excluded.modified_at,
			indexed_at = excluded.indexed_at
	`,
		string(m.ID), m.Path, m.Filename(), m.Extension(), string(sourceJSON),
		string(m.Kind.Name), string(kindJSON), string(metadataJSON), string(tagsOut),
		m.TagsText(), nullableString(m.EmbeddingID), string(connectionsJSON),
		boolToInt(m.IsFavorite), nullableStringPtr(m.Metadata.Title),
		m.CreatedAt.Format(timeLayout), m.ModifiedAt.Format(timeLayout), m.IndexedAt.Format(timeLayout),
	)
	if err != nil {
		return hippoerrors.StorageError("failed to upsert memory row", err).WithDetail("path", m.Path)
	}

	if err := adjustTagCounts(ctx, tx, previousTags, tagNames(m.Tags)); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID returns the memory with the given id, or a NotFound error.
func (s *Store) GetByID(ctx context.Context, id memory.ID) (*memory.Memory, error) {
	return s.queryOne(ctx, `SELECT `+memoryColumns+` FROM memories WHERE id = ?`, string(id))
}

// GetByPath returns the memory at path, or a NotFound error.
func (s *Store) GetByPath(ctx context.Context, path string) (*memory.Memory, error) {
	return s.queryOne(ctx, `SELECT `+memoryColumns+` FROM memories WHERE path = ?`, path)
}

// FindByPathPrefix returns every memory whose path starts with prefix.
func (s *Store) FindByPathPrefix(ctx context.Context, prefix string) ([]*memory.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE path LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, hippoerrors.StorageError("failed to query by path prefix", err)
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

// Delete removes the memory with id, its tag counts, and its embedding row,
// all in one transaction.
func (s *Store) Delete(ctx context.Context, id memory.ID) error {
	return s.deleteWhere(ctx, `id = ?`, string(id))
}

// DeleteByPath removes the memory at path.
func (s *Store) DeleteByPath(ctx context.Context, path string) error {
	return s.deleteWhere(ctx, `path = ?`, path)
}

// DeleteByPathPrefix removes every memory whose path starts with prefix.
func (s *Store) DeleteByPathPrefix(ctx context.Context, prefix string) error {
	return s.deleteWhere(ctx, `path LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
}

func (s *Store) deleteWhere(ctx context.Context, predicate string, arg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hippoerrors.StorageError("failed to begin delete transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id, tags_json FROM memories WHERE `+predicate, arg)
	if err != nil {
		return hippoerrors.StorageError("failed to select memories for delete", err)
	}
	var ids []string
	var allTags []string
	for rows.Next() {
		var id, tagsJSON string
		if err := rows.Scan(&id, &tagsJSON); err != nil {
			rows.Close()
			return hippoerrors.StorageError("failed to scan memory for delete", err)
		}
		ids = append(ids, id)
		allTags = append(allTags, tagNames(decodeTags(tagsJSON))...)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return hippoerrors.StorageError("failed to iterate memories for delete", err)
	}

	if len(ids) == 0 {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE `+predicate, arg); err != nil {
		return hippoerrors.StorageError("failed to delete memory rows", err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings WHERE memory_id = ?`, id); err != nil {
			return hippoerrors.StorageError("failed to delete embedding row", err)
		}
	}
	if err := adjustTagCounts(ctx, tx, allTags, nil); err != nil {
		return err
	}

	return tx.Commit()
}

// ToggleFavorite flips is_favorite for id and returns the new state.
func (s *Store) ToggleFavorite(ctx context.Context, id memory.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, `SELECT is_favorite FROM memories WHERE id = ?`, string(id)).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return false, hippoerrors.NotFoundError("memory not found", err).WithDetail("id", string(id))
		}
		return false, hippoerrors.StorageError("failed to read favorite state", err)
	}

	next := 1 - current
	if _, err := s.db.ExecContext(ctx, `UPDATE memories SET is_favorite = ? WHERE id = ?`, next, string(id)); err != nil {
		return false, hippoerrors.StorageError("failed to toggle favorite", err)
	}
	return next == 1, nil
}

const memoryColumns = `id, path, source_json, kind_json, metadata_json, tags_json,
	embedding_id, connections_json, is_favorite, created_at, modified_at, indexed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) queryOne(ctx context.Context, query string, arg string) (*memory.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, query, arg)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, hippoerrors.NotFoundError("memory not found", err)
	}
	return m, err
}

func scanMemory(r rowScanner) (*memory.Memory, error) {
	var (
		id, path, sourceJSON, kindJSON, metadataJSON, tagsJSON string
		embeddingID, connectionsJSON                           string
		isFavorite                                             int
		createdAt, modifiedAt, indexedAt                       string
	)
	if err := r.Scan(&id, &path, &sourceJSON, &kindJSON, &metadataJSON, &tagsJSON,
		&embeddingID, &connectionsJSON, &isFavorite, &createdAt, &modifiedAt, &indexedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, hippoerrors.StorageError("failed to scan memory row", err)
	}

	m := &memory.Memory{
		ID:          memory.ID(id),
		Path:        path,
		EmbeddingID: embeddingID,
		IsFavorite:  isFavorite != 0,
	}
	if err := json.Unmarshal([]byte(sourceJSON), &m.Source); err != nil {
		return nil, hippoerrors.StorageError("failed to unmarshal source", err)
	}
	if err := json.Unmarshal([]byte(kindJSON), &m.Kind); err != nil {
		return nil, hippoerrors.StorageError("failed to unmarshal kind", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &m.Metadata); err != nil {
		return nil, hippoerrors.StorageError("failed to unmarshal metadata", err)
	}
	m.Tags = decodeTags(tagsJSON)
	if connectionsJSON != "" {
		if err := json.Unmarshal([]byte(connectionsJSON), &m.Connections); err != nil {
			return nil, hippoerrors.StorageError("failed to unmarshal connections", err)
		}
	}

	var err error
	if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, hippoerrors.StorageError("failed to parse created_at", err)
	}
	if m.ModifiedAt, err = time.Parse(timeLayout, modifiedAt); err != nil {
		return nil, hippoerrors.StorageError("failed to parse modified_at", err)
	}
	if m.IndexedAt, err = time.Parse(timeLayout, indexedAt); err != nil {
		return nil, hippoerrors.StorageError("failed to parse indexed_at", err)
	}

	return m, nil
}

func decodeTags(tagsJSON string) []memory.Tag {
	if tagsJSON == "" {
		return nil
	}
	var tags []memory.Tag
	_ = json.Unmarshal([]byte(tagsJSON), &tags)
	return tags
}

func tagNames(tags []memory.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableStringPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// escapeLike escapes LIKE metacharacters in a user-supplied path prefix.
func escapeLike(s string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_")
	return replacer.Replace(s)
}
