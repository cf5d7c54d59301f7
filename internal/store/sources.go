package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
	"github.com/hippo-mem/hippo/internal/memory"
)

// ListSources returns every configured source, enabled or not.
func (s *Store) ListSources(ctx context.Context) ([]memory.SourceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT config_json, enabled, last_sync FROM sources`)
	if err != nil {
		return nil, hippoerrors.StorageError("failed to list sources", err)
	}
	defer rows.Close()

	var out []memory.SourceConfig
	for rows.Next() {
		cfg, err := scanSourceConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// GetSource returns the SourceConfig for key (memory.Source.Key()), or a
// NotFound error.
func (s *Store) GetSource(ctx context.Context, key string) (memory.SourceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return memory.SourceConfig{}, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT config_json, enabled, last_sync FROM sources WHERE id = ?`, key)
	cfg, err := scanSourceConfig(row)
	if err == sql.ErrNoRows {
		return memory.SourceConfig{}, hippoerrors.NotFoundError("source not found", err).WithDetail("key", key)
	}
	return cfg, err
}

// AddSource inserts or replaces the configuration for cfg.Source.
func (s *Store) AddSource(ctx context.Context, cfg memory.SourceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return hippoerrors.StorageError("failed to marshal source config", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sources (id, config_json, enabled, last_sync) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json, enabled = excluded.enabled, last_sync = excluded.last_sync
	`, cfg.Source.Key(), string(configJSON), boolToInt(cfg.Enabled), nullableTimePtr(cfg.LastSync))
	if err != nil {
		return hippoerrors.StorageError("failed to add source", err).WithDetail("key", cfg.Source.Key())
	}
	return nil
}

// RemoveSource deletes the source configuration for key. It does not
// remove the memories that source produced; callers that want a full
// clear_all-style removal call DeleteByPathPrefix (or an equivalent
// per-source predicate) separately.
func (s *Store) RemoveSource(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, key); err != nil {
		return hippoerrors.StorageError("failed to remove source", err).WithDetail("key", key)
	}
	return nil
}

// UpdateSourceLastSync stamps the last_sync time for key, both in the
// denormalized column and inside the config_json blob.
func (s *Store) UpdateSourceLastSync(ctx context.Context, key string, when time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	row := s.db.QueryRowContext(ctx, `SELECT config_json FROM sources WHERE id = ?`, key)
	var configJSON string
	if err := row.Scan(&configJSON); err != nil {
		if err == sql.ErrNoRows {
			return hippoerrors.NotFoundError("source not found", err).WithDetail("key", key)
		}
		return hippoerrors.StorageError("failed to read source config", err)
	}

	var cfg memory.SourceConfig
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return hippoerrors.StorageError("failed to unmarshal source config", err)
	}
	whenCopy := when
	cfg.LastSync = &whenCopy

	updated, err := json.Marshal(cfg)
	if err != nil {
		return hippoerrors.StorageError("failed to marshal source config", err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE sources SET config_json = ?, last_sync = ? WHERE id = ?`,
		string(updated), when.Format(timeLayout), key); err != nil {
		return hippoerrors.StorageError("failed to update source last_sync", err)
	}
	return nil
}

func scanSourceConfig(r rowScanner) (memory.SourceConfig, error) {
	var configJSON string
	var enabled int
	var lastSync sql.NullString
	if err := r.Scan(&configJSON, &enabled, &lastSync); err != nil {
		return memory.SourceConfig{}, err
	}

	var cfg memory.SourceConfig
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return memory.SourceConfig{}, hippoerrors.StorageError("failed to unmarshal source config", err)
	}
	cfg.Enabled = enabled != 0
	return cfg, nil
}

func nullableTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeLayout)
}
