package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"time"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/vectorindex"
)

// StoreEmbedding writes (or replaces) the local fallback embedding for a
// memory. This row is consulted by the degraded-mode cosine search
// (vectorindex.CosineSearch) whenever the configured vector backend is
// unavailable; it is kept alongside, not instead of, the external index.
func (s *Store) StoreEmbedding(ctx context.Context, memoryID string, kind string, vector []float32, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (memory_id, kind_name, embedding, model, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(memory_id) DO UPDATE SET kind_name = excluded.kind_name, embedding = excluded.embedding,
			model = excluded.model, created_at = excluded.created_at
	`, memoryID, kind, encodeVector(vector), model, time.Now().Format(timeLayout))
	if err != nil {
		return hippoerrors.StorageError("failed to store embedding", err).WithDetail("memory_id", memoryID)
	}
	return nil
}

// GetEmbedding returns the stored local fallback vector for memoryID, or a
// NotFound error if none has been computed.
func (s *Store) GetEmbedding(ctx context.Context, memoryID string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT embedding FROM embeddings WHERE memory_id = ?`, memoryID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, hippoerrors.NotFoundError("embedding not found", err).WithDetail("memory_id", memoryID)
	}
	if err != nil {
		return nil, hippoerrors.StorageError("failed to read embedding", err)
	}
	return decodeVector(blob), nil
}

// DeleteEmbedding removes the local fallback embedding for memoryID, if any.
func (s *Store) DeleteEmbedding(ctx context.Context, memoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE memory_id = ?`, memoryID); err != nil {
		return hippoerrors.StorageError("failed to delete embedding", err)
	}
	return nil
}

// GetAllEmbeddings implements vectorindex.EmbeddingSource: it returns every
// stored fallback vector belonging to family, keyed by memory id, for use
// by the in-process cosine search when the external vector backend is
// degraded.
func (s *Store) GetAllEmbeddings(family vectorindex.Family) (map[string][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT memory_id, kind_name, embedding FROM embeddings`)
	if err != nil {
		return nil, hippoerrors.StorageError("failed to list embeddings", err)
	}
	defer rows.Close()

	out := make(map[string][]float32)
	for rows.Next() {
		var id, kindName string
		var blob []byte
		if err := rows.Scan(&id, &kindName, &blob); err != nil {
			return nil, hippoerrors.StorageError("failed to scan embedding row", err)
		}
		if vectorindex.FamilyForKind(memory.KindName(kindName)) != family {
			continue
		}
		out[id] = decodeVector(blob)
	}
	return out, rows.Err()
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
