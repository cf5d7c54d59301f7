package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_SmallFile_MatchesFullSHA256(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readme.txt")
	content := []byte("Hello, World!")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	digest, ok, err := File(path)

	require.NoError(t, err)
	assert.True(t, ok)
	want := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(want[:]), digest)
}

func TestFile_AtFullHashThreshold_HashesWholeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exactly-100mib")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(FullHashThreshold))
	require.NoError(t, f.Close())

	digest, ok, err := File(path)

	require.NoError(t, err)
	assert.True(t, ok)
	// A sparse all-zero file at exactly the threshold is hashed in full.
	h := sha256.New()
	h.Write(make([]byte, FullHashThreshold))
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), digest)
}

func TestFile_OverFullHashThreshold_UsesPartialStrategy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "over-100mib")
	f, err := os.Create(path)
	require.NoError(t, err)
	size := int64(FullHashThreshold + 1)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())

	digest, ok, err := File(path)

	require.NoError(t, err)
	assert.True(t, ok)

	h := sha256.New()
	h.Write(make([]byte, chunkSize))
	var sizeBytes [8]byte
	binary.LittleEndian.PutUint64(sizeBytes[:], uint64(size))
	h.Write(sizeBytes[:])
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), digest, "must hash first chunk + little-endian size, not the whole file")
}

func TestFile_AtUnhashedThreshold_HashAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huge")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(UnhashedThreshold))
	require.NoError(t, f.Close())

	digest, ok, err := File(path)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, digest)
}

func TestFile_JustBelowUnhashedThreshold_StillHashed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "just-below-huge")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(UnhashedThreshold - 1))
	require.NoError(t, f.Close())

	_, ok, err := File(path)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFile_MissingFile_ReturnsError(t *testing.T) {
	_, _, err := File(filepath.Join(t.TempDir(), "does-not-exist"))

	require.Error(t, err)
}
