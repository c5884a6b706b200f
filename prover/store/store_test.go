package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_WriteAndReadArtifacts(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.False(t, s.IsProved(4))

	require.NoError(t, s.WriteProofArtifacts(4, []byte("proof-bytes"), []byte("pi-bytes")))

	proofData, piData, errMsg := s.ReadResult(4)
	require.Empty(t, errMsg)
	require.Equal(t, []byte("proof-bytes"), proofData)
	require.Equal(t, []byte("pi-bytes"), piData)
	require.True(t, s.IsProved(4))
}

func TestStore_ReadResult_MissingSubdirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	proofData, piData, errMsg := s.ReadResult(99)
	require.Empty(t, errMsg)
	require.Nil(t, proofData)
	require.Nil(t, piData)
}

func TestStore_ReadResult_MissingFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.EnsureBatchDir(5))
	require.NoError(t, os.WriteFile(filepath.Join(s.BatchDir(5), PiFileName), []byte("pi-only"), 0o644))

	proofData, piData, errMsg := s.ReadResult(5)
	require.Equal(t, "Failed to load proof_data", errMsg)
	require.Nil(t, proofData)
	require.Equal(t, []byte("pi-only"), piData)
}

func TestStore_WriteArtifact_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.WriteArtifact(1, ProofFileName, []byte("complete")))

	entries, err := os.ReadDir(s.BatchDir(1))
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.Contains(e.Name(), ".tmp-"), "no leftover temp file should remain: %s", e.Name())
	}
}

func TestStore_ReadResult_DirectoryReadError(t *testing.T) {
	// Point the store root at a path that cannot be listed as a directory
	// (a regular file), forcing os.ReadDir to fail.
	parent := t.TempDir()
	filePath := filepath.Join(parent, "not-a-dir")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	s := &Store{root: filePath}
	_, _, errMsg := s.ReadResult(1)
	require.Equal(t, "Read proof dir error", errMsg)
}
