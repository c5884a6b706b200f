// Package store manages the on-disk artifact directory that doubles as the
// prover service's idempotence ledger: "batch_{N}/proof_batch_agg.data" and
// "batch_{N}/pi_batch_agg.data", present and non-empty iff the batch is
// proved. Writing directly to the final path could leave a reader
// observing a partially written file, so every artifact is first written
// to a temp file in the same directory and then renamed into place.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ProofFileName and PiFileName are the two artifacts that together
	// constitute a proved batch.
	ProofFileName = "proof_batch_agg.data"
	PiFileName    = "pi_batch_agg.data"
)

// Store roots all artifact reads and writes under a single directory.
type Store struct {
	root string
}

// New returns a Store rooted at dir. The directory is created if absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: failed to create proof dir %q: %w", dir, err)
	}
	return &Store{root: dir}, nil
}

// BatchDir returns the subdirectory path for a given batch index.
func (s *Store) BatchDir(batchIndex uint64) string {
	return filepath.Join(s.root, fmt.Sprintf("batch_%d", batchIndex))
}

// EnsureBatchDir creates the batch's artifact subdirectory. The directory
// must exist before any chunk proof is written to it.
func (s *Store) EnsureBatchDir(batchIndex uint64) error {
	dir := s.BatchDir(batchIndex)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: failed to create batch dir %q: %w", dir, err)
	}
	return nil
}

// WriteArtifact atomically writes data to name within the batch's
// directory: it writes to a temp file in the same directory first, then
// renames it into place, so a concurrent reader never observes a partial
// file.
func (s *Store) WriteArtifact(batchIndex uint64, name string, data []byte) error {
	dir := s.BatchDir(batchIndex)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: failed to create batch dir %q: %w", dir, err)
	}

	final := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: failed to create temp file for %q: %w", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to write temp file for %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to sync temp file for %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to close temp file for %q: %w", name, err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to rename temp file into place for %q: %w", name, err)
	}
	return nil
}

// WriteProofArtifacts writes both artifact files for a batch, each
// individually atomic. The pair is not written under a single combined
// transaction; readers treat any empty field as not-ready.
func (s *Store) WriteProofArtifacts(batchIndex uint64, proofData, piData []byte) error {
	if err := s.WriteArtifact(batchIndex, ProofFileName, proofData); err != nil {
		return err
	}
	return s.WriteArtifact(batchIndex, PiFileName, piData)
}

// ReadResult backs the proof query endpoint: enumerate the proof root
// for the subdirectory ending in "batch_{batchIndex}", and read both
// artifacts. A missing subdirectory yields an all-empty, error-free result.
// A missing file within an existing subdirectory sets error_msg but leaves
// the other field populated if present.
func (s *Store) ReadResult(batchIndex uint64) (proofData, piData []byte, errorMsg string) {
	suffix := fmt.Sprintf("batch_%d", batchIndex)

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, nil, "Read proof dir error"
	}

	var dir string
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			dir = filepath.Join(s.root, e.Name())
			break
		}
	}
	if dir == "" {
		return nil, nil, ""
	}

	proofData, proofErr := os.ReadFile(filepath.Join(dir, ProofFileName))
	piData, piErr := os.ReadFile(filepath.Join(dir, PiFileName))

	switch {
	case proofErr != nil:
		return nil, piData, "Failed to load proof_data"
	case piErr != nil:
		return proofData, nil, "Failed to load pi_data"
	default:
		return proofData, piData, ""
	}
}

// IsProved reports whether both artifacts exist and are non-empty for a
// batch, the condition the admission path uses to answer "Proved".
func (s *Store) IsProved(batchIndex uint64) bool {
	proofData, piData, errMsg := s.ReadResult(batchIndex)
	return errMsg == "" && len(proofData) > 0 && len(piData) > 0
}
