package worker

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFile writes data to dir/name, creating dir if necessary. Verifier
// synthesis is best-effort and optional, so unlike the
// artifact store it does not need the temp-then-rename discipline: a
// verifier is a convenience output, not part of the proved/not-proved
// idempotence ledger.
func writeFile(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("worker: failed to create verifier dir %q: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("worker: failed to write verifier file: %w", err)
	}
	return nil
}
