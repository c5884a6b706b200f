// Command setup-prover writes the KZG-style parameter files the real ZK
// circuit library would consume, one per circuit degree. The real halo2/KZG
// setup routine is the external circuit library this system does not
// implement, so this command emits deterministic placeholder parameter
// blobs of the same shape (one file per degree, seed-derived content) so
// the rest of the pipeline has real files to point PROVER_PARAMS_DIR at.
package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	rlog "github.com/rollupwatch/prove-responder/log"
)

// manifest records which parameter file was generated for each circuit
// degree, and when.
type manifest struct {
	GeneratedAt string            `yaml:"generated_at"`
	Files       map[uint32]string `yaml:"files_by_degree"`
}

// seed is a fixed byte sequence used only to derive deterministic
// placeholder content, so repeated runs produce byte-identical output.
var seed = [16]byte{0x59, 0x62, 0xbe, 0x5d, 0x76, 0x3d, 0x31, 0x8d, 0x17, 0xdb, 0x37, 0x32, 0x54, 0x06, 0xbc, 0xe5}

// degrees are the circuit sizes this system provisions parameters for: the
// super circuit (16) and the aggregator circuit (25).
var degrees = []uint32{16, 25}

func main() {
	log := rlog.New("info", true)

	paramsDir := os.Getenv("PROVER_PARAMS_DIR")
	if paramsDir == "" {
		paramsDir = "./params"
	}

	if err := os.MkdirAll(paramsDir, 0o755); err != nil {
		log.Error().Err(err).Msg("failed to create params directory")
		os.Exit(1)
	}

	m := manifest{GeneratedAt: time.Now().UTC().Format(time.RFC3339), Files: make(map[uint32]string)}

	for _, degree := range degrees {
		name, err := writeParams(paramsDir, degree)
		if err != nil {
			log.Error().Err(err).Uint32("degree", degree).Msg("failed to write params")
			os.Exit(1)
		}
		m.Files[degree] = name
		log.Info().Uint32("degree", degree).Msg("create params successfully")
	}

	if err := writeManifest(paramsDir, m); err != nil {
		log.Error().Err(err).Msg("failed to write params manifest")
		os.Exit(1)
	}
}

func writeManifest(dir string, m manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal params manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "params_manifest.yaml"), data, 0o644)
}

func writeParams(dir string, degree uint32) (string, error) {
	h := sha256.New()
	h.Write(seed[:])
	h.Write([]byte(fmt.Sprintf("degree:%d", degree)))
	blob := h.Sum(nil)

	name := fmt.Sprintf("params_degree_%d.bin", degree)
	if err := os.WriteFile(filepath.Join(dir, name), blob, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
