// Command prove-file exercises the proving pipeline against one batch
// without going through the HTTP admission path or the queue: it reads
// PROVE_BATCH_INDEX and PROVE_CHUNKS from the environment and drives the
// trace/circuit/store pipeline directly.
package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	rlog "github.com/rollupwatch/prove-responder/log"
	"github.com/rollupwatch/prove-responder/prover/circuit"
	"github.com/rollupwatch/prove-responder/prover/store"
	"github.com/rollupwatch/prove-responder/prover/trace"
	"github.com/rollupwatch/prove-responder/prover/types"
)

func main() {
	log := rlog.New("debug", true)

	batchIndex, err := strconv.ParseUint(envOr("PROVE_BATCH_INDEX", "101"), 10, 64)
	if err != nil {
		log.Error().Err(err).Msg("invalid PROVE_BATCH_INDEX")
		os.Exit(1)
	}

	var chunks [][]uint64
	if err := json.Unmarshal([]byte(envOr("PROVE_CHUNKS", "[]")), &chunks); err != nil || len(chunks) == 0 {
		log.Error().Err(err).Msg("PROVE_CHUNKS must be a non-empty JSON array of block-number lists, e.g. [[1],[2,3]]")
		os.Exit(1)
	}

	l2RPC := os.Getenv("L2_RPC")
	proofDir := envOr("PROVER_PROOF_DIR", "./proof")

	st, err := store.New(proofDir)
	if err != nil {
		log.Error().Err(err).Msg("failed to open proof store")
		os.Exit(1)
	}
	if err := st.EnsureBatchDir(batchIndex); err != nil {
		log.Error().Err(err).Msg("failed to create batch directory")
		os.Exit(1)
	}

	ctx := context.Background()
	fetcher, err := trace.Dial(ctx, l2RPC)
	if err != nil {
		log.Error().Err(err).Msg("failed to dial L2 RPC")
		os.Exit(1)
	}
	defer fetcher.Close()

	prover := circuit.NewReferenceProver()

	chunkProofs := make([]types.ChunkProof, 0, len(chunks))
	for i, blockNumbers := range chunks {
		traces, err := fetcher.FetchBlockTraces(ctx, blockNumbers)
		if err != nil {
			log.Error().Err(err).Int("chunk_index", i).Msg("trace fetch failed")
			os.Exit(1)
		}
		proof, err := prover.ProveChunk(traces)
		if err != nil {
			log.Error().Err(err).Int("chunk_index", i).Msg("chunk proof failed")
			os.Exit(1)
		}
		chunkProofs = append(chunkProofs, proof)
		log.Info().Int("chunk_index", i).Msg("chunk proof complete")
	}

	proofData, piData, err := prover.ProveBatch(chunkProofs)
	if err != nil {
		log.Error().Err(err).Msg("aggregated batch proof failed")
		os.Exit(1)
	}

	if err := st.WriteProofArtifacts(batchIndex, proofData, piData); err != nil {
		log.Error().Err(err).Msg("failed to persist proof artifacts")
		os.Exit(1)
	}

	log.Info().Uint64("batch_index", batchIndex).Str("proof_dir", st.BatchDir(batchIndex)).Msg("batch proof complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
