// Package worker implements the prover service's single-threaded consumer:
// it peeks the admission queue, fetches traces, drives the chunk+batch
// proving pipeline, persists artifacts, and pops the queue on completion —
// success or failure. The peek/pop split keeps the queue lock held only
// across the head read and the post-completion pop, never across the
// (potentially hours-long) proving work itself.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rollupwatch/prove-responder/metrics"
	"github.com/rollupwatch/prove-responder/prover/circuit"
	"github.com/rollupwatch/prove-responder/prover/queue"
	"github.com/rollupwatch/prove-responder/prover/store"
	"github.com/rollupwatch/prove-responder/prover/trace"
	"github.com/rollupwatch/prove-responder/prover/types"
)

// IdlePollInterval is how long the worker sleeps between empty-queue checks.
const IdlePollInterval = 12 * time.Second

// TraceDialer opens a trace.Fetcher for a request's RPC endpoint. Extracted
// as a field so tests can substitute a fake without dialing real RPC.
type TraceDialer func(ctx context.Context, rpcURL string) (*trace.Fetcher, error)

// Worker drives the prove queue to completion, one request at a time.
type Worker struct {
	queue        *queue.Queue
	store        *store.Store
	chunkProver  circuit.ChunkProver
	batchProver  circuit.BatchProver
	verifierGen  circuit.EVMVerifierGenerator
	dialTrace    TraceDialer
	genVerifier  bool
	verifierDir  string
	log          zerolog.Logger
	metrics      *metrics.ProverMetrics
	idlePollTick time.Duration
}

// Option configures optional Worker behavior.
type Option func(*Worker)

// WithEVMVerifier enables synthesizing a Solidity verifier into dir after
// every successful batch proof.
func WithEVMVerifier(dir string) Option {
	return func(w *Worker) {
		w.genVerifier = true
		w.verifierDir = dir
	}
}

// WithIdlePollInterval overrides the default 12s idle poll, for tests.
func WithIdlePollInterval(d time.Duration) Option {
	return func(w *Worker) { w.idlePollTick = d }
}

// New constructs a Worker.
func New(
	q *queue.Queue,
	st *store.Store,
	chunkProver circuit.ChunkProver,
	batchProver circuit.BatchProver,
	verifierGen circuit.EVMVerifierGenerator,
	dialTrace TraceDialer,
	log zerolog.Logger,
	opts ...Option,
) *Worker {
	w := &Worker{
		queue:        q,
		store:        st,
		chunkProver:  chunkProver,
		batchProver:  batchProver,
		verifierGen:  verifierGen,
		dialTrace:    dialTrace,
		log:          log.With().Str("component", "prove_worker").Logger(),
		metrics:      metrics.Prover(),
		idlePollTick: IdlePollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run loops forever, driving one request at a time, until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		req, ok := w.queue.Peek()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.idlePollTick):
			}
			continue
		}

		w.process(ctx, req)
	}
}

// process drives a single request through the full pipeline and always
// pops the queue on exit, regardless of outcome.
func (w *Worker) process(ctx context.Context, req types.ProveRequest) {
	attemptID := uuid.NewString()
	log := w.log.With().Uint64("batch_index", req.BatchIndex).Str("attempt_id", attemptID).Logger()
	defer func() {
		w.queue.Pop()
		w.metrics.QueueDepth.Set(float64(w.queue.Len()))
	}()

	start := time.Now()
	log.Info().Msg("starting batch proof")

	if err := w.store.EnsureBatchDir(req.BatchIndex); err != nil {
		log.Error().Err(err).Msg("failed to create artifact directory")
		w.metrics.ProveFailuresTotal.WithLabelValues("artifact_dir").Inc()
		return
	}

	fetcher, err := w.dialTrace(ctx, req.RPC)
	if err != nil {
		log.Error().Err(err).Msg("failed to dial L2 RPC for trace fetch")
		w.metrics.TraceFetchFailures.Inc()
		return
	}
	defer fetcher.Close()

	chunkProofs := make([]types.ChunkProof, 0, len(req.Chunks))
	for i, blockNumbers := range req.Chunks {
		traces, err := fetcher.FetchBlockTraces(ctx, blockNumbers)
		if err != nil {
			log.Error().Err(err).Int("chunk_index", i).Msg("trace fetch failed, abandoning batch")
			w.metrics.TraceFetchFailures.Inc()
			return
		}

		proof, err := w.chunkProver.ProveChunk(traces)
		if err != nil {
			log.Error().Err(err).Int("chunk_index", i).Msg("chunk proof failed, abandoning batch")
			w.metrics.ProveFailuresTotal.WithLabelValues("chunk").Inc()
			return
		}
		if err := w.store.WriteArtifact(req.BatchIndex, fmt.Sprintf("proof_chunk_%d.data", i), proof.Proof); err != nil {
			log.Error().Err(err).Int("chunk_index", i).Msg("failed to persist chunk proof, abandoning batch")
			w.metrics.ProveFailuresTotal.WithLabelValues("artifact_write").Inc()
			return
		}
		chunkProofs = append(chunkProofs, proof)
		w.metrics.ChunkProofsTotal.Inc()
	}

	if len(chunkProofs) != len(req.Chunks) {
		log.Error().Msg("chunk proof count mismatch, abandoning batch")
		w.metrics.ProveFailuresTotal.WithLabelValues("chunk_count").Inc()
		return
	}

	proofData, piData, err := w.batchProver.ProveBatch(chunkProofs)
	if err != nil {
		log.Error().Err(err).Msg("aggregated batch proof failed")
		w.metrics.ProveFailuresTotal.WithLabelValues("batch").Inc()
		return
	}

	if err := w.store.WriteProofArtifacts(req.BatchIndex, proofData, piData); err != nil {
		log.Error().Err(err).Msg("failed to persist proof artifacts")
		w.metrics.ProveFailuresTotal.WithLabelValues("artifact_write").Inc()
		return
	}
	w.metrics.ArtifactWritesTotal.Inc()
	w.metrics.BatchProofsTotal.Inc()

	if w.genVerifier {
		if err := w.writeVerifier(proofData); err != nil {
			log.Error().Err(err).Msg("failed to synthesize EVM verifier (batch proof still valid)")
		}
	}

	w.metrics.ProvingDuration.Observe(time.Since(start).Seconds())
	log.Info().Dur("elapsed", time.Since(start)).Msg("batch proof complete")
}

func (w *Worker) writeVerifier(proofData []byte) error {
	solidity, err := w.verifierGen.GenerateVerifier(proofData)
	if err != nil {
		return fmt.Errorf("worker: verifier synthesis failed: %w", err)
	}
	return writeFile(w.verifierDir, "Verifier.sol", solidity)
}
