package watcher

import (
	"context"
	"fmt"
	"math/big"
	"time"

	gethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/rollupwatch/prove-responder/metrics"
	"github.com/rollupwatch/prove-responder/prover/types"
	"github.com/rollupwatch/prove-responder/rollup/abi"
	"github.com/rollupwatch/prove-responder/rollup/chunk"
	"github.com/rollupwatch/prove-responder/rollup/client"
)

// Config holds the watcher's runtime parameters, one knob per tunable step
// of the challenge-response iteration.
type Config struct {
	// L2RPC is passed through to the prover service as ProveRequest.rpc.
	L2RPC string
	// ChallengeWindowBlocks is the log-scan window width in blocks,
	// defaulting to 21600 (~3 days at 12s blocks).
	ChallengeWindowBlocks uint64
	// IterationRetryDelay is the sleep after a recoverable per-iteration
	// error before retrying.
	IterationRetryDelay time.Duration
	// ProofPollInterval is how often /query_proof is polled while waiting
	// for the prover to finish (nominally every 5 minutes).
	ProofPollInterval time.Duration
}

// DefaultConfig returns the watcher defaults.
func DefaultConfig() Config {
	return Config{
		ChallengeWindowBlocks: 21600,
		IterationRetryDelay:   10 * time.Second,
		ProofPollInterval:     5 * time.Minute,
	}
}

// Watcher runs the challenge-response pipeline: discover a challenge on
// L1, reconstruct the challenged batch from its commit transaction, drive
// the prover service, and land proveState before the window closes.
type Watcher struct {
	cfg     Config
	eth     client.EthClient
	rollup  *abi.Binding
	sender  *client.Sender
	prover  *ProverClient
	log     zerolog.Logger
	metrics *metrics.WatcherMetrics
}

// New constructs a Watcher.
func New(cfg Config, eth client.EthClient, rollup *abi.Binding, sender *client.Sender, prover *ProverClient, log zerolog.Logger) *Watcher {
	return &Watcher{
		cfg:     cfg,
		eth:     eth,
		rollup:  rollup,
		sender:  sender,
		prover:  prover,
		log:     log.With().Str("component", "challenge_handler").Logger(),
		metrics: metrics.Watcher(),
	}
}

// Run loops until ctx is canceled. Each iteration's recoverable errors are logged and followed by
// IterationRetryDelay before the next attempt.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.metrics.IterationsTotal.Inc()
		if err := w.runIteration(ctx); err != nil {
			w.log.Warn().Err(err).Msg("iteration ended with a recoverable error")
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.cfg.IterationRetryDelay):
			}
		}
	}
}

// runIteration drives one challenge from discovery to proveState. A nil
// error with no work done (no challenge logs in window) is a normal,
// successful iteration.
func (w *Watcher) runIteration(ctx context.Context) error {
	// Step 1: head sample.
	head, err := w.eth.BlockNumber(ctx)
	if err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("head_sample").Inc()
		return fmt.Errorf("watcher: failed to sample L1 head: %w", err)
	}

	start := uint64(1)
	if head > w.cfg.ChallengeWindowBlocks {
		start = head - w.cfg.ChallengeWindowBlocks
	}

	// Step 2: challenge discovery.
	batchIndex, found, err := w.discoverChallenge(ctx, start, head)
	if err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("challenge_discovery").Inc()
		return fmt.Errorf("watcher: challenge discovery failed: %w", err)
	}
	if !found {
		return nil
	}
	w.metrics.DetectedBatchIndex.Set(float64(batchIndex))
	log := w.log.With().Uint64("batch_index", batchIndex).Logger()

	// Step 3: challenge confirmation.
	inChallenge, err := w.callBatchInChallenge(ctx, batchIndex)
	if err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("challenge_confirmation").Inc()
		return fmt.Errorf("watcher: batchInChallenge call failed: %w", err)
	}
	if !inChallenge {
		log.Debug().Msg("challenge is stale or already resolved")
		return nil
	}

	// Step 4: commit lookup.
	txHash, err := w.findCommitTx(ctx, start, head, batchIndex)
	if err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("commit_lookup").Inc()
		return fmt.Errorf("watcher: commit lookup failed: %w", err)
	}

	// Step 5: calldata recovery.
	tx, _, err := w.eth.TransactionByHash(ctx, txHash)
	if err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("calldata_recovery").Inc()
		return fmt.Errorf("watcher: failed to fetch commit transaction %s: %w", txHash, err)
	}
	rawChunks, err := w.rollup.DecodeCommitBatchCalldata(tx.Data())
	if err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("calldata_decode").Inc()
		return fmt.Errorf("watcher: failed to decode commitBatch calldata: %w", err)
	}

	// Step 6: chunk decoding.
	chunks, err := chunk.Decode(rawChunks)
	if err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("chunk_decode").Inc()
		return fmt.Errorf("watcher: failed to decode chunks: %w", err)
	}
	w.metrics.ChunksLen.Set(float64(len(chunks)))

	// Step 7: prove submission.
	if err := w.submitProve(ctx, log, batchIndex, chunks); err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("prove_submission").Inc()
		w.metrics.ProverStatus.Set(metrics.ProverStatusFailed)
		return err
	}
	w.metrics.ProverStatus.Set(metrics.ProverStatusProving)

	// Step 8: proof wait.
	result, err := w.waitForProof(ctx, log, batchIndex)
	if err != nil {
		w.metrics.ErrorsTotal.WithLabelValues("proof_wait").Inc()
		w.metrics.ProverStatus.Set(metrics.ProverStatusFailed)
		return err
	}
	w.metrics.ProverStatus.Set(metrics.ProverStatusProved)

	// Step 9: on-chain submission.
	return w.submitProveState(ctx, log, batchIndex, result.ProofData.Bytes())
}

func (w *Watcher) discoverChallenge(ctx context.Context, from, to uint64) (uint64, bool, error) {
	logs, err := w.eth.FilterLogs(ctx, gethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{w.rollup.Address()},
		Topics:    [][]common.Hash{{w.rollup.ChallengeStateEventID()}},
	})
	if err != nil {
		return 0, false, err
	}
	if len(logs) == 0 {
		return 0, false, nil
	}

	// Take the first log only; later logs are picked up on a subsequent
	// iteration. topics[1], never topics[0] (the event signature hash),
	// carries the indexed batch index.
	batchIndex, err := abi.DecodeBatchIndexTopic(logs[0].Topics)
	if err != nil {
		return 0, false, fmt.Errorf("watcher: malformed ChallengeState log: %w", err)
	}
	return batchIndex, true, nil
}

func (w *Watcher) findCommitTx(ctx context.Context, from, to, batchIndex uint64) (common.Hash, error) {
	logs, err := w.eth.FilterLogs(ctx, gethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{w.rollup.Address()},
		Topics:    [][]common.Hash{{w.rollup.CommitBatchEventID()}},
	})
	if err != nil {
		return common.Hash{}, err
	}

	for _, l := range logs {
		idx, err := abi.DecodeBatchIndexTopic(l.Topics)
		if err != nil {
			continue
		}
		if idx == batchIndex {
			return l.TxHash, nil
		}
	}
	return common.Hash{}, fmt.Errorf("watcher: no CommitBatch log found for batch_index %d in window [%d,%d]", batchIndex, from, to)
}

func (w *Watcher) callBatchInChallenge(ctx context.Context, batchIndex uint64) (bool, error) {
	data, err := w.rollup.PackBatchInChallenge(batchIndex)
	if err != nil {
		return false, err
	}
	addr := w.rollup.Address()
	ret, err := w.eth.CallContract(ctx, gethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return false, err
	}
	return w.rollup.UnpackBatchInChallenge(ret)
}

func (w *Watcher) callIsBatchFinalized(ctx context.Context, batchIndex uint64) (bool, error) {
	data, err := w.rollup.PackIsBatchFinalized(batchIndex)
	if err != nil {
		return false, err
	}
	addr := w.rollup.Address()
	ret, err := w.eth.CallContract(ctx, gethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return false, err
	}
	return w.rollup.UnpackIsBatchFinalized(ret)
}

// submitProve posts the request to the prover service. "Started" is
// success, "Proving"/"Proved" are non-fatal (fall through to polling), any
// other body or transport error is a retriable failure of this iteration.
func (w *Watcher) submitProve(ctx context.Context, log zerolog.Logger, batchIndex uint64, chunks [][]uint64) error {
	req := types.ProveRequest{BatchIndex: batchIndex, Chunks: chunks, RPC: w.cfg.L2RPC}

	verdict, err := w.prover.SubmitProveBatch(ctx, req)
	if err != nil {
		return fmt.Errorf("watcher: prove_batch request failed: %w", err)
	}

	switch verdict {
	case types.VerdictStarted, types.VerdictProving, types.VerdictProved:
		log.Info().Str("verdict", verdict).Msg("prove_batch admitted")
		return nil
	default:
		return fmt.Errorf("watcher: prove_batch rejected the request: %q", verdict)
	}
}

// waitForProof polls /query_proof until both proof fields are non-empty.
// There is no enforced deadline; the caller's ctx is the only cancellation
// mechanism.
func (w *Watcher) waitForProof(ctx context.Context, log zerolog.Logger, batchIndex uint64) (types.ProveResult, error) {
	ticker := time.NewTicker(w.cfg.ProofPollInterval)
	defer ticker.Stop()

	for {
		result, err := w.prover.QueryProof(ctx, batchIndex)
		if err != nil {
			log.Warn().Err(err).Msg("query_proof request failed, retrying")
		} else if result.Ready() {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return types.ProveResult{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// submitProveState re-checks finalization, then sends the proveState
// transaction and waits a bounded interval for its receipt.
func (w *Watcher) submitProveState(ctx context.Context, log zerolog.Logger, batchIndex uint64, proofData []byte) error {
	finalized, err := w.callIsBatchFinalized(ctx, batchIndex)
	if err != nil {
		return fmt.Errorf("watcher: isBatchFinalized check failed: %w", err)
	}
	if finalized {
		log.Info().Msg("batch already finalized, abandoning proveState submission")
		return nil
	}

	calldata, err := w.rollup.PackProveState(batchIndex, proofData)
	if err != nil {
		return fmt.Errorf("watcher: failed to pack proveState calldata: %w", err)
	}

	tx, err := w.sender.SendTx(ctx, w.rollup.Address(), calldata, nil)
	if err != nil {
		if reason, ok := client.RevertReason(err, w.rollup.ABI()); ok {
			log.Error().Err(err).Str("revert_reason", reason).Msg("proveState submission reverted")
			return fmt.Errorf("watcher: proveState submission reverted: %s", reason)
		}
		return fmt.Errorf("watcher: proveState submission failed: %w", err)
	}

	receipt, err := w.sender.WaitReceipt(ctx, tx)
	if err != nil {
		log.Warn().Err(err).Str("tx_hash", tx.Hash().Hex()).Msg("proveState receipt not observed yet; next iteration will re-discover state")
		return nil
	}

	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		log.Error().Str("tx_hash", tx.Hash().Hex()).Uint64("status", receipt.Status).Msg("proveState transaction mined but reverted on-chain")
		return nil
	}

	log.Info().Str("tx_hash", tx.Hash().Hex()).Uint64("status", receipt.Status).Msg("proveState receipt observed")
	return nil
}
