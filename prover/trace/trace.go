// Package trace fetches per-block execution traces from an L2 JSON-RPC
// node, one call per block. A failure on any single call aborts the whole
// fetch rather than returning a partial trace set.
package trace

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rollupwatch/prove-responder/prover/types"
)

// method is the L2 node's custom trace RPC, named generically here since
// the concrete rollup client this talks to is an external collaborator.
const method = "getBlockTraceByNumberOrHash"

// caller is the narrow RPC surface Fetcher needs; *rpc.Client satisfies it
// structurally, and tests substitute a stub.
type caller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
	Close()
}

// Fetcher issues trace RPCs against a single L2 endpoint.
type Fetcher struct {
	client    caller
	testFetch func(blockNumbers []uint64) ([]types.BlockTrace, error)
}

// Dial connects to the L2 RPC endpoint named by rpcURL.
func Dial(ctx context.Context, rpcURL string) (*Fetcher, error) {
	client, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("trace: failed to dial %q: %w", rpcURL, err)
	}
	return &Fetcher{client: client}, nil
}

// FetchBlockTraces fetches one BlockTrace per entry in blockNumbers, in
// order. Any single call's failure aborts the whole fetch with no partial
// result, since traces for an abandoned batch must never be reused.
func (f *Fetcher) FetchBlockTraces(ctx context.Context, blockNumbers []uint64) ([]types.BlockTrace, error) {
	if f.testFetch != nil {
		return f.testFetch(blockNumbers)
	}

	traces := make([]types.BlockTrace, 0, len(blockNumbers))
	for _, bn := range blockNumbers {
		var raw types.ProofBytes
		if err := f.client.CallContext(ctx, &raw, method, fmt.Sprintf("0x%x", bn)); err != nil {
			return nil, fmt.Errorf("trace: failed to fetch trace for block %d: %w", bn, err)
		}
		traces = append(traces, types.BlockTrace{BlockNumber: bn, Raw: raw})
	}
	if len(traces) != len(blockNumbers) {
		return nil, fmt.Errorf("trace: expected %d traces, got %d", len(blockNumbers), len(traces))
	}
	return traces, nil
}

// Close releases the underlying RPC connection, if any.
func (f *Fetcher) Close() {
	if f.client != nil {
		f.client.Close()
	}
}

// newFetcherWithCaller builds a Fetcher around an arbitrary caller, used by
// tests to substitute a stub RPC client.
func newFetcherWithCaller(c caller) *Fetcher {
	return &Fetcher{client: c}
}

// NewForTest builds a Fetcher whose FetchBlockTraces is backed directly by
// fetch, bypassing JSON-RPC entirely. Intended for other packages' tests
// (e.g. the prove worker) that need a trace source without a live L2 node.
func NewForTest(fetch func(blockNumbers []uint64) ([]types.BlockTrace, error)) *Fetcher {
	return &Fetcher{testFetch: fetch}
}
