package trace

import (
	"context"
	"fmt"
	"testing"

	"github.com/rollupwatch/prove-responder/prover/types"
	"github.com/stretchr/testify/require"
)

type stubCaller struct {
	failOnBlock uint64
	closed      bool
}

func (s *stubCaller) CallContext(ctx context.Context, result any, method string, args ...any) error {
	if method != "getBlockTraceByNumberOrHash" {
		return fmt.Errorf("unexpected method %q", method)
	}
	hexArg, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("unexpected arg type %T", args[0])
	}
	var bn uint64
	if _, err := fmt.Sscanf(hexArg, "0x%x", &bn); err != nil {
		return err
	}
	if bn == s.failOnBlock {
		return fmt.Errorf("rpc error for block %d", bn)
	}
	out, ok := result.(*types.ProofBytes)
	if !ok {
		return fmt.Errorf("unexpected result type %T", result)
	}
	*out = types.ProofBytes{byte(bn)}
	return nil
}

func (s *stubCaller) Close() { s.closed = true }

func TestFetchBlockTraces_Success(t *testing.T) {
	f := newFetcherWithCaller(&stubCaller{failOnBlock: 99999})
	traces, err := f.FetchBlockTraces(context.Background(), []uint64{10, 11, 12})
	require.NoError(t, err)
	require.Len(t, traces, 3)
	require.Equal(t, uint64(10), traces[0].BlockNumber)
	require.Equal(t, types.ProofBytes{10}, traces[0].Raw)
}

func TestFetchBlockTraces_AbortsOnFirstFailure_NoPartialResult(t *testing.T) {
	f := newFetcherWithCaller(&stubCaller{failOnBlock: 11})
	traces, err := f.FetchBlockTraces(context.Background(), []uint64{10, 11, 12})
	require.Error(t, err)
	require.Nil(t, traces)
}

func TestFetcher_Close(t *testing.T) {
	stub := &stubCaller{}
	f := newFetcherWithCaller(stub)
	f.Close()
	require.True(t, stub.closed)
}
