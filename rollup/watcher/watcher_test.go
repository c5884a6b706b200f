package watcher

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	prtypes "github.com/rollupwatch/prove-responder/prover/types"
	"github.com/rollupwatch/prove-responder/rollup/abi"
	"github.com/rollupwatch/prove-responder/rollup/chunk"
	"github.com/rollupwatch/prove-responder/rollup/client"
)

const rollupAddr = "0x000000000000000000000000000000000000beef"

type fakeEth struct {
	head              uint64
	challengeLogs     []types.Log
	commitLogs        []types.Log
	commitTx          *types.Transaction
	batchInChallenge  bool
	isBatchFinalized  bool
	callCount         map[string]int
	sentTx            *types.Transaction
	receipt           *types.Receipt
}

func newFakeEth() *fakeEth {
	return &fakeEth{callCount: map[string]int{}}
}

func (f *fakeEth) ChainID(ctx context.Context) (*big.Int, error) { return big.NewInt(1337), nil }
func (f *fakeEth) BlockNumber(ctx context.Context) (uint64, error) { return f.head, nil }
func (f *fakeEth) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(int64(f.head)), BaseFee: big.NewInt(1_000_000_000)}, nil
}
func (f *fakeEth) FilterLogs(ctx context.Context, q gethereum.FilterQuery) ([]types.Log, error) {
	f.callCount["FilterLogs"]++
	if len(q.Topics) > 0 && len(q.Topics[0]) > 0 {
		b, _ := abi.NewBinding(rollupAddr)
		switch q.Topics[0][0] {
		case b.ChallengeStateEventID():
			return f.challengeLogs, nil
		case b.CommitBatchEventID():
			return f.commitLogs, nil
		}
	}
	return nil, nil
}
func (f *fakeEth) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	return f.commitTx, false, nil
}
func (f *fakeEth) CallContract(ctx context.Context, msg gethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b, _ := abi.NewBinding(rollupAddr)
	batchInChallengeSel, _ := b.PackBatchInChallenge(0)
	isFinalizedSel, _ := b.PackIsBatchFinalized(0)
	switch {
	case len(msg.Data) >= 4 && string(msg.Data[:4]) == string(batchInChallengeSel[:4]):
		ret, err := b.ABI().Methods["batchInChallenge"].Outputs.Pack(f.batchInChallenge)
		return ret, err
	case len(msg.Data) >= 4 && string(msg.Data[:4]) == string(isFinalizedSel[:4]):
		ret, err := b.ABI().Methods["isBatchFinalized"].Outputs.Pack(f.isBatchFinalized)
		return ret, err
	}
	return nil, nil
}
func (f *fakeEth) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 1, nil
}
func (f *fakeEth) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}
func (f *fakeEth) EstimateGas(ctx context.Context, msg gethereum.CallMsg) (uint64, error) {
	return 50000, nil
}
func (f *fakeEth) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.sentTx = tx
	return nil
}
func (f *fakeEth) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.receipt == nil {
		return nil, gethereum.NotFound
	}
	return f.receipt, nil
}

var _ client.EthClient = (*fakeEth)(nil)

func buildCommitTx(t *testing.T, binding *abi.Binding, rawChunks [][]byte) *types.Transaction {
	t.Helper()
	data, err := binding.ABI().Pack("commitBatch", uint8(1), []byte{0xaa}, rawChunks, []byte{})
	require.NoError(t, err)
	return types.NewTx(&types.LegacyTx{Data: data, Gas: 21000})
}

func topicHash(binding *abi.Binding, eventID common.Hash, batchIndex uint64) []common.Hash {
	return []common.Hash{eventID, common.BigToHash(big.NewInt(int64(batchIndex)))}
}

func TestWatcher_RunIteration_NoChallenge(t *testing.T) {
	binding, err := abi.NewBinding(rollupAddr)
	require.NoError(t, err)

	eth := newFakeEth()
	eth.head = 1000

	key, _ := crypto.GenerateKey()
	signer := client.NewLocalECDSASigner(big.NewInt(1337), key)
	sender := client.NewSender(eth, signer, 0)

	prover := NewProverClient("http://unused", &http.Client{Timeout: time.Second})

	w := New(DefaultConfig(), eth, binding, sender, prover, zerolog.New(io.Discard))
	err = w.runIteration(context.Background())
	require.NoError(t, err)
}

func TestWatcher_RunIteration_FullHappyPath(t *testing.T) {
	binding, err := abi.NewBinding(rollupAddr)
	require.NoError(t, err)

	chunks := [][]uint64{{100}, {200, 201}}
	rawChunks := chunk.Encode(chunks)

	eth := newFakeEth()
	eth.head = 1000
	eth.batchInChallenge = true
	eth.isBatchFinalized = false
	eth.receipt = &types.Receipt{Status: types.ReceiptStatusSuccessful}

	challengeLog := types.Log{Topics: topicHash(binding, binding.ChallengeStateEventID(), 4), TxHash: common.HexToHash("0x01")}
	eth.challengeLogs = []types.Log{challengeLog}

	commitTx := buildCommitTx(t, binding, rawChunks)
	eth.commitTx = commitTx
	commitLog := types.Log{Topics: topicHash(binding, binding.CommitBatchEventID(), 4), TxHash: commitTx.Hash()}
	eth.commitLogs = []types.Log{commitLog}

	var gotRequest prtypes.ProveRequest
	proverServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/prove_batch":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
			w.Write([]byte(prtypes.VerdictStarted))
		case "/query_proof":
			result := prtypes.ProveResult{ProofData: prtypes.ProofBytes{0x01}, PiData: prtypes.ProofBytes{0x02}}
			json.NewEncoder(w).Encode(result)
		}
	}))
	defer proverServer.Close()

	key, _ := crypto.GenerateKey()
	signer := client.NewLocalECDSASigner(big.NewInt(1337), key)
	sender := client.NewSender(eth, signer, 0)
	prover := NewProverClient(proverServer.URL, &http.Client{Timeout: 5 * time.Second})

	cfg := DefaultConfig()
	cfg.L2RPC = "http://l2.example"
	cfg.ProofPollInterval = 10 * time.Millisecond

	w := New(cfg, eth, binding, sender, prover, zerolog.New(io.Discard))
	err = w.runIteration(context.Background())
	require.NoError(t, err)

	require.Equal(t, uint64(4), gotRequest.BatchIndex)
	require.Equal(t, chunks, gotRequest.Chunks)
	require.Equal(t, "http://l2.example", gotRequest.RPC)
	require.NotNil(t, eth.sentTx)
}

func TestWatcher_RunIteration_AbandonsWhenAlreadyFinalized(t *testing.T) {
	binding, err := abi.NewBinding(rollupAddr)
	require.NoError(t, err)

	chunks := [][]uint64{{1}}
	rawChunks := chunk.Encode(chunks)

	eth := newFakeEth()
	eth.head = 500
	eth.batchInChallenge = true
	eth.isBatchFinalized = true

	eth.challengeLogs = []types.Log{{Topics: topicHash(binding, binding.ChallengeStateEventID(), 7), TxHash: common.HexToHash("0x02")}}
	commitTx := buildCommitTx(t, binding, rawChunks)
	eth.commitTx = commitTx
	eth.commitLogs = []types.Log{{Topics: topicHash(binding, binding.CommitBatchEventID(), 7), TxHash: commitTx.Hash()}}

	proverServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/prove_batch":
			w.Write([]byte(prtypes.VerdictStarted))
		case "/query_proof":
			json.NewEncoder(w).Encode(prtypes.ProveResult{ProofData: prtypes.ProofBytes{0x01}, PiData: prtypes.ProofBytes{0x02}})
		}
	}))
	defer proverServer.Close()

	key, _ := crypto.GenerateKey()
	signer := client.NewLocalECDSASigner(big.NewInt(1337), key)
	sender := client.NewSender(eth, signer, 0)
	prover := NewProverClient(proverServer.URL, &http.Client{Timeout: 5 * time.Second})

	cfg := DefaultConfig()
	cfg.L2RPC = "http://l2.example"
	cfg.ProofPollInterval = 10 * time.Millisecond

	w := New(cfg, eth, binding, sender, prover, zerolog.New(io.Discard))
	err = w.runIteration(context.Background())
	require.NoError(t, err)
	require.Nil(t, eth.sentTx, "proveState must not be sent once the batch is already finalized")
}

func TestWatcher_RunIteration_StaleChallengeIsSkipped(t *testing.T) {
	binding, err := abi.NewBinding(rollupAddr)
	require.NoError(t, err)

	eth := newFakeEth()
	eth.head = 500
	eth.batchInChallenge = false
	eth.challengeLogs = []types.Log{{Topics: topicHash(binding, binding.ChallengeStateEventID(), 3), TxHash: common.HexToHash("0x03")}}

	key, _ := crypto.GenerateKey()
	signer := client.NewLocalECDSASigner(big.NewInt(1337), key)
	sender := client.NewSender(eth, signer, 0)
	prover := NewProverClient("http://unused", &http.Client{Timeout: time.Second})

	w := New(DefaultConfig(), eth, binding, sender, prover, zerolog.New(io.Discard))
	err = w.runIteration(context.Background())
	require.NoError(t, err)
	require.Nil(t, eth.commitTx)
	require.Equal(t, 1, eth.callCount["FilterLogs"], "a stale challenge must not trigger the CommitBatch log lookup")
}
