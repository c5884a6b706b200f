package client

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

type mockEthClient struct {
	sent           *types.Transaction
	receipt        *types.Receipt
	receiptAttempt int
	receiptAfter   int
}

func (m *mockEthClient) ChainID(ctx context.Context) (*big.Int, error) { return big.NewInt(1337), nil }
func (m *mockEthClient) BlockNumber(ctx context.Context) (uint64, error) { return 100, nil }
func (m *mockEthClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: big.NewInt(10_000_000_000)}, nil
}
func (m *mockEthClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}
func (m *mockEthClient) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	return nil, false, ethereum.NotFound
}
func (m *mockEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return nil, nil
}
func (m *mockEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 3, nil
}
func (m *mockEthClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}
func (m *mockEthClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}
func (m *mockEthClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	m.sent = tx
	return nil
}
func (m *mockEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	m.receiptAttempt++
	if m.receiptAttempt <= m.receiptAfter {
		return nil, ethereum.NotFound
	}
	return m.receipt, nil
}

var _ EthClient = (*mockEthClient)(nil)

func TestSender_SendTx_SignsAndBroadcasts(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := NewLocalECDSASigner(big.NewInt(1337), key)

	eth := &mockEthClient{}
	sender := NewSender(eth, signer, 15)

	to := common.HexToAddress("0x000000000000000000000000000000000000dead")
	tx, err := sender.SendTx(context.Background(), to, []byte{0x01, 0x02}, nil)
	require.NoError(t, err)
	require.NotNil(t, eth.sent)
	require.Equal(t, tx.Hash(), eth.sent.Hash())
}

func TestSender_WaitReceipt_ContextDeadlineBeforeRetriesComplete(t *testing.T) {
	key, _ := crypto.GenerateKey()
	signer := NewLocalECDSASigner(big.NewInt(1337), key)
	eth := &mockEthClient{receiptAfter: 2, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}
	sender := NewSender(eth, signer, 0)

	tx := types.NewTx(&types.DynamicFeeTx{ChainID: big.NewInt(1337)})

	// Use a short-lived context; the poll interval is fixed at 2s so this test
	// exercises the loop structure rather than waiting for real timeouts.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := sender.WaitReceipt(ctx, tx)
	require.Error(t, err) // context deadline hits before the 2s ticker fires twice
}

func TestSender_WaitReceipt_ImmediateSuccess(t *testing.T) {
	key, _ := crypto.GenerateKey()
	signer := NewLocalECDSASigner(big.NewInt(1337), key)
	eth := &mockEthClient{receiptAfter: 0, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}
	sender := NewSender(eth, signer, 0)

	tx := types.NewTx(&types.DynamicFeeTx{ChainID: big.NewInt(1337)})

	receipt, err := sender.WaitReceipt(context.Background(), tx)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
}
