package client

import (
	"errors"
	"testing"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// fakeDataError implements rpc.DataError, the interface go-ethereum's JSON-RPC
// transport uses to attach revert payloads to eth_call/eth_estimateGas errors.
type fakeDataError struct {
	msg  string
	data any
}

func (e *fakeDataError) Error() string  { return e.msg }
func (e *fakeDataError) ErrorData() any { return e.data }

func packStandardRevert(t *testing.T, reason string) []byte {
	t.Helper()
	stringType, err := gethabi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := gethabi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return append(selector, packed...)
}

func TestRevertReason_StandardError(t *testing.T) {
	raw := packStandardRevert(t, "insufficient balance")
	err := &fakeDataError{msg: "execution reverted", data: hexutil.Encode(raw)}

	reason, ok := RevertReason(err, gethabi.ABI{})
	require.True(t, ok)
	require.Equal(t, "insufficient balance", reason)
}

func TestRevertReason_NoDataError(t *testing.T) {
	reason, ok := RevertReason(errors.New("connection refused"), gethabi.ABI{})
	require.False(t, ok)
	require.Empty(t, reason)
}

func TestRevertReason_UndecodablePayload(t *testing.T) {
	err := &fakeDataError{msg: "execution reverted", data: "0xdeadbeef"}

	reason, ok := RevertReason(err, gethabi.ABI{})
	require.False(t, ok)
	require.Empty(t, reason)
}

func TestRevertReason_NilError(t *testing.T) {
	reason, ok := RevertReason(nil, gethabi.ABI{})
	require.False(t, ok)
	require.Empty(t, reason)
}
