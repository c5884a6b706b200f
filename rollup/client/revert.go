package client

import (
	"errors"
	"fmt"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RevertReason extracts a human-readable reason from a revert-class error
// returned by eth_call or eth_estimateGas. Node RPCs attach the raw revert
// payload to the JSON-RPC error via the rpc.DataError interface; the plain
// error string alone (e.g. "execution reverted") loses it. It first tries
// the standard Error(string) panic encoding, then falls back to matching
// contractABI's custom Solidity errors by 4-byte selector. Returns ok=false
// when err carries no decodable revert data, so callers can fall back to
// logging the raw error.
func RevertReason(err error, contractABI gethabi.ABI) (string, bool) {
	if err == nil {
		return "", false
	}

	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return "", false
	}

	raw, decoded := decodeRevertData(dataErr.ErrorData())
	if !decoded || len(raw) == 0 {
		return "", false
	}

	if msg, unpackErr := gethabi.UnpackRevert(raw); unpackErr == nil {
		return msg, true
	}

	if len(raw) < 4 {
		return "", false
	}
	var selector [4]byte
	copy(selector[:], raw[:4])
	abiErr, matchErr := contractABI.ErrorByID(selector)
	if matchErr != nil {
		return "", false
	}
	args, unpackErr := abiErr.Inputs.Unpack(raw[4:])
	if unpackErr != nil || len(args) == 0 {
		return abiErr.Name, true
	}
	return fmt.Sprintf("%s%v", abiErr.Name, args), true
}

// decodeRevertData normalizes the ErrorData() payload, which node
// implementations populate either as a "0x"-prefixed hex string or as raw
// bytes depending on transport.
func decodeRevertData(data any) ([]byte, bool) {
	switch v := data.(type) {
	case string:
		raw, err := hexutil.Decode(v)
		if err != nil {
			return nil, false
		}
		return raw, true
	case []byte:
		return v, true
	default:
		return nil, false
	}
}
