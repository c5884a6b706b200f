// Package abi provides the rollup contract binding: the embedded ABI, event
// topic identifiers, calldata decoding for commitBatch, and calldata encoding
// for the calls the chain watcher issues. An embedded JSON ABI backs a thin
// typed wrapper so call sites never hand-build selectors or topic hashes.
package abi

import (
	_ "embed"
	"fmt"
	"math/big"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

//go:embed abi/rollup.json
var rollupABIJSON string

// Binding wraps the rollup contract's address and parsed ABI.
type Binding struct {
	address common.Address
	abi     gethabi.ABI
}

// commitBatchEventName and challengeStateEventName name the two events the
// watcher filters for. Their topic hashes are not hardcoded: the
// CommitBatchEventID and ChallengeStateEventID methods read them from the ABI
// parsed at NewBinding time, so a change to the ABI JSON can never silently
// desynchronize the hashes used for filtering.
var (
	commitBatchEventName    = "CommitBatch"
	challengeStateEventName = "ChallengeState"
)

// NewBinding parses the embedded rollup ABI and binds it to contractAddr.
func NewBinding(contractAddr string) (*Binding, error) {
	if strings.TrimSpace(contractAddr) == "" {
		return nil, fmt.Errorf("abi: rollup contract address cannot be empty")
	}

	parsed, err := gethabi.JSON(strings.NewReader(rollupABIJSON))
	if err != nil {
		return nil, fmt.Errorf("abi: failed to parse rollup ABI: %w", err)
	}

	return &Binding{
		address: common.HexToAddress(contractAddr),
		abi:     parsed,
	}, nil
}

// Address returns the bound rollup contract address.
func (b *Binding) Address() common.Address {
	return b.address
}

// ABI returns the parsed contract ABI.
func (b *Binding) ABI() gethabi.ABI {
	return b.abi
}

// CommitBatchEventID returns the CommitBatch event's topic0 hash.
func (b *Binding) CommitBatchEventID() common.Hash {
	return b.abi.Events[commitBatchEventName].ID
}

// ChallengeStateEventID returns the ChallengeState event's topic0 hash.
func (b *Binding) ChallengeStateEventID() common.Hash {
	return b.abi.Events[challengeStateEventName].ID
}

// DecodeBatchIndexTopic decodes an indexed batch_index from an event's
// topics[1]. topics[0] is always the event signature hash and must never be
// read as the batch index.
func DecodeBatchIndexTopic(topics []common.Hash) (uint64, error) {
	if len(topics) < 2 {
		return 0, fmt.Errorf("abi: log has %d topics, need at least 2 to read batch_index from topics[1]", len(topics))
	}
	return new(big.Int).SetBytes(topics[1].Bytes()).Uint64(), nil
}

// DecodeCommitBatchCalldata unpacks a commitBatch transaction's input data
// and returns the raw chunks argument for the chunk decoder.
func (b *Binding) DecodeCommitBatchCalldata(data []byte) ([][]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("abi: calldata too short to contain a method selector")
	}

	method, err := b.abi.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("abi: unrecognized method selector: %w", err)
	}
	if method.Name != "commitBatch" {
		return nil, fmt.Errorf("abi: calldata is for method %q, not commitBatch", method.Name)
	}

	args := make(map[string]any)
	if err := method.Inputs.UnpackIntoMap(args, data[4:]); err != nil {
		return nil, fmt.Errorf("abi: failed to unpack commitBatch arguments: %w", err)
	}

	raw, ok := args["chunks"]
	if !ok {
		return nil, fmt.Errorf("abi: commitBatch calldata missing chunks argument")
	}
	chunks, ok := raw.([][]byte)
	if !ok {
		return nil, fmt.Errorf("abi: commitBatch chunks argument has unexpected type %T", raw)
	}
	return chunks, nil
}

// PackProveState encodes a proveState(batch_index, aggregatedProof) call.
func (b *Binding) PackProveState(batchIndex uint64, aggregatedProof []byte) ([]byte, error) {
	data, err := b.abi.Pack("proveState", batchIndex, aggregatedProof)
	if err != nil {
		return nil, fmt.Errorf("abi: failed to pack proveState calldata: %w", err)
	}
	return data, nil
}

// PackChallengeState encodes a challengeState(batch_index) call. The caller
// is responsible for attaching the required deposit value to the transaction.
func (b *Binding) PackChallengeState(batchIndex uint64) ([]byte, error) {
	data, err := b.abi.Pack("challengeState", batchIndex)
	if err != nil {
		return nil, fmt.Errorf("abi: failed to pack challengeState calldata: %w", err)
	}
	return data, nil
}

// PackBatchInChallenge encodes a batchInChallenge(batch_index) view call.
func (b *Binding) PackBatchInChallenge(batchIndex uint64) ([]byte, error) {
	return b.abi.Pack("batchInChallenge", batchIndex)
}

// UnpackBatchInChallenge decodes the result of a batchInChallenge call.
func (b *Binding) UnpackBatchInChallenge(ret []byte) (bool, error) {
	out, err := b.abi.Unpack("batchInChallenge", ret)
	if err != nil {
		return false, fmt.Errorf("abi: failed to unpack batchInChallenge result: %w", err)
	}
	return unpackBool(out)
}

// PackIsBatchFinalized encodes an isBatchFinalized(batch_index) view call.
func (b *Binding) PackIsBatchFinalized(batchIndex uint64) ([]byte, error) {
	return b.abi.Pack("isBatchFinalized", batchIndex)
}

// UnpackIsBatchFinalized decodes the result of an isBatchFinalized call.
func (b *Binding) UnpackIsBatchFinalized(ret []byte) (bool, error) {
	out, err := b.abi.Unpack("isBatchFinalized", ret)
	if err != nil {
		return false, fmt.Errorf("abi: failed to unpack isBatchFinalized result: %w", err)
	}
	return unpackBool(out)
}

// PackIsChallenger encodes an isChallenger(account) view call.
func (b *Binding) PackIsChallenger(account common.Address) ([]byte, error) {
	return b.abi.Pack("isChallenger", account)
}

// UnpackIsChallenger decodes the result of an isChallenger call.
func (b *Binding) UnpackIsChallenger(ret []byte) (bool, error) {
	out, err := b.abi.Unpack("isChallenger", ret)
	if err != nil {
		return false, fmt.Errorf("abi: failed to unpack isChallenger result: %w", err)
	}
	return unpackBool(out)
}

// PackFinalizationPeriodSeconds encodes a finalizationPeriodSeconds() view call.
func (b *Binding) PackFinalizationPeriodSeconds() ([]byte, error) {
	return b.abi.Pack("finalizationPeriodSeconds")
}

// UnpackFinalizationPeriodSeconds decodes the result of that call.
func (b *Binding) UnpackFinalizationPeriodSeconds(ret []byte) (*big.Int, error) {
	out, err := b.abi.Unpack("finalizationPeriodSeconds", ret)
	if err != nil {
		return nil, fmt.Errorf("abi: failed to unpack finalizationPeriodSeconds result: %w", err)
	}
	return unpackBigInt(out)
}

// PackProofWindow encodes a proofWindow() view call.
func (b *Binding) PackProofWindow() ([]byte, error) {
	return b.abi.Pack("proofWindow")
}

// UnpackProofWindow decodes the result of that call.
func (b *Binding) UnpackProofWindow(ret []byte) (*big.Int, error) {
	out, err := b.abi.Unpack("proofWindow", ret)
	if err != nil {
		return nil, fmt.Errorf("abi: failed to unpack proofWindow result: %w", err)
	}
	return unpackBigInt(out)
}

func unpackBool(out []any) (bool, error) {
	if len(out) != 1 {
		return false, fmt.Errorf("abi: expected 1 return value, got %d", len(out))
	}
	v, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("abi: expected bool return value, got %T", out[0])
	}
	return v, nil
}

func unpackBigInt(out []any) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("abi: expected 1 return value, got %d", len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("abi: expected *big.Int return value, got %T", out[0])
	}
	return v, nil
}
