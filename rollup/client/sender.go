package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptPollInterval and ReceiptPollTimeout bound the post-submission
// receipt wait: poll every 2s up to 60s, rather than blocking on a single
// fixed-length sleep, to cut latency and tolerate slower chains.
const (
	ReceiptPollInterval = 2 * time.Second
	ReceiptPollTimeout  = 60 * time.Second
)

// ErrReceiptPending is returned when a submitted transaction's receipt is
// not observed within ReceiptPollTimeout. The caller treats this as
// "pending" and lets the next watcher iteration re-discover the resulting
// on-chain state, rather than blocking indefinitely.
var ErrReceiptPending = fmt.Errorf("client: receipt not observed within %s", ReceiptPollTimeout)

// Sender builds, signs, and submits EIP-1559 transactions against a rollup
// contract, using a fixed gas-limit buffer over the node's estimate.
type Sender struct {
	eth               EthClient
	signer            *LocalECDSASigner
	gasLimitBufferPct uint64
}

// NewSender constructs a Sender. gasLimitBufferPct is added on top of the
// node's gas estimate (e.g. 15 means +15%).
func NewSender(eth EthClient, signer *LocalECDSASigner, gasLimitBufferPct uint64) *Sender {
	return &Sender{eth: eth, signer: signer, gasLimitBufferPct: gasLimitBufferPct}
}

// SendTx builds an EIP-1559 dynamic-fee transaction calling `to` with
// `calldata` and `value`, signs it, and submits it. It returns the submitted
// transaction so the caller can poll for its receipt.
func (s *Sender) SendTx(ctx context.Context, to common.Address, calldata []byte, value *big.Int) (*types.Transaction, error) {
	if value == nil {
		value = big.NewInt(0)
	}

	chainID, err := s.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("client: failed to read chain id: %w", err)
	}

	nonce, err := s.eth.PendingNonceAt(ctx, s.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("client: failed to read pending nonce: %w", err)
	}

	tip, err := s.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("client: failed to suggest gas tip cap: %w", err)
	}

	head, err := s.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("client: failed to fetch latest header: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	msg := ethereum.CallMsg{
		From:      s.signer.Address(),
		To:        &to,
		Value:     value,
		Data:      calldata,
		GasTipCap: tip,
		GasFeeCap: feeCap,
	}
	gas, err := s.eth.EstimateGas(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("client: gas estimation failed, likely a revert: %w", err)
	}
	gas += gas * s.gasLimitBufferPct / 100

	if chainID == nil {
		return nil, fmt.Errorf("client: nil chain id")
	}

	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      calldata,
	})

	signed, err := s.signer.SignTx(unsigned)
	if err != nil {
		return nil, err
	}

	if err := s.eth.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("client: failed to broadcast transaction: %w", err)
	}
	return signed, nil
}

// WaitReceipt polls for tx's receipt every ReceiptPollInterval, up to
// ReceiptPollTimeout. It returns ErrReceiptPending on timeout, never an
// indefinite block.
func (s *Sender) WaitReceipt(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	deadline := time.Now().Add(ReceiptPollTimeout)
	ticker := time.NewTicker(ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.eth.TransactionReceipt(ctx, tx.Hash())
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrReceiptPending
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
