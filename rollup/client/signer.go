package client

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// LocalECDSASigner holds an in-process private key used to sign the
// watcher's proveState (and, for the companion challenger tool,
// challengeState) transactions. It is kept as an owned value (immutable
// signer + address) rather than a wrapped provider, so it can be passed by
// reference into every call site without aliasing mutable state.
type LocalECDSASigner struct {
	chainID *big.Int
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewLocalECDSASigner builds a signer for the given chain ID and key.
func NewLocalECDSASigner(chainID *big.Int, key *ecdsa.PrivateKey) *LocalECDSASigner {
	return &LocalECDSASigner{
		chainID: chainID,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// NewLocalECDSASignerFromHex parses a hex-encoded private key (with or
// without a 0x prefix), as read from L1_ROLLUP_PRIVATE_KEY.
func NewLocalECDSASignerFromHex(chainID *big.Int, hexKey string) (*LocalECDSASigner, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("client: invalid private key: %w", err)
	}
	return NewLocalECDSASigner(chainID, key), nil
}

// Address returns the signer's Ethereum address.
func (s *LocalECDSASigner) Address() common.Address {
	return s.address
}

// SignTx signs tx for the signer's chain using an EIP-155 signer.
func (s *LocalECDSASigner) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	signer := types.LatestSignerForChainID(s.chainID)
	signed, err := types.SignTx(tx, signer, s.key)
	if err != nil {
		return nil, fmt.Errorf("client: failed to sign transaction: %w", err)
	}
	return signed, nil
}
