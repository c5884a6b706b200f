// Command batch-inspect is a read-only diagnostic: it dumps challenger
// status, finalizationPeriodSeconds, proofWindow, and the keccak digest of
// the commit calldata for the most recently committed batch. A thin CLI
// wrapper with no new protocol logic, just rollup/abi and rollup/client
// read paths.
package main

import (
	"context"
	"math/big"
	"os"

	gethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	rlog "github.com/rollupwatch/prove-responder/log"
	"github.com/rollupwatch/prove-responder/rollup/abi"
	"github.com/rollupwatch/prove-responder/rollup/client"
)

func main() {
	log := rlog.New("debug", true)

	l1RPC := os.Getenv("L1_RPC")
	rollupAddr := os.Getenv("L1_ROLLUP")
	privateKey := os.Getenv("CHALLENGER_PRIVATEKEY")

	ctx := context.Background()
	eth, err := client.Dial(ctx, l1RPC)
	if err != nil {
		log.Error().Err(err).Msg("failed to dial L1 RPC")
		return
	}

	rollup, err := abi.NewBinding(rollupAddr)
	if err != nil {
		log.Error().Err(err).Msg("failed to bind rollup contract")
		return
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch chain id")
		return
	}
	signer, err := client.NewLocalECDSASignerFromHex(chainID, privateKey)
	if err != nil {
		log.Error().Err(err).Msg("invalid challenger private key")
		return
	}
	challengerAddr := signer.Address()

	isChallengerData, err := rollup.PackIsChallenger(challengerAddr)
	if err != nil {
		log.Error().Err(err).Msg("failed to pack isChallenger call")
		return
	}
	addr := rollup.Address()
	ret, err := eth.CallContract(ctx, gethereum.CallMsg{To: &addr, Data: isChallengerData}, nil)
	if err != nil {
		log.Info().Err(err).Msg("query isChallenger error")
	} else if isChallenger, err := rollup.UnpackIsChallenger(ret); err == nil {
		log.Info().Str("address", challengerAddr.Hex()).Bool("is_challenger", isChallenger).Msg("challenger status")
	}

	finalizationData, _ := rollup.PackFinalizationPeriodSeconds()
	if ret, err := eth.CallContract(ctx, gethereum.CallMsg{To: &addr, Data: finalizationData}, nil); err == nil {
		if fp, err := rollup.UnpackFinalizationPeriodSeconds(ret); err == nil {
			log.Info().Str("finalization_period_seconds", fp.String()).Msg("finalization period")
		}
	}

	proofWindowData, _ := rollup.PackProofWindow()
	if ret, err := eth.CallContract(ctx, gethereum.CallMsg{To: &addr, Data: proofWindowData}, nil); err == nil {
		if pw, err := rollup.UnpackProofWindow(ret); err == nil {
			log.Info().Str("proof_window", pw.String()).Msg("proof window")
		}
	}

	latest, err := eth.BlockNumber(ctx)
	if err != nil {
		log.Error().Err(err).Msg("get_block_number error")
		return
	}
	log.Info().Uint64("latest_block", latest).Msg("latest blocknum")

	start := uint64(1)
	if latest > 1000 {
		start = latest - 1000
	}

	logs, err := eth.FilterLogs(ctx, gethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(start),
		ToBlock:   new(big.Int).SetUint64(latest),
		Addresses: []common.Address{addr},
		Topics:    [][]common.Hash{{rollup.CommitBatchEventID()}},
	})
	if err != nil || len(logs) == 0 {
		log.Error().Msg("there have been no commitBatch logs for the last 1000 blocks")
		return
	}

	batchIndex, err := abi.DecodeBatchIndexTopic(logs[len(logs)-1].Topics)
	if err != nil {
		log.Error().Err(err).Msg("find commitBatch log error")
		return
	}
	log.Info().Uint64("batch_index", batchIndex).Msg("latest batch index")

	for _, l := range logs {
		idx, err := abi.DecodeBatchIndexTopic(l.Topics)
		if err != nil || idx != batchIndex {
			continue
		}
		tx, _, err := eth.TransactionByHash(ctx, l.TxHash)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch commit transaction")
			continue
		}
		log.Info().Str("tx_hash", l.TxHash.Hex()).Str("calldata", crypto.Keccak256Hash(tx.Data()).Hex()).Msg("batch inspect")
	}
}
