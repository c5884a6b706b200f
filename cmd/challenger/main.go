// Command challenger finds the latest committed batch and, if CHALLENGE=true,
// submits challengeState against it with the 1 ETH deposit. A thin one-off
// CLI that reuses rollup/abi and rollup/client rather than introducing new
// protocol logic.
package main

import (
	"context"
	"math/big"
	"os"
	"strconv"
	"time"

	gethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	rlog "github.com/rollupwatch/prove-responder/log"
	"github.com/rollupwatch/prove-responder/rollup/abi"
	"github.com/rollupwatch/prove-responder/rollup/client"
)

func main() {
	log := rlog.New("info", true)

	l1RPC := os.Getenv("L1_RPC")
	rollupAddr := os.Getenv("L1_ROLLUP")
	privateKey := os.Getenv("CHALLENGER_PRIVATEKEY")
	doChallenge, _ := strconv.ParseBool(os.Getenv("CHALLENGE"))

	log.Info().Bool("challenge", doChallenge).Msg("starting")

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

	latest, err := eth.BlockNumber(ctx)
	if err != nil {
		log.Error().Err(err).Msg("get_block_number error")
		return
	}
	log.Info().Uint64("latest_block", latest).Msg("latest blocknum")

	start := uint64(1)
	if latest > 200 {
		start = latest - 200
	}

	logs, err := eth.FilterLogs(ctx, gethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(start),
		ToBlock:   new(big.Int).SetUint64(latest),
		Addresses: []common.Address{rollup.Address()},
		Topics:    [][]common.Hash{{rollup.CommitBatchEventID()}},
	})
	if err != nil {
		log.Error().Err(err).Msg("commitBatch get_logs error")
		return
	}
	if len(logs) == 0 {
		log.Error().Msg("no commitBatch log")
		return
	}

	batchIndex, err := abi.DecodeBatchIndexTopic(logs[len(logs)-1].Topics)
	if err != nil {
		log.Error().Err(err).Msg("find commitBatch log error")
		return
	}
	log.Info().Uint64("batch_index", batchIndex).Msg("latest batch index")

	if !doChallenge {
		log.Info().Msg("no need for challenge")
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
	sender := client.NewSender(eth, signer, 15)

	calldata, err := rollup.PackChallengeState(batchIndex)
	if err != nil {
		log.Error().Err(err).Msg("failed to pack challengeState calldata")
		return
	}

	tx, err := sender.SendTx(ctx, rollup.Address(), calldata, big.NewInt(1_000_000_000_000_000_000))
	if err != nil {
		log.Error().Err(err).Msg("send tx of challengeState error")
		return
	}
	log.Info().Str("tx_hash", tx.Hash().Hex()).Msg("tx of challengeState has been sent")

	receiptCtx, cancel := context.WithTimeout(ctx, client.ReceiptPollTimeout+5*time.Second)
	defer cancel()
	receipt, err := sender.WaitReceipt(receiptCtx, tx)
	if err != nil {
		log.Info().Msg("challengeState receipt pending")
		return
	}
	if receipt.Status == 1 {
		log.Info().Str("tx_hash", tx.Hash().Hex()).Msg("challengeState receipt success")
	} else {
		log.Error().Str("tx_hash", tx.Hash().Hex()).Msg("challengeState receipt fail")
	}
}
