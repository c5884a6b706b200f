package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rollupwatch/prove-responder/config"
	"github.com/rollupwatch/prove-responder/metrics"
	"github.com/rollupwatch/prove-responder/rollup/abi"
	"github.com/rollupwatch/prove-responder/rollup/client"
	"github.com/rollupwatch/prove-responder/rollup/watcher"
)

// App wires the Chain Watcher's dependencies: an L1 client, the rollup ABI
// binding, a local signer, a prover HTTP client, and a metrics endpoint.
type App struct {
	cfg     *config.WatcherConfig
	log     zerolog.Logger
	watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// NewApp constructs the watcher application.
func NewApp(ctx context.Context, cfg *config.WatcherConfig, log zerolog.Logger) (*App, error) {
	eth, err := client.Dial(ctx, cfg.L1RPC)
	if err != nil {
		return nil, fmt.Errorf("failed to dial L1 RPC: %w", err)
	}

	rollup, err := abi.NewBinding(cfg.RollupAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to bind rollup contract: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch L1 chain id: %w", err)
	}
	signer, err := client.NewLocalECDSASignerFromHex(chainID, cfg.PrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to load signer key: %w", err)
	}
	sender := client.NewSender(eth, signer, cfg.GasLimitBufferPct)

	prover := watcher.NewProverClient(cfg.ProverRPC, nil)

	wcfg := watcher.DefaultConfig()
	wcfg.L2RPC = cfg.L2RPC
	if cfg.ChallengeWindowBlocks != 0 {
		wcfg.ChallengeWindowBlocks = cfg.ChallengeWindowBlocks
	}
	if cfg.IterationRetryDelay != 0 {
		wcfg.IterationRetryDelay = cfg.IterationRetryDelay
	}
	if cfg.ProofPollInterval != 0 {
		wcfg.ProofPollInterval = cfg.ProofPollInterval
	}

	w := watcher.New(wcfg, eth, rollup, sender, prover, log)

	return &App{cfg: cfg, log: log.With().Str("component", "app").Logger(), watcher: w}, nil
}

// Run starts the watch loop and the metrics endpoint, and blocks until a
// shutdown signal or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	go a.watcher.Run(runCtx)
	go a.serveMetrics(runCtx)

	a.log.Info().Str("metrics_addr", a.cfg.MetricsListenAddr).Msg("chain watcher started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-runCtx.Done():
		a.log.Info().Msg("context canceled, initiating shutdown")
	case sig := <-sigCh:
		a.log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	}

	a.cancel()
	time.Sleep(100 * time.Millisecond)
	a.log.Info().Msg("graceful shutdown complete")
	return nil
}

func (a *App) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Watcher().Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: a.cfg.MetricsListenAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.log.Error().Err(err).Msg("metrics server error")
	}
}
