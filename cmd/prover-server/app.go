package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rollupwatch/prove-responder/config"
	"github.com/rollupwatch/prove-responder/prover/circuit"
	"github.com/rollupwatch/prove-responder/prover/queue"
	proverserver "github.com/rollupwatch/prove-responder/prover/server"
	"github.com/rollupwatch/prove-responder/prover/store"
	"github.com/rollupwatch/prove-responder/prover/trace"
	"github.com/rollupwatch/prove-responder/prover/worker"
	"github.com/rollupwatch/prove-responder/server/api"
)

// App wires the prover service's HTTP server and its single worker
// goroutine around a shared queue and artifact store.
type App struct {
	cfg    *config.ProverConfig
	log    zerolog.Logger
	server *api.Server
	worker *worker.Worker
	cancel context.CancelFunc
}

// NewApp constructs the prover service.
func NewApp(cfg *config.ProverConfig, log zerolog.Logger) (*App, error) {
	st, err := store.New(cfg.ProofDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open proof store: %w", err)
	}
	q := queue.New()

	prover := circuit.NewReferenceProver()

	var opts []worker.Option
	if cfg.GenerateEVMVerifier {
		opts = append(opts, worker.WithEVMVerifier("./evm_verifier"))
	}
	w := worker.New(q, st, prover, prover, prover, trace.Dial, log, opts...)

	apiCfg := api.DefaultConfig()
	apiCfg.ListenAddr = cfg.ListenAddr
	srv := proverserver.New(apiCfg, q, st, log)

	return &App{cfg: cfg, log: log.With().Str("component", "app").Logger(), server: srv, worker: w}, nil
}

// Run starts the HTTP server and the worker loop and blocks until a
// shutdown signal or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	go a.worker.Run(runCtx)
	go func() {
		if err := a.server.Start(runCtx); err != nil {
			a.log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	a.log.Info().Str("listen_addr", a.cfg.ListenAddr).Str("proof_dir", a.cfg.ProofDir).Msg("prover service started")

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
