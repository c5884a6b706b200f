// Package server wires the prover service's HTTP surface onto the
// server/api gorilla/mux scaffold: admission, proof query, status, and
// metrics, each bound to the shared queue and artifact store.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rollupwatch/prove-responder/metrics"
	"github.com/rollupwatch/prove-responder/prover/queue"
	"github.com/rollupwatch/prove-responder/prover/store"
	"github.com/rollupwatch/prove-responder/server/api"
	"github.com/rollupwatch/prove-responder/server/api/middleware"
)

// New builds the prover service's HTTP server: /prove_batch, /query_proof,
// /query_status, and /metrics.
func New(cfg api.Config, q *queue.Queue, st *store.Store, log zerolog.Logger) *api.Server {
	s := api.NewServer(cfg, log)
	s.Use(middleware.RequestID())
	s.Use(middleware.Logger(log))
	s.Use(middleware.Recover(log))

	h := &handlers{queue: q, store: st, log: log.With().Str("component", "prover_http").Logger(), metrics: metrics.Prover()}

	s.Router.HandleFunc("/prove_batch", h.proveBatch).Methods(http.MethodPost)
	s.Router.HandleFunc("/query_proof", h.queryProof).Methods(http.MethodPost)
	s.Router.HandleFunc("/query_status", h.queryStatus).Methods(http.MethodPost)
	s.Router.Handle("/metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return s
}
