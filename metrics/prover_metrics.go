package metrics

import "github.com/prometheus/client_golang/prometheus"

// ProverMetrics instruments the prover HTTP service and its worker.
type ProverMetrics struct {
	registry *ComponentRegistry

	QueueDepth          prometheus.Gauge
	RequestsTotal       *prometheus.CounterVec
	ProvingDuration     prometheus.Histogram
	ChunkProofsTotal    prometheus.Counter
	BatchProofsTotal    prometheus.Counter
	ProveFailuresTotal  *prometheus.CounterVec
	TraceFetchFailures  prometheus.Counter
	ArtifactWritesTotal prometheus.Counter
}

func newProverMetrics() *ProverMetrics {
	reg := NewComponentRegistry("prover_service", "")

	return &ProverMetrics{
		registry: reg,

		QueueDepth: reg.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Current number of requests resident in the prove queue (0 or 1).",
		}),
		RequestsTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_requests_total",
			Help: "Total /prove_batch admission attempts, by verdict.",
		}, []string{"verdict"}),
		ProvingDuration: reg.NewHistogram(prometheus.HistogramOpts{
			Name:    "proving_duration_seconds",
			Help:    "Wall-clock time to produce an aggregated batch proof.",
			Buckets: DurationBuckets,
		}),
		ChunkProofsTotal: reg.NewCounter(prometheus.CounterOpts{
			Name: "chunk_proofs_total",
			Help: "Total chunk proofs generated.",
		}),
		BatchProofsTotal: reg.NewCounter(prometheus.CounterOpts{
			Name: "batch_proofs_total",
			Help: "Total aggregated batch proofs generated.",
		}),
		ProveFailuresTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "prove_failures_total",
			Help: "Total proving failures, by stage.",
		}, []string{"stage"}),
		TraceFetchFailures: reg.NewCounter(prometheus.CounterOpts{
			Name: "trace_fetch_failures_total",
			Help: "Total failed block trace fetch attempts.",
		}),
		ArtifactWritesTotal: reg.NewCounter(prometheus.CounterOpts{
			Name: "artifact_writes_total",
			Help: "Total aggregated proof artifact sets (proof and public-input files) written.",
		}),
	}
}

// Registry exposes the Prometheus registry backing these metrics.
func (m *ProverMetrics) Registry() *prometheus.Registry {
	return m.registry.Registry()
}
