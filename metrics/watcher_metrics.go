package metrics

import "github.com/prometheus/client_golang/prometheus"

// WatcherMetrics exposes the watcher's /metrics endpoint gauges:
// detected_batch_index, chunks_len, and prover_status.
type WatcherMetrics struct {
	registry *ComponentRegistry

	DetectedBatchIndex prometheus.Gauge
	ChunksLen          prometheus.Gauge
	ProverStatus       prometheus.Gauge
	IterationsTotal    prometheus.Counter
	ErrorsTotal        *prometheus.CounterVec
}

func newWatcherMetrics() *WatcherMetrics {
	reg := NewComponentRegistry("challenge_handler", "")

	return &WatcherMetrics{
		registry: reg,

		DetectedBatchIndex: reg.NewGauge(prometheus.GaugeOpts{
			Name: "detected_batch_index",
			Help: "Batch index of the most recently detected challenge.",
		}),
		ChunksLen: reg.NewGauge(prometheus.GaugeOpts{
			Name: "chunks_len",
			Help: "Number of chunks in the most recently decoded batch.",
		}),
		ProverStatus: reg.NewGauge(prometheus.GaugeOpts{
			Name: "prover_status",
			Help: "0=idle 1=proving 2=proved 3=failed, for the last batch submitted to the prover.",
		}),
		IterationsTotal: reg.NewCounter(prometheus.CounterOpts{
			Name: "iterations_total",
			Help: "Total watch-loop iterations executed.",
		}),
		ErrorsTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total recoverable errors encountered, by stage.",
		}, []string{"stage"}),
	}
}

// Registry exposes the Prometheus registry backing these metrics.
func (m *WatcherMetrics) Registry() *prometheus.Registry {
	return m.registry.Registry()
}

// Prover status gauge values.
const (
	ProverStatusIdle float64 = iota
	ProverStatusProving
	ProverStatusProved
	ProverStatusFailed
)
