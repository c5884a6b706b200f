// Package metrics holds the Prometheus registries and gauges exposed by the
// chain watcher and prover service: detected_batch_index, chunks_len, and
// prover_status for the watcher, extended with counters and histograms for
// the prove worker's own pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ComponentRegistry namespaces metric names under a component prefix and
// registers them on construction, removing the boilerplate of calling
// prometheus.Register at every call site.
type ComponentRegistry struct {
	reg    *prometheus.Registry
	prefix string
}

// NewComponentRegistry returns a registry that prefixes every metric name
// with "<component>_" (and, if set, "<subcomponent>_").
func NewComponentRegistry(component, subcomponent string) *ComponentRegistry {
	prefix := component + "_"
	if subcomponent != "" {
		prefix += subcomponent + "_"
	}
	return &ComponentRegistry{reg: prometheus.NewRegistry(), prefix: prefix}
}

// Registry exposes the underlying prometheus.Registry for /metrics handlers.
func (c *ComponentRegistry) Registry() *prometheus.Registry {
	return c.reg
}

func (c *ComponentRegistry) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	opts.Name = c.prefix + opts.Name
	g := prometheus.NewGauge(opts)
	c.reg.MustRegister(g)
	return g
}

func (c *ComponentRegistry) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	opts.Name = c.prefix + opts.Name
	ctr := prometheus.NewCounter(opts)
	c.reg.MustRegister(ctr)
	return ctr
}

func (c *ComponentRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	opts.Name = c.prefix + opts.Name
	v := prometheus.NewCounterVec(opts, labels)
	c.reg.MustRegister(v)
	return v
}

func (c *ComponentRegistry) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	opts.Name = c.prefix + opts.Name
	h := prometheus.NewHistogram(opts)
	c.reg.MustRegister(h)
	return h
}

// DurationBuckets is a general-purpose bucket set for operations spanning
// seconds to a few hours, matching the proving pipeline's expected runtime.
var DurationBuckets = []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600, 7200}

var (
	watcherOnce sync.Once
	watcherM    *WatcherMetrics

	proverOnce sync.Once
	proverM    *ProverMetrics
)

// Watcher returns the process-wide watcher metrics, constructing them once.
func Watcher() *WatcherMetrics {
	watcherOnce.Do(func() {
		watcherM = newWatcherMetrics()
	})
	return watcherM
}

// Prover returns the process-wide prover-service metrics, constructing them once.
func Prover() *ProverMetrics {
	proverOnce.Do(func() {
		proverM = newProverMetrics()
	})
	return proverM
}
