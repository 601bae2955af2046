// Package metrics exposes Prometheus metrics for the ingestion pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records ingestion pipeline metrics.
type Collector struct {
	runsTotal     *prometheus.CounterVec
	candidates    *prometheus.CounterVec
	skippedTotal  *prometheus.CounterVec
	runDuration   prometheus.Histogram
	recordsStored *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikukuu_ingest_runs_total",
			Help: "Ingestion runs by outcome.",
		}, []string{"outcome"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikukuu_candidates_total",
			Help: "Holiday candidates produced, by kind.",
		}, []string{"kind"}),
		skippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikukuu_headlines_skipped_total",
			Help: "Scraped headlines rejected during extraction, by reason.",
		}, []string{"reason"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sikukuu_ingest_run_duration_seconds",
			Help:    "Wall time of an ingestion run.",
			Buckets: prometheus.DefBuckets,
		}),
		recordsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikukuu_records_reconciled_total",
			Help: "Records written during reconciliation, by operation.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.runsTotal,
		c.candidates,
		c.skippedTotal,
		c.runDuration,
		c.recordsStored,
	)
	return c
}

// NewDefault creates a Collector on the default Prometheus registry.
func NewDefault() *Collector {
	return NewCollector(prometheus.DefaultRegisterer)
}

// RecordRun records a finished ingestion run.
func (c *Collector) RecordRun(outcome string, d time.Duration) {
	c.runsTotal.WithLabelValues(outcome).Inc()
	c.runDuration.Observe(d.Seconds())
}

// RecordCandidate counts one produced candidate.
func (c *Collector) RecordCandidate(kind string) {
	c.candidates.WithLabelValues(kind).Inc()
}

// RecordSkip counts one rejected headline.
func (c *Collector) RecordSkip(reason string) {
	c.skippedTotal.WithLabelValues(reason).Inc()
}

// RecordReconcile counts one storage write ("insert" or "update").
func (c *Collector) RecordReconcile(op string) {
	c.recordsStored.WithLabelValues(op).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
