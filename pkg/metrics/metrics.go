// Package metrics exposes prometheus counters for downloads and installs.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quiltinst"

// Metrics holds the collectors registered by New.
type Metrics struct {
	artifacts     *prometheus.CounterVec
	bytes         prometheus.Counter
	retries       prometheus.Counter
	installs      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	checksumCache *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		artifacts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_total",
				Help:      "Artifacts processed by the downloader, by result",
			},
			[]string{"result"},
		),
		bytes: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloaded_bytes_total",
				Help:      "Verified bytes downloaded",
			},
		),
		retries: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "download_retries_total",
				Help:      "Artifact download attempts that were retried",
			},
		),
		installs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "installs_total",
				Help:      "Install attempts by side and outcome",
			},
			[]string{"side", "outcome"},
		),
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each install stage",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"stage"},
		),
		checksumCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checksum_cache_total",
				Help:      "Maven checksum sidecar lookups by cache result",
			},
			[]string{"result"},
		),
	}
}

// Downloaded records one verified transfer of n bytes.
func (m *Metrics) Downloaded(n int64) {
	if m == nil {
		return
	}
	m.artifacts.WithLabelValues("downloaded").Inc()
	m.bytes.Add(float64(n))
}

// Skipped records an artifact already present with a matching digest.
func (m *Metrics) Skipped() {
	if m == nil {
		return
	}
	m.artifacts.WithLabelValues("skipped").Inc()
}

// Failed records an artifact that exhausted its attempts.
func (m *Metrics) Failed() {
	if m == nil {
		return
	}
	m.artifacts.WithLabelValues("failed").Inc()
}

// Retried records one retried attempt.
func (m *Metrics) Retried() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// Install records the outcome of an install. Outcome is "success" or the failing stage.
func (m *Metrics) Install(side, outcome string) {
	if m == nil {
		return
	}
	m.installs.WithLabelValues(side, outcome).Inc()
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ChecksumLookup records a sidecar digest lookup as a cache hit or miss.
func (m *Metrics) ChecksumLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.checksumCache.WithLabelValues(result).Inc()
}

// WriteTextfile writes everything gathered by g in the node_exporter textfile format.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	return prometheus.WriteToTextfile(path, g)
}
