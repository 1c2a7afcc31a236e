package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry      *prometheus.Registry
	RequestsTotal *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	EntriesTotal  *prometheus.CounterVec
	RetriesTotal  prometheus.Counter
	ErrorsTotal   *prometheus.CounterVec
	StoreRecords  prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_requests_total",
			Help: "Total HTTP requests issued by the crawler.",
		},
		[]string{"phase"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokedex_fetch_duration_seconds",
			Help:    "HTTP request latency for page fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	entries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_entries_total",
			Help: "Index entries handled by the pipeline, by outcome.",
		},
		[]string{"outcome"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pokedex_retries_total",
			Help: "Total number of fetch retry attempts.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_errors_total",
			Help: "Total number of fetch errors by type.",
		},
		[]string{"error_type"},
	)
	storeRecords := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokedex_store_records",
			Help: "Records currently held in the JSON store.",
		},
	)

	registry.MustRegister(requests, fetchDuration, entries, retries, errorsTotal, storeRecords)

	return &Metrics{
		Registry:      registry,
		RequestsTotal: requests,
		FetchDuration: fetchDuration,
		EntriesTotal:  entries,
		RetriesTotal:  retries,
		ErrorsTotal:   errorsTotal,
		StoreRecords:  storeRecords,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveFetch records a page fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncEntry increments the entries counter for an outcome label.
func (m *Metrics) IncEntry(outcome string) {
	if m == nil {
		return
	}
	m.EntriesTotal.WithLabelValues(outcome).Inc()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetStoreSize records the store's current record count.
func (m *Metrics) SetStoreSize(n int) {
	if m == nil {
		return
	}
	m.StoreRecords.Set(float64(n))
}
