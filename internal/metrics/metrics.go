package metrics

import (
	"net/http"
	"time"

	"github.com/dgallion1/mdchapter/internal/mdast"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors and the rolling parse
// latency window served by the stats endpoint.
type Metrics struct {
	registry *prometheus.Registry

	parses        *prometheus.CounterVec
	parseDuration prometheus.Histogram
	parseBytes    prometheus.Histogram
	nodes         *prometheus.CounterVec
	jobs          *prometheus.CounterVec
	storeRetries  prometheus.Counter

	// ParseLatency covers recent parse calls.
	ParseLatency *LatencyStats
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		parses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mdchapter_parse_total",
			Help: "Total markdown parses by result",
		}, []string{"result"}),
		parseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mdchapter_parse_duration_seconds",
			Help:    "Markdown parse duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		}),
		parseBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mdchapter_parse_input_bytes",
			Help:    "Size of parsed markdown inputs",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		}),
		nodes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mdchapter_nodes_total",
			Help: "Parsed nodes by content type",
		}, []string{"content_type"}),
		jobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mdchapter_jobs_total",
			Help: "Finished ingestion jobs by final status",
		}, []string{"status"}),
		storeRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "mdchapter_store_retries_total",
			Help: "Retried pathstore writes",
		}),
		ParseLatency: NewLatencyStats(time.Hour),
	}
}

// ObserveParse records one parse of size bytes.
func (m *Metrics) ObserveParse(d time.Duration, size int, nodes []mdast.Node, err error) {
	if m == nil {
		return
	}
	m.parseDuration.Observe(d.Seconds())
	m.parseBytes.Observe(float64(size))
	m.ParseLatency.Observe(d)
	if err != nil {
		m.parses.WithLabelValues("error").Inc()
		return
	}
	m.parses.WithLabelValues("ok").Inc()

	mdast.Walk(nodes, func(n mdast.Node, _ []*mdast.Chapter) bool {
		m.nodes.WithLabelValues(string(n.Type())).Inc()
		return true
	})
}

// JobFinished counts a job reaching a terminal status.
func (m *Metrics) JobFinished(status string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(status).Inc()
}

// StoreRetried counts one retried pathstore call.
func (m *Metrics) StoreRetried() {
	if m == nil {
		return
	}
	m.storeRetries.Inc()
}

// Registry exposes the underlying registry for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
