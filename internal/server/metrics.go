package server

import (
	"time"

	"fidakune/internal/retrieval"
	"fidakune/internal/search"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics owns a private registry so several servers can coexist in one process.
type Metrics struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewMetrics(namespace string, engine *search.Engine, explorer *retrieval.Explorer) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	registry.MustRegister(httpRequests, httpDuration)

	if engine != nil {
		registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of searches served, including invalid queries",
			}, func() float64 { return float64(engine.Metrics().TotalSearches) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_cache_hits_total",
				Help:      "Searches answered from the result cache",
			}, func() float64 { return float64(engine.Metrics().CacheHits) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "search_average_seconds",
				Help:      "Mean search processing time",
			}, func() float64 { return engine.Metrics().AverageTime.Seconds() }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "search_cached_queries",
				Help:      "Entries currently held in the result cache",
			}, func() float64 { return float64(engine.Metrics().CachedQueries) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "vocabulary_entries",
				Help:      "Entries in the loaded collection",
			}, func() float64 { return float64(engine.Metrics().CollectionSize) }),
		)
	}
	if explorer != nil {
		registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_nodes",
				Help:      "Nodes in the loaded relationship graph",
			}, func() float64 { return float64(explorer.Graph().NodeCount()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_edges",
				Help:      "Edges in the loaded relationship graph",
			}, func() float64 { return float64(explorer.Graph().EdgeCount()) }),
		)
	}

	return &Metrics{
		registry:     registry,
		httpRequests: httpRequests,
		httpDuration: httpDuration,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeRequest(method, route, status string, took time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
