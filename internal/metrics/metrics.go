// Package metrics exposes Prometheus metrics for the graph engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph metrics
	NodesCreated    *prometheus.CounterVec
	NodesDeleted    prometheus.Counter
	EdgesCreated    prometheus.Counter
	EdgesDeleted    *prometheus.CounterVec
	RefNodesCreated prometheus.Counter

	// Layout metrics
	LayoutDuration prometheus.Histogram
	LayoutNodes    prometheus.Histogram
	ViewSessions   prometheus.Gauge
}

// NewCollector creates a collector with the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		NodesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_created_total",
				Help:      "Total number of nodes created, by node type",
			},
			[]string{"node_type"},
		),
		NodesDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_deleted_total",
				Help:      "Total number of nodes deleted",
			},
		),
		EdgesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edges_created_total",
				Help:      "Total number of edges created",
			},
		),
		EdgesDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edges_deleted_total",
				Help:      "Total number of edges deleted, by cause",
			},
			[]string{"cause"},
		),
		RefNodesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ref_nodes_created_total",
				Help:      "Total number of *_ref nodes created",
			},
		),
		LayoutDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Wall time of a full layout relaxation",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
		LayoutNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_nodes",
				Help:      "Node count of laid out subgraphs",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 200, 500},
			},
		),
		ViewSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "view_sessions_active",
				Help:      "Number of open interactive view sessions",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.NodesCreated,
		c.NodesDeleted,
		c.EdgesCreated,
		c.EdgesDeleted,
		c.RefNodesCreated,
		c.LayoutDuration,
		c.LayoutNodes,
		c.ViewSessions,
	)
	return c
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveLayout records one full relaxation.
func (c *Collector) ObserveLayout(d time.Duration, nodes int) {
	c.LayoutDuration.Observe(d.Seconds())
	c.LayoutNodes.Observe(float64(nodes))
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route, status string, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ─── graph.Observer ──────────────────────────────────────────────────────────

// GraphObserver returns a graph.Observer feeding this collector.
func (c *Collector) GraphObserver() graph.Observer {
	return graphObserver{c}
}

type graphObserver struct {
	c *Collector
}

func (o graphObserver) NodeCreated(t graph.NodeType) {
	o.c.NodesCreated.WithLabelValues(string(t)).Inc()
	if t.IsRef() {
		o.c.RefNodesCreated.Inc()
	}
}

func (o graphObserver) NodeDeleted(cascadedEdges int) {
	o.c.NodesDeleted.Inc()
	o.c.EdgesDeleted.WithLabelValues("cascade").Add(float64(cascadedEdges))
}

func (o graphObserver) EdgesCreated(n int) {
	o.c.EdgesCreated.Add(float64(n))
}

func (o graphObserver) EdgeDeleted() {
	o.c.EdgesDeleted.WithLabelValues("explicit").Inc()
}
