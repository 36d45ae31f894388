// Package metrics implements the observability hooks with Prometheus
// collectors.
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.Install()
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/anchorlayout/pkg/observability"
)

const namespace = "anchorlayout"

// Metrics holds the collectors. It implements LayoutHooks, CacheHooks and
// HTTPHooks.
type Metrics struct {
	passesTotal       *prometheus.CounterVec
	passDuration      prometheus.Histogram
	passOps           prometheus.Histogram
	passContainers    prometheus.Histogram
	transactionsTotal prometheus.Counter

	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		passesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Layout passes by outcome",
		}, []string{"result"}),
		passDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of layout passes",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25},
		}),
		passOps: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_solver_ops",
			Help:      "Solver operations submitted per pass",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		passContainers: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_containers",
			Help:      "Containers visited per pass",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		transactionsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_failed_total",
			Help:      "Transactions rejected by the solver",
		}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Result cache lookups by key type and outcome",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the result cache",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers m as the global layout, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetLayoutHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnPassStart(_ context.Context, _ string, containers int) {
	m.passContainers.Observe(float64(containers))
}

func (m *Metrics) OnPassComplete(_ context.Context, _ string, ops int, d time.Duration, err error) {
	result := "applied"
	if err != nil {
		result = "failed"
	}
	m.passesTotal.WithLabelValues(result).Inc()
	m.passDuration.Observe(d.Seconds())
	m.passOps.Observe(float64(ops))
}

func (m *Metrics) OnTransactionFailed(context.Context, string, string, error) {
	m.transactionsTotal.Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest is a no-op; requests are counted when the response is written.
func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.LayoutHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)
