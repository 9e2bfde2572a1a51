package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/wikicard/pkg/domain"
)

const namespace = "wikicard"

// Metrics collects wikicard counters and histograms.
type Metrics struct {
	registry *prometheus.Registry

	attempts      prometheus.Counter
	duplicates    prometheus.Counter
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	historyWrites *prometheus.CounterVec
	storeOps      *prometheus.HistogramVec
	renders       *prometheus.CounterVec
	renderTime    prometheus.Histogram
	httpRequests  *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a fresh registry,
// including the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Random article draws, including duplicates.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_articles_total",
			Help:      "Random draws rejected because the article was already distributed.",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Completed fetch operations by outcome.",
		}, []string{"op", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of fetch operations, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		historyWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "History records written, by result.",
		}, []string{"result"}),
		storeOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "history_store_duration_seconds",
			Help:      "Latency of history store calls.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"op", "result"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cards_rendered_total",
			Help:      "Rendered cards by layout and result.",
		}, []string{"layout", "result"}),
		renderTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of card rendering.",
			Buckets:   []float64{.1, .25, .5, 1, 2, 5, 10, 30},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.attempts,
		m.duplicates,
		m.fetches,
		m.fetchDuration,
		m.historyWrites,
		m.storeOps,
		m.renders,
		m.renderTime,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordAttempt() {
	m.attempts.Inc()
}

func (m *Metrics) RecordDuplicate() {
	m.duplicates.Inc()
}

// RecordFetch counts a finished fetch. KindUnknown means success.
func (m *Metrics) RecordFetch(op string, kind domain.ErrorKind, d time.Duration) {
	outcome := "ok"
	if kind != domain.KindUnknown {
		outcome = kind.String()
	}
	m.fetches.WithLabelValues(op, outcome).Inc()
	m.fetchDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) RecordHistoryWrite(ok bool) {
	m.historyWrites.WithLabelValues(result(ok)).Inc()
}

// ObserveStore records the latency of a history store call.
func (m *Metrics) ObserveStore(op string, d time.Duration, err error) {
	m.storeOps.WithLabelValues(op, result(err == nil)).Observe(d.Seconds())
}

// RecordRender counts a render attempt.
func (m *Metrics) RecordRender(layout domain.Layout, d time.Duration, err error) {
	m.renders.WithLabelValues(string(layout), result(err == nil)).Inc()
	if err == nil {
		m.renderTime.Observe(d.Seconds())
	}
}

// RecordHTTP counts a served request.
func (m *Metrics) RecordHTTP(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
