// Package metrics exposes solver and HTTP metrics through a dedicated
// Prometheus registry.
package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Metrics wraps a registry together with the collectors the service updates.
type Metrics struct {
	registry *prometheus.Registry

	SolvesTotal       *prometheus.CounterVec   // algorithm, status
	SolveDuration     *prometheus.HistogramVec // algorithm
	BoxesUsed         *prometheus.HistogramVec // algorithm
	Utilization       *prometheus.GaugeVec     // algorithm, last solve
	BoxesImproved     *prometheus.CounterVec   // algorithm
	HTTPRequestsTotal *prometheus.CounterVec   // method, path, status
	HTTPDuration      *prometheus.HistogramVec // method, path
}

// NewMetrics creates the registry with Go runtime and process collectors
// plus the service metrics.
func NewMetrics(service string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}
	constLabels := prometheus.Labels{"service": service}

	m.SolvesTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name:        "boxpack_solves_total",
		Help:        "Total number of solves by algorithm and outcome",
		ConstLabels: constLabels,
	}, []string{"algorithm", "status"})

	m.SolveDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "boxpack_solve_duration_seconds",
		Help:        "Solve latency in seconds",
		ConstLabels: constLabels,
		Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"algorithm"})

	m.BoxesUsed = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "boxpack_solve_boxes",
		Help:        "Number of boxes in solved packings",
		ConstLabels: constLabels,
		Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"algorithm"})

	m.Utilization = m.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "boxpack_solve_utilization",
		Help:        "Mean squared fill ratio of the last solve",
		ConstLabels: constLabels,
	}, []string{"algorithm"})

	m.BoxesImproved = m.NewCounterVec(prometheus.CounterOpts{
		Name:        "boxpack_boxes_saved_total",
		Help:        "Boxes saved by improvement searches relative to greedy construction",
		ConstLabels: constLabels,
	}, []string{"algorithm"})

	m.HTTPRequestsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name:        "http_server_requests_total",
		Help:        "Total number of HTTP requests",
		ConstLabels: constLabels,
	}, []string{"method", "path", "status"})

	m.HTTPDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Help:        "HTTP request latency in seconds",
		ConstLabels: constLabels,
		Buckets:     prometheus.DefBuckets,
	}, []string{"method", "path"})

	slog.Debug("metrics registry initialized", "service", service)
	return m
}

// NewCounterVec creates and registers a counter.
func (m *Metrics) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labelNames)
	m.registry.MustRegister(cv)
	return cv
}

// NewGaugeVec creates and registers a gauge.
func (m *Metrics) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(opts, labelNames)
	m.registry.MustRegister(gv)
	return gv
}

// NewHistogramVec creates and registers a histogram.
func (m *Metrics) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	m.registry.MustRegister(hv)
	return hv
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSolve records the outcome of a solve.
func (m *Metrics) ObserveSolve(settings model.SolverSettings, stats model.SolutionStats, err error) {
	algo := string(settings.Algorithm)
	m.SolvesTotal.WithLabelValues(algo, solveStatus(err)).Inc()
	if err != nil {
		return
	}
	m.SolveDuration.WithLabelValues(algo).Observe((time.Duration(stats.RuntimeMs) * time.Millisecond).Seconds())
	m.BoxesUsed.WithLabelValues(algo).Observe(float64(stats.NumBoxes))
	m.Utilization.WithLabelValues(algo).Set(stats.Utilization)
	if stats.NumBoxesImproved > 0 {
		m.BoxesImproved.WithLabelValues(algo).Add(float64(stats.NumBoxesImproved))
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func solveStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrInfeasibleInput):
		return "infeasible"
	case errors.Is(err, model.ErrInvalidOption), errors.Is(err, model.ErrIncompatiblePlacement):
		return "invalid"
	default:
		return "error"
	}
}
