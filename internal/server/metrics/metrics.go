// Package metrics records per-operation outcomes and latencies and exposes
// them in the Prometheus text format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder observes the outcome of a service operation.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// PrometheusRecorder keeps its collectors in a private registry so several
// instances (tests, CLI) never collide on registration.
type PrometheusRecorder struct {
	registry  *prometheus.Registry
	results   *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	r := &PrometheusRecorder{
		registry: reg,
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskflow",
			Name:      "operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskflow",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(
		r.results,
		r.durations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records a service operation outcome. Empty operation names are ignored.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.results.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler serves the recorder's registry.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Nop discards observations.
type Nop struct{}

func (Nop) Observe(context.Context, string, bool, time.Duration) {}
