// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for the service. The collectors are
// registered on a private registry so tests can construct their own.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	errors     prometheus.Counter
	panics     prometheus.Counter
	operations *prometheus.CounterVec
	events     *prometheus.CounterVec
	block      prometheus.Gauge
}

// New constructs and registers the collectors.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of request errors.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "Total number of recovered panics.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of school operations by result.",
		}, []string{"op", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of emitted school events.",
		}, []string{"name"}),
		block: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "block_height",
			Help:      "Current school block height.",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "goroutines",
		Help:      "Number of goroutines.",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requests, m.duration, m.errors, m.panics, m.operations, m.events, m.block, goroutines)

	return &m
}

// Handler returns the handler serving the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the registry for inspection.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// AddRequest records a completed request.
func (m *Metrics) AddRequest(method string, path string, status int, took time.Duration) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, path).Observe(took.Seconds())
}

// AddError increments the error count.
func (m *Metrics) AddError() {
	m.errors.Inc()
}

// AddPanic increments the panic count.
func (m *Metrics) AddPanic() {
	m.panics.Inc()
}

// AddOperation records the result of a school operation.
func (m *Metrics) AddOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// AddEvent records an emitted school event.
func (m *Metrics) AddEvent(name string) {
	m.events.WithLabelValues(name).Inc()
}

// SetBlock records the block height.
func (m *Metrics) SetBlock(block uint64) {
	m.block.Set(float64(block))
}
