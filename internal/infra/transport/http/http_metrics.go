package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP server collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewMetrics creates the HTTP collectors and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookstore_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bookstore_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
	}

	reg.MustRegister(m.Requests, m.Duration, m.InFlight)

	return m
}

// MetricsMiddleware records request count, latency and in-flight requests for
// one route. route is the registered pattern, keeping label cardinality bounded.
func MetricsMiddleware(next http.Handler, metrics *Metrics, route string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		metrics.InFlight.Inc()
		defer metrics.InFlight.Dec()

		rec := NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		metrics.Requests.WithLabelValues(route, strconv.Itoa(rec.StatusCode)).Inc()
		metrics.Duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
