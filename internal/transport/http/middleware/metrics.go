package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsOptions configures the HTTP metrics middleware. Zero values
// fall back to the service defaults.
type HTTPMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	Buckets    []float64
}

// HTTPMetrics exposes Prometheus collectors for request instrumentation.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics constructs collectors for HTTP request metrics and registers
// them with the provided registerer. Collectors already registered under the
// same names are reused, so repeated router construction is safe.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "iam"
	}
	subsystem := opts.Subsystem
	if subsystem == "" {
		subsystem = "http"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	labels := []string{"method", "route", "status"}

	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests partitioned by method, route, and status code.",
		}, labels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request latencies in seconds partitioned by method, route, and status code.",
			Buckets:   buckets,
		}, labels),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}

	if err := registerRequestCounter(reg, &m.Requests); err != nil {
		return nil, fmt.Errorf("register requests collector: %w", err)
	}
	if err := registerDurationHistogram(reg, &m.Duration); err != nil {
		return nil, fmt.Errorf("register duration collector: %w", err)
	}
	if err := registerInFlightGauge(reg, &m.InFlight); err != nil {
		return nil, fmt.Errorf("register inflight collector: %w", err)
	}

	return m, nil
}

func registerRequestCounter(reg prometheus.Registerer, vec **prometheus.CounterVec) error {
	err := reg.Register(*vec)
	if err == nil {
		return nil
	}
	if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
			*vec = existing
			return nil
		}
		return fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
	}
	return err
}

func registerDurationHistogram(reg prometheus.Registerer, vec **prometheus.HistogramVec) error {
	err := reg.Register(*vec)
	if err == nil {
		return nil
	}
	if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
			*vec = existing
			return nil
		}
		return fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
	}
	return err
}

func registerInFlightGauge(reg prometheus.Registerer, gauge *prometheus.Gauge) error {
	err := reg.Register(*gauge)
	if err == nil {
		return nil
	}
	if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := already.ExistingCollector.(prometheus.Gauge); ok {
			*gauge = existing
			return nil
		}
		return fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
	}
	return err
}

// Handler returns a Gin middleware that records the HTTP metrics. A nil
// receiver yields a pass-through handler.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		if m.InFlight != nil {
			m.InFlight.Inc()
			defer m.InFlight.Dec()
		}

		c.Next()

		// Prefer the route template so path parameters do not explode
		// label cardinality; unmatched requests fall back to the raw path.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		if m.Requests != nil {
			m.Requests.With(labels).Inc()
		}
		if m.Duration != nil {
			m.Duration.With(labels).Observe(time.Since(start).Seconds())
		}
	}
}
