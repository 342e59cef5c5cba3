package escl

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels used on client metrics
const (
	opCapabilities = "capabilities"
	opStatus       = "status"
	opSubmit       = "submit"
	opNextDocument = "next_document"
	opCancel       = "cancel"
)

// Metrics records client-side request metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
	pages    prometheus.Counter
}

// NewMetrics creates client metrics and registers them with reg when reg is non-nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escl_client_requests_total",
				Help: "eSCL requests by operation and HTTP status code (\"error\" on transport failure)",
			},
			[]string{"operation", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "escl_client_request_duration_seconds",
				Help:    "eSCL request latency by operation",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escl_client_response_bytes_total",
				Help: "Response body bytes read by operation",
			},
			[]string{"operation"},
		),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escl_client_pages_total",
			Help: "Pages delivered by NextDocument",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Collectors()...)
	}
	return m
}

// Collectors exposes the underlying collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.duration, m.bytes, m.pages}
}

// observe records one exchange; code 0 means the request never got a response
func (m *Metrics) observe(op string, code int, elapsed time.Duration, n int) {
	if m == nil {
		return
	}
	label := "error"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	m.requests.WithLabelValues(op, label).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	if n > 0 {
		m.bytes.WithLabelValues(op).Add(float64(n))
	}
}

func (m *Metrics) page() {
	if m == nil {
		return
	}
	m.pages.Inc()
}
