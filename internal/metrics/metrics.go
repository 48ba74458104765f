package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// コミットの終端
const (
	OutcomeFinalized          = "finalized"
	OutcomeRejected           = "rejected"
	OutcomeAborted            = "aborted"
	OutcomeCompensationFailed = "compensation_failed"
)

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	Commits              *prometheus.CounterVec
	CommitDurationMS     prometheus.Histogram
	CompensationFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// テストでは毎回新しいRegistryを渡す
func New(reg *prometheus.Registry) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bakery",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bakery",
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bakery",
		Subsystem: "order",
		Name:      "commits_total",
		Help:      "Order commit attempts by terminal outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bakery",
		Subsystem: "order",
		Name:      "commit_duration_ms",
		Help:      "Order commit latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	compFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bakery",
		Subsystem: "order",
		Name:      "compensation_failures_total",
		Help:      "Compensations that failed and left an orphaned order header.",
	})

	reg.MustRegister(requests, latency, commits, duration, compFailures)

	return &Metrics{
		Requests:             requests,
		LatencyMS:            latency,
		Commits:              commits,
		CommitDurationMS:     duration,
		CompensationFailures: compFailures,
		gatherer:             reg,
	}
}

// nilなら何もしない
func (m *Metrics) ObserveCommit(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Commits.WithLabelValues(outcome).Inc()
	m.CommitDurationMS.Observe(float64(elapsed.Milliseconds()))
	if outcome == OutcomeCompensationFailed {
		m.CompensationFailures.Inc()
	}
}

func (m *Metrics) ObserveRequest(handler string, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(handler, status).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
