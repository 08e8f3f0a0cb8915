// Package observability holds the process-wide prometheus metrics.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "safeplate"

// DispatchMetrics covers notification fan-out
type DispatchMetrics struct {
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	batches  *prometheus.HistogramVec
}

// EngineMetrics covers ledger, issuance, review and campaign activity
type EngineMetrics struct {
	ledgerCredits   *prometheus.CounterVec
	couponsIssued   *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	activations     *prometheus.CounterVec
	maintenanceRuns *prometheus.CounterVec
}

// HTTPMetrics covers the admin API
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	dispatchOnce     sync.Once
	dispatchRegistry *DispatchMetrics

	engineOnce     sync.Once
	engineRegistry *EngineMetrics

	httpOnce     sync.Once
	httpRegistry *HTTPMetrics
)

// Dispatch returns the lazily-initialised fan-out metrics.
func Dispatch() *DispatchMetrics {
	dispatchOnce.Do(func() {
		dispatchRegistry = &DispatchMetrics{
			attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "attempts_total",
				Help:      "Notification delivery attempts segmented by message type and outcome.",
			}, []string{"type", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "send_duration_seconds",
				Help:      "Latency of individual push sends.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"provider"}),
			batches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "batch_size",
				Help:      "Number of recipients per fan-out.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			}, []string{"type"}),
		}
		prometheus.MustRegister(
			dispatchRegistry.attempts,
			dispatchRegistry.latency,
			dispatchRegistry.batches,
		)
	})
	return dispatchRegistry
}

// ObserveBatch records the size of one fan-out.
func (m *DispatchMetrics) ObserveBatch(msgType string, size int) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(msgType).Observe(float64(size))
}

// ObserveAttempt records one delivery attempt.
func (m *DispatchMetrics) ObserveAttempt(msgType, outcome, provider string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(msgType, outcome).Inc()
	if provider != "" {
		m.latency.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
}

// Engine returns the lazily-initialised engine metrics.
func Engine() *EngineMetrics {
	engineOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			ledgerCredits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "credits_total",
				Help:      "Points ledger credits segmented by direction and whether the resulting balance is zero.",
			}, []string{"direction", "zero_balance"}),
			couponsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rewards",
				Name:      "coupons_issued_total",
				Help:      "Coupons persisted by issuance batches segmented by outcome of the batch.",
			}, []string{"outcome"}),
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "review",
				Name:      "transitions_total",
				Help:      "Review state machine transitions segmented by machine and target status.",
			}, []string{"machine", "status"}),
			activations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "campaign",
				Name:      "activations_total",
				Help:      "Campaign status changes segmented by whether a fan-out happened.",
			}, []string{"fanout"}),
			maintenanceRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "expired_total",
				Help:      "Documents whose premium or boost flag was cleared by the maintenance job.",
			}, []string{"kind"}),
		}
		prometheus.MustRegister(
			engineRegistry.ledgerCredits,
			engineRegistry.couponsIssued,
			engineRegistry.transitions,
			engineRegistry.activations,
			engineRegistry.maintenanceRuns,
		)
	})
	return engineRegistry
}

// ObserveCredit records one ledger credit.
func (m *EngineMetrics) ObserveCredit(delta int, zeroBalance bool) {
	if m == nil {
		return
	}
	direction := "credit"
	if delta < 0 {
		direction = "debit"
	}
	zero := "false"
	if zeroBalance {
		zero = "true"
	}
	m.ledgerCredits.WithLabelValues(direction, zero).Inc()
}

// ObserveIssued records coupons persisted by one batch.
func (m *EngineMetrics) ObserveIssued(count int, failed bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if failed {
		outcome = "partial"
	}
	m.couponsIssued.WithLabelValues(outcome).Add(float64(count))
}

// ObserveTransition records a review transition.
func (m *EngineMetrics) ObserveTransition(machine, status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(machine, status).Inc()
}

// ObserveActivation records a campaign status change.
func (m *EngineMetrics) ObserveActivation(fannedOut bool) {
	if m == nil {
		return
	}
	label := "false"
	if fannedOut {
		label = "true"
	}
	m.activations.WithLabelValues(label).Inc()
}

// ObserveExpired records documents cleared by a maintenance run.
func (m *EngineMetrics) ObserveExpired(kind string, n int64) {
	if m == nil {
		return
	}
	m.maintenanceRuns.WithLabelValues(kind).Add(float64(n))
}

// HTTP returns the lazily-initialised admin API metrics.
func HTTP() *HTTPMetrics {
	httpOnce.Do(func() {
		httpRegistry = &HTTPMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Admin API requests segmented by route, method and status code.",
			}, []string{"route", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for admin API handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route", "method"}),
		}
		prometheus.MustRegister(httpRegistry.requests, httpRegistry.latency)
	})
	return httpRegistry
}

// Observe records one HTTP request.
func (m *HTTPMetrics) Observe(route, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, status).Inc()
	m.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
