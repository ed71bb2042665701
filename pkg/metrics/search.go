package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics records the health of the product search path.
type SearchMetrics struct {
	duration      *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	fallbacks     prometheus.Counter
	refetches     prometheus.Counter
	statsFailures prometheus.Counter
}

// NewSearchMetrics registers the search metrics on the provided registerer.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	if reg == nil {
		return &SearchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "product_search_duration_seconds",
		Help:    "Duration of product search requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_search_retries_total",
		Help: "Retry attempts made while fetching product pages.",
	}, []string{"reason"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "product_search_fallbacks_total",
		Help: "Searches served from the curated fallback dataset.",
	})
	refetches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "product_sync_refetches_total",
		Help: "Debounced refetches triggered by product change events.",
	})
	statsFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stats_aggregation_failures_total",
		Help: "Statistics aggregation runs that exhausted recovery.",
	})
	reg.MustRegister(duration, retries, fallbacks, refetches, statsFailures)
	return &SearchMetrics{
		duration:      duration,
		retries:       retries,
		fallbacks:     fallbacks,
		refetches:     refetches,
		statsFailures: statsFailures,
	}
}

// ObserveDuration records a finished search with its outcome label.
func (m *SearchMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncRetry increments the retry counter for the given reason.
func (m *SearchMetrics) IncRetry(reason string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncFallback increments the fallback-dataset counter.
func (m *SearchMetrics) IncFallback() {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.Inc()
}

// IncRefetch increments the debounced-refetch counter.
func (m *SearchMetrics) IncRefetch() {
	if m == nil || m.refetches == nil {
		return
	}
	m.refetches.Inc()
}

// IncStatsFailure increments the aggregation-failure counter.
func (m *SearchMetrics) IncStatsFailure() {
	if m == nil || m.statsFailures == nil {
		return
	}
	m.statsFailures.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
