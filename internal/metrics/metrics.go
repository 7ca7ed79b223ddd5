package metrics

import (
	"errors"
	"time"

	"smartchange/internal/domain"
	"smartchange/internal/rates"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartchange"

// Metrics holds the Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	refreshes     *prometheus.CounterVec
	substituted   prometheus.Counter
	fetchDuration prometheus.Histogram
	conversions   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_refreshes_total",
			Help:      "Rate matrix rebuilds by source (live, partial, fallback).",
		}, []string{"source"}),
		substituted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_substituted_pairs_total",
			Help:      "Pairs filled from the fallback table after a successful fetch.",
		}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_fetch_duration_seconds",
			Help:      "Latency of price source calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions by outcome (ok, invalid_amount, unavailable).",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveRefresh(snap domain.RateSnapshot, took time.Duration) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(string(snap.Source)).Inc()
	m.substituted.Add(float64(len(snap.Substituted)))
	m.fetchDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveConversion(err error) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(ConversionStatus(err)).Inc()
}

// ConversionStatus names the outcome of a rates.Convert call.
func ConversionStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, rates.ErrRateUnavailable):
		return "unavailable"
	default:
		return "invalid_amount"
	}
}
