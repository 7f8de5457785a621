// Package metrics exposes Prometheus counters for purchases and redemptions.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const ResultSuccess = "success"

type Metrics struct {
	purchases     *prometheus.CounterVec
	ticketsIssued prometheus.Counter
	redemptions   *prometheus.CounterVec
	txDuration    *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		purchases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_purchases_total",
				Help: "Purchase attempts by result",
			},
			[]string{"result"},
		),
		ticketsIssued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "admission_tickets_issued_total",
				Help: "Tickets issued by committed purchases",
			},
		),
		redemptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_redemptions_total",
				Help: "Redemption attempts by result",
			},
			[]string{"result"},
		),
		txDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admission_tx_duration_seconds",
				Help:    "Duration of purchase and redemption transactions",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) ObservePurchase(result string, issued int, took time.Duration) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(result).Inc()
	if issued > 0 {
		m.ticketsIssued.Add(float64(issued))
	}
	m.txDuration.WithLabelValues("purchase").Observe(took.Seconds())
}

func (m *Metrics) ObserveRedemption(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
	m.txDuration.WithLabelValues("redeem").Observe(took.Seconds())
}
