package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObservePurchase(ResultSuccess, 3, 5*time.Millisecond)
	m.ObservePurchase("insufficient_stock", 0, time.Millisecond)
	m.ObserveRedemption(ResultSuccess, time.Millisecond)
	m.ObserveRedemption("already_redeemed", time.Millisecond)
	m.ObserveRedemption("already_redeemed", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.purchases.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.purchases.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ticketsIssued))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.redemptions.WithLabelValues("already_redeemed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.txDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObservePurchase(ResultSuccess, 1, time.Millisecond)
	m.ObserveRedemption(ResultSuccess, time.Millisecond)
}
