package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.OrdersCreated.Inc()
	m.OrdersCreated.Inc()
	m.OrdersRejected.WithLabelValues("insufficient_stock").Inc()
	m.PaymentFailures.Inc()

	if got := testutil.ToFloat64(m.OrdersCreated); got != 2 {
		t.Errorf("expected 2 orders created, got %v", got)
	}
	if got := testutil.ToFloat64(m.OrdersRejected.WithLabelValues("insufficient_stock")); got != 1 {
		t.Errorf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.PaymentFailures); got != 1 {
		t.Errorf("expected 1 payment failure, got %v", got)
	}
}
