package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the order workflow reports into.
type Metrics struct {
	OrdersCreated      prometheus.Counter
	OrdersRejected     *prometheus.CounterVec
	PaymentSessions    prometheus.Counter
	PaymentFailures    prometheus.Counter
	AppointmentsBooked prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicore",
			Name:      "orders_created_total",
			Help:      "Total number of orders persisted.",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicore",
			Name:      "orders_rejected_total",
			Help:      "Orders rejected before persistence, by reason.",
		}, []string{"reason"}),
		PaymentSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicore",
			Name:      "payment_sessions_total",
			Help:      "Hosted checkout sessions created.",
		}),
		PaymentFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicore",
			Name:      "payment_session_failures_total",
			Help:      "Checkout session creations that failed after the order was persisted.",
		}),
		AppointmentsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicore",
			Name:      "appointments_booked_total",
			Help:      "Appointments booked.",
		}),
	}
	reg.MustRegister(m.OrdersCreated, m.OrdersRejected, m.PaymentSessions, m.PaymentFailures, m.AppointmentsBooked)
	return m
}

// NewDefault registers the metrics on the default prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
