package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics counts checkout outcomes and background housekeeping.
type CheckoutMetrics struct {
	orders        *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	expiredOrders prometheus.Counter
	deactivated   prometheus.Counter
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	m := &CheckoutMetrics{
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "myblog",
				Subsystem: "checkout",
				Name:      "orders_total",
				Help:      "Order creation attempts by outcome",
			},
			[]string{"outcome"},
		),
		confirmations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "myblog",
				Subsystem: "checkout",
				Name:      "confirmations_total",
				Help:      "Payment confirmations by outcome",
			},
			[]string{"outcome"},
		),
		expiredOrders: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "myblog",
				Subsystem: "checkout",
				Name:      "orders_expired_total",
				Help:      "Orders that were never paid before their TTL",
			},
		),
		deactivated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "myblog",
				Subsystem: "subscriptions",
				Name:      "deactivated_total",
				Help:      "Subscriptions deactivated after their end date",
			},
		),
	}
	reg.MustRegister(m.orders, m.confirmations, m.expiredOrders, m.deactivated)
	return m
}

func (m *CheckoutMetrics) RecordOrder(outcome string) {
	m.orders.WithLabelValues(outcome).Inc()
}

func (m *CheckoutMetrics) RecordConfirmation(outcome string) {
	m.confirmations.WithLabelValues(outcome).Inc()
}

func (m *CheckoutMetrics) RecordExpiredOrder() {
	m.expiredOrders.Inc()
}

func (m *CheckoutMetrics) RecordDeactivated(n int64) {
	if n > 0 {
		m.deactivated.Add(float64(n))
	}
}

// Counters exposed for tests.

func (m *CheckoutMetrics) Orders(outcome string) prometheus.Counter {
	return m.orders.WithLabelValues(outcome)
}

func (m *CheckoutMetrics) Confirmations(outcome string) prometheus.Counter {
	return m.confirmations.WithLabelValues(outcome)
}

func (m *CheckoutMetrics) ExpiredOrders() prometheus.Counter {
	return m.expiredOrders
}

func (m *CheckoutMetrics) Deactivated() prometheus.Counter {
	return m.deactivated
}
