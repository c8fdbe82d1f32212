package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters and timings for the order flow.
type CheckoutMetrics struct {
	steps        *prometheus.CounterVec
	payment      prometheus.Histogram
	reservations prometheus.Gauge
	orders       prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_step_transitions_total",
		Help: "Checkout step transitions by target step.",
	}, []string{"step"})
	payment := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_duration_seconds",
		Help:    "Duration of payment submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reservations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_reservations_active",
		Help: "Reservation countdowns currently running.",
	})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Orders successfully submitted.",
	})
	reg.MustRegister(steps, payment, reservations, orders)
	return &CheckoutMetrics{
		steps:        steps,
		payment:      payment,
		reservations: reservations,
		orders:       orders,
	}
}

// ObserveStep counts a transition into the named step.
func (c *CheckoutMetrics) ObserveStep(step string) {
	if c == nil || c.steps == nil {
		return
	}
	if step == "" {
		step = "unknown"
	}
	c.steps.WithLabelValues(step).Inc()
}

// ObservePayment records the duration of a payment submission.
func (c *CheckoutMetrics) ObservePayment(duration time.Duration) {
	if c == nil || c.payment == nil {
		return
	}
	c.payment.Observe(duration.Seconds())
}

// ReservationStarted bumps the active reservation gauge.
func (c *CheckoutMetrics) ReservationStarted() {
	if c == nil || c.reservations == nil {
		return
	}
	c.reservations.Inc()
}

// ReservationStopped lowers the active reservation gauge.
func (c *CheckoutMetrics) ReservationStopped() {
	if c == nil || c.reservations == nil {
		return
	}
	c.reservations.Dec()
}

// OrderSubmitted counts one completed checkout.
func (c *CheckoutMetrics) OrderSubmitted() {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.Inc()
}
