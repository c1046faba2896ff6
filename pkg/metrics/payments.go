package metrics

import "github.com/prometheus/client_golang/prometheus"

// PaymentMetrics records counters for the payment verification flow.
type PaymentMetrics struct {
	submitted *prometheus.CounterVec
	verified  *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_submitted_total",
		Help: "Payment proofs submitted, labeled by method.",
	}, []string{"method"})
	verified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_verified_total",
		Help: "Payment verification outcomes, labeled by result.",
	}, []string{"result"})
	reg.MustRegister(submitted, verified)
	return &PaymentMetrics{
		submitted: submitted,
		verified:  verified,
	}
}

// IncSubmitted increments the submitted counter for the given method.
func (m *PaymentMetrics) IncSubmitted(method string) {
	if m == nil || m.submitted == nil {
		return
	}
	m.submitted.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncVerified increments the verified counter for the given result.
func (m *PaymentMetrics) IncVerified(result string) {
	if m == nil || m.verified == nil {
		return
	}
	m.verified.WithLabelValues(normalizeLabel(result)).Inc()
}
