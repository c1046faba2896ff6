package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records counters and latencies for the order engine.
type OrderMetrics struct {
	created        prometheus.Counter
	cancelled      prometheus.Counter
	transitions    *prometheus.CounterVec
	createDuration prometheus.Histogram
	stockConflicts prometheus.Counter
	pointsRedeemed prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created.",
	})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions, labeled by from and to status.",
	}, []string{"from", "to"})
	createDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_create_duration_seconds",
		Help:    "Duration of the order creation transaction in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_stock_conflicts_total",
		Help: "Order creations rejected for insufficient stock.",
	})
	pointsRedeemed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_redeemed_total",
		Help: "Loyalty points redeemed across orders.",
	})
	reg.MustRegister(created, cancelled, transitions, createDuration, stockConflicts, pointsRedeemed)
	return &OrderMetrics{
		created:        created,
		cancelled:      cancelled,
		transitions:    transitions,
		createDuration: createDuration,
		stockConflicts: stockConflicts,
		pointsRedeemed: pointsRedeemed,
	}
}

// IncCreated increments the created counter.
func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncCancelled increments the cancelled counter.
func (m *OrderMetrics) IncCancelled() {
	if m == nil || m.cancelled == nil {
		return
	}
	m.cancelled.Inc()
}

// ObserveTransition records an order status transition.
func (m *OrderMetrics) ObserveTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveCreateDuration records the order creation transaction duration.
func (m *OrderMetrics) ObserveCreateDuration(d time.Duration) {
	if m == nil || m.createDuration == nil {
		return
	}
	m.createDuration.Observe(d.Seconds())
}

// IncStockConflict increments the insufficient-stock rejection counter.
func (m *OrderMetrics) IncStockConflict() {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.Inc()
}

// AddPointsRedeemed adds redeemed points to the running counter.
func (m *OrderMetrics) AddPointsRedeemed(points int64) {
	if m == nil || m.pointsRedeemed == nil || points <= 0 {
		return
	}
	m.pointsRedeemed.Add(float64(points))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
