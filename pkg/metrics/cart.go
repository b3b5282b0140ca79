package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutations and durable-store latency.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	failures  *prometheus.CounterVec
	persist   *prometheus.HistogramVec
	orders    prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart snapshots that could not be written to the durable store.",
	}, []string{"op"})
	persist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_persist_duration_seconds",
		Help:    "Time spent writing cart snapshots to the durable store.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Simulated orders placed through checkout.",
	})
	reg.MustRegister(mutations, failures, persist, orders)
	return &CartMetrics{
		mutations: mutations,
		failures:  failures,
		persist:   persist,
		orders:    orders,
	}
}

// IncMutation counts a successfully applied cart operation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncPersistFailure counts a cart operation rolled back because the write failed.
func (c *CartMetrics) IncPersistFailure(op string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObservePersist records how long a snapshot write took.
func (c *CartMetrics) ObservePersist(op string, duration time.Duration) {
	if c == nil || c.persist == nil {
		return
	}
	c.persist.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncOrder counts a completed checkout.
func (c *CartMetrics) IncOrder() {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
