package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the order-lifecycle counters exposed on /metrics.
type Metrics struct {
	OrdersCreated   prometheus.Counter
	OrdersDelivered prometheus.Counter
	OrdersCancelled prometheus.Counter
	ClaimAttempts   *prometheus.CounterVec
}

// NewMetrics registers the lifecycle counters on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "quickbite_orders_created_total",
			Help: "Orders placed through checkout.",
		}),
		OrdersDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "quickbite_orders_delivered_total",
			Help: "Orders completed by agents.",
		}),
		OrdersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "quickbite_orders_cancelled_total",
			Help: "Orders cancelled by customers or restaurants.",
		}),
		ClaimAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickbite_claim_attempts_total",
			Help: "Order claim attempts by outcome.",
		}, []string{"result"}),
	}
}
