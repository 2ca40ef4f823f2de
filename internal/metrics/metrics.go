package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	TGIncomingUpdates *prometheus.CounterVec
	TGOutgoingSends   *prometheus.CounterVec
	TGRequests        *prometheus.CounterVec
	TGLatency         *prometheus.HistogramVec
	CheckoutEvents    *prometheus.CounterVec
	OrdersSettled     prometheus.Counter
	AdminDecisions    *prometheus.CounterVec
	Errors            *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			TGIncomingUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tg_incoming_updates_total",
				Help:      "Total incoming Telegram updates processed.",
			}, []string{"type"}),
			TGOutgoingSends: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tg_outgoing_sends_total",
				Help:      "Total outgoing Telegram sends by type.",
			}, []string{"type"}),
			TGRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tg_api_requests_total",
				Help:      "Total Telegram Bot API requests by method and status.",
			}, []string{"method", "status"}),
			TGLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tg_api_request_duration_seconds",
				Help:      "Latency distribution for Telegram Bot API requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "status"}),
			CheckoutEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkout_events_total",
				Help:      "Checkout lifecycle events (started, completed, cancelled, aborted).",
			}, []string{"event"}),
			OrdersSettled: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_settled_total",
				Help:      "Total paid orders persisted from confirmed payments.",
			}),
			AdminDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admin_decisions_total",
				Help:      "Admin order decisions by outcome.",
			}, []string{"decision"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.TGIncomingUpdates,
			metricsInstance.TGOutgoingSends,
			metricsInstance.TGRequests,
			metricsInstance.TGLatency,
			metricsInstance.CheckoutEvents,
			metricsInstance.OrdersSettled,
			metricsInstance.AdminDecisions,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
