// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_messages_received_total",
			Help: "Total number of inbound webhook messages accepted",
		},
		[]string{"step"},
	)

	RepliesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_replies_sent_total",
			Help: "Total number of outbound channel messages sent",
		},
		[]string{"status"},
	)

	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_orders_created_total",
			Help: "Total number of orders created against the dispatch API",
		},
	)

	DispatchDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_dispatch_dedup_total",
			Help: "Total number of dispatch triggers answered from the dedup cache",
		},
	)

	DispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_dispatch_failures_total",
			Help: "Total number of failed dispatch handlings by failure kind",
		},
		[]string{"kind"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bridge_request_duration_seconds",
			Help: "Duration of inbound request handling in seconds",
		},
		[]string{"path"},
	)
)
