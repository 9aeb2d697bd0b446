package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// messagesTotal counts wire messages by outcome.
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_messages_total",
		Help: "Total inbound wire messages by result",
	}, []string{"result"})

	// messageDuration tracks end-to-end handling latency, reasoning included.
	messageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parley_message_duration_seconds",
		Help:    "Wire message handling duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// activeConnections gauges open websocket connections.
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parley_active_connections",
		Help: "Currently open websocket connections",
	})

	// activeSessions gauges resident sessions after the last message.
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parley_active_sessions",
		Help: "Sessions resident in the registry",
	})
)
