package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eye_state_transitions_total",
		Help: "Total number of channel state transitions",
	}, []string{"channel", "to"})

	GatewayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eye_gateway_errors_total",
		Help: "Total number of plugin error codes received",
	}, []string{"code"})

	// UnmappedMessagesTotal counts gateway messages with no transition, by kind ("event" | "error").
	UnmappedMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eye_unmapped_messages_total",
		Help: "Total number of gateway messages that map to no transition",
	}, []string{"channel", "kind"})

	StaleCallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eye_stale_callbacks_total",
		Help: "Total number of offer/answer results discarded after the session moved on",
	}, []string{"channel"})

	GatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eye_gateway_requests_total",
		Help: "Total number of plugin requests sent",
	}, []string{"request"})

	ActiveCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eye_active_calls",
		Help: "Number of channels with media flowing",
	})
)
