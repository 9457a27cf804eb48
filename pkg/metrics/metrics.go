// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallConnectionsActive tracks active call websocket connections.
	CallConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_call_connections_active",
			Help: "Number of active call connections",
		},
	)

	// InboundEventsTotal tracks inbound events by interaction type.
	InboundEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_inbound_events_total",
			Help: "Total inbound events received over call connections",
		},
		[]string{"interaction_type"},
	)

	// FragmentsTotal tracks response fragments emitted to the peer.
	FragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_response_fragments_total",
			Help: "Total response fragments sent",
		},
		[]string{"complete"},
	)

	// GenerationDuration tracks generation cycle duration by outcome.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_generation_duration_seconds",
			Help:    "Generation cycle duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"model", "outcome"},
	)

	// GenerationsSuperseded tracks generations abandoned for a newer response id.
	GenerationsSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_generations_superseded_total",
			Help: "Generations abandoned because a newer interaction request started",
		},
	)

	// ToolInvocations tracks tool calls by name and status.
	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_tool_invocations_total",
			Help: "Tool invocations dispatched by the response engine",
		},
		[]string{"tool", "status"},
	)

	// ToolDuration tracks tool invocation duration.
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_tool_duration_seconds",
			Help:    "Tool invocation duration",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"tool"},
	)

	// HeartbeatsTotal tracks heartbeat frames sent.
	HeartbeatsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_heartbeats_total",
			Help: "Heartbeat frames sent to peers",
		},
	)

	// RequestDuration tracks HTTP request duration on the plain endpoints.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// CallSummariesTotal tracks call summary persistence outcomes.
	CallSummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_call_summaries_total",
			Help: "Call summary persistence attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records one HTTP request.
func RecordRequest(method, path, status string, seconds float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

// RecordGeneration records metrics for one generation cycle.
func RecordGeneration(model, outcome string, seconds float64) {
	GenerationDuration.WithLabelValues(model, outcome).Observe(seconds)
}

// RecordToolInvocation records metrics for one tool call.
func RecordToolInvocation(tool, status string, seconds float64) {
	ToolInvocations.WithLabelValues(tool, status).Inc()
	ToolDuration.WithLabelValues(tool).Observe(seconds)
}

// RecordFragment records an emitted response fragment.
func RecordFragment(complete bool) {
	if complete {
		FragmentsTotal.WithLabelValues("true").Inc()
	} else {
		FragmentsTotal.WithLabelValues("false").Inc()
	}
}
