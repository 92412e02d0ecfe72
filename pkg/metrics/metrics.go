// Package metrics exposes the process-wide Prometheus collectors. Collectors
// are registered on the default registry via promauto and served by the
// /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Upstream gateway call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"gateway", "operation", "status"},
	)

	AgentSelectionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_selection_count",
			Help: "Total number of times each agent was selected to serve a chat turn",
		},
		[]string{"agent"},
	)

	ToolExecutionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_execution_count",
			Help: "Total number of tool executions requested by the model",
		},
		[]string{"agent", "tool"},
	)

	ChatRequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_request_count",
			Help: "Total number of chat requests served",
		},
		[]string{"status"},
	)
)

// ObserveGatewayCall records one upstream call. Status is "ok" or "error".
func ObserveGatewayCall(gateway, operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	GatewayCallDuration.WithLabelValues(gateway, operation, status).Observe(duration.Seconds())
}

func IncrementAgentSelection(agent string) {
	AgentSelectionCount.WithLabelValues(agent).Inc()
}

func IncrementToolExecution(agent, tool string) {
	ToolExecutionCount.WithLabelValues(agent, tool).Inc()
}

func IncrementChatRequest(status string) {
	ChatRequestCount.WithLabelValues(status).Inc()
}
