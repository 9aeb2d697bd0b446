package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// toolExecutions counts executions per tool, successes and failures both.
	toolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_tool_executions_total",
		Help: "Tool executions by tool name",
	}, []string{"tool"})

	// toolErrors counts failed executions per tool.
	toolErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_tool_errors_total",
		Help: "Failed tool executions by tool name",
	}, []string{"tool"})
)
