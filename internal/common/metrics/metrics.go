// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SavedQueryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_saved_query_writes_total",
			Help: "Total number of saved-query writes by store and outcome",
		},
		[]string{"store", "outcome"},
	)

	RemoteFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_remote_fallbacks_total",
			Help: "Total number of operations that fell back to the local store",
		},
		[]string{"operation"},
	)

	ExecutionLogAppends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_execution_log_appends_total",
			Help: "Total number of execution log entries written",
		},
	)

	ExecutionLogPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_execution_log_pruned_total",
			Help: "Total number of execution log entries removed by the expiry sweep",
		},
	)

	SearchExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_executions_total",
			Help: "Total number of record searches by backend",
		},
		[]string{"backend"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "search_execution_duration_seconds",
			Help: "Duration of record searches in seconds",
		},
		[]string{"backend"},
	)
)
