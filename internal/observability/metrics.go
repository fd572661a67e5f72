// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Tool metrics
	ToolCallsTotal  *prometheus.CounterVec
	ToolCallLatency *prometheus.HistogramVec

	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	EarlyExitsTotal  prometheus.Counter
	PlannerSteps     *prometheus.HistogramVec

	// Upstream metrics
	RPCCallLatency      *prometheus.HistogramVec
	CircuitBreakerState *prometheus.GaugeVec

	// Service metrics
	TasksTotal    *prometheus.CounterVec
	ActiveStreams prometheus.Gauge

	// Health metrics
	LastSuccessfulAnalysis prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers into a private registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "token_risk_agent"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ToolCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total number of tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),
		ToolCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "call_latency_seconds",
			Help:      "Tool call latency in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"tool"}),

		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analyses by verdict",
		}, []string{"verdict"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "End-to-end analysis duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		EarlyExitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "early_exits_total",
			Help:      "Total number of analyses that skipped deep checks after phase 1",
		}),
		PlannerSteps: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "planner_steps",
			Help:      "Number of planner steps per run",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8},
		}, []string{"planner"}),

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		CircuitBreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open)",
		}, []string{"source"}),

		TasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "tasks_total",
			Help:      "Total number of service tasks by final state",
		}, []string{"state"}),
		ActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "active_streams",
			Help:      "Number of open event streams",
		}),

		LastSuccessfulAnalysis: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last completed analysis",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordToolCall records one tool call outcome and latency.
func RecordToolCall(tool, outcome string, seconds float64) {
	DefaultMetrics.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
	DefaultMetrics.ToolCallLatency.WithLabelValues(tool).Observe(seconds)
}

// RecordAnalysis records a finished analysis.
func RecordAnalysis(verdict string, durationSeconds float64, earlyExit bool, unixTime int64) {
	DefaultMetrics.AnalysesTotal.WithLabelValues(verdict).Inc()
	DefaultMetrics.AnalysisDuration.Observe(durationSeconds)
	if earlyExit {
		DefaultMetrics.EarlyExitsTotal.Inc()
	}
	DefaultMetrics.LastSuccessfulAnalysis.Set(float64(unixTime))
}

// RecordPlannerSteps records the number of steps a planner took.
func RecordPlannerSteps(planner string, steps int) {
	DefaultMetrics.PlannerSteps.WithLabelValues(planner).Observe(float64(steps))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// SetBreakerState records the circuit breaker state of an upstream.
func SetBreakerState(source string, state int) {
	DefaultMetrics.CircuitBreakerState.WithLabelValues(source).Set(float64(state))
}

// RecordTask records a service task reaching a final state.
func RecordTask(state string) {
	DefaultMetrics.TasksTotal.WithLabelValues(state).Inc()
}

// StreamOpened increments the open stream gauge.
func StreamOpened() {
	DefaultMetrics.ActiveStreams.Inc()
}

// StreamClosed decrements the open stream gauge.
func StreamClosed() {
	DefaultMetrics.ActiveStreams.Dec()
}
