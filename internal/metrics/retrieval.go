package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "mindrecall"

// Retrieval Prometheus metrics.
var (
	// RetrievalBranchTotal counts branch outcomes: source is lexical/embedding/vector,
	// outcome is ok/degraded.
	RetrievalBranchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_branch_total",
			Help:      "Retrieval branch outcomes",
		},
		[]string{"source", "outcome"},
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end context retrieval duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
	)

	RetrievalContextSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_context_passages",
			Help:      "Number of passages in the returned context bundle",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	// VectorIndexState is 0 uninitialized, 1 ready, 2 unavailable.
	VectorIndexState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vector_index_state",
			Help:      "Vector index client state (0 uninitialized, 1 ready, 2 unavailable)",
		},
	)

	ChatRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_replies_total",
			Help:      "Chat replies by outcome (generated/fallback)",
		},
		[]string{"outcome"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval, vector index and chat metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalBranchTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalContextSize)
	prometheus.MustRegister(VectorIndexState)
	prometheus.MustRegister(ChatRepliesTotal)
	retrievalMetricsRegistered = true
}

// ObserveBranch records a single branch outcome.
func ObserveBranch(source string, degraded bool) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	RetrievalBranchTotal.WithLabelValues(source, outcome).Inc()
}
