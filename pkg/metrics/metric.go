package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	RESULT_FOUND          = "found"
	RESULT_NO_PATH        = "no_path"
	RESULT_INVALID_QUERY  = "invalid_query"
	RESULT_CANCELLED      = "cancelled"
	RESULT_TIME_BUDGET    = "time_budget"
	RESULT_INTERNAL_ERROR = "error"
	RESULT_CACHE_HIT      = "cache_hit"
)

var (
	// pathQueryTotal counts path queries by policy and result.
	pathQueryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridnav_path_queries_total",
		Help: "Total path queries by search policy and result",
	}, []string{"policy", "result"})

	pathQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gridnav_path_query_duration_seconds",
		Help:    "Search time of answered path queries",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"policy"})

	pathExpandedNodes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gridnav_path_expanded_nodes",
		Help:    "Nodes expanded per answered path query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"policy"})

	jumpTablePrecompute = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridnav_jump_table_precompute_seconds",
		Help:    "Time to precompute a jump table",
		Buckets: []float64{0.01, 0.1, 1, 10, 60},
	})
)

// ObserveQuery records one query. elapsed and expanded are only recorded for searches that ran
// to completion.
func ObserveQuery(policy, result string, elapsed time.Duration, expanded int) {
	pathQueryTotal.WithLabelValues(policy, result).Inc()
	if result == RESULT_FOUND || result == RESULT_NO_PATH {
		pathQueryDuration.WithLabelValues(policy).Observe(elapsed.Seconds())
		pathExpandedNodes.WithLabelValues(policy).Observe(float64(expanded))
	}
}

func ObservePrecompute(took time.Duration) {
	jumpTablePrecompute.Observe(took.Seconds())
}

// QueryCount returns the number of queries recorded for policy and result.
func QueryCount(policy, result string) float64 {
	c, err := pathQueryTotal.GetMetricWithLabelValues(policy, result)
	if err != nil {
		return 0
	}
	return counterValue(c)
}
