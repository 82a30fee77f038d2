package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for BlocksAnalyzed.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	// BlocksAnalyzed tracks analysis calls per chain and outcome
	BlocksAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracer_blocks_analyzed_total",
			Help: "Total number of block analyses by outcome",
		},
		[]string{"chain", "outcome"},
	)

	// EventsMatched tracks events returned to callers
	EventsMatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracer_events_matched_total",
			Help: "Total number of events that passed the filter",
		},
		[]string{"chain"},
	)

	// TransfersMatched tracks transfers returned to callers
	TransfersMatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracer_transfers_matched_total",
			Help: "Total number of transfers that passed the filter",
		},
		[]string{"chain"},
	)

	// AnalyzeDuration tracks end-to-end analysis latency
	AnalyzeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracer_analyze_duration_seconds",
			Help:    "Block analysis latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain"},
	)

	// RPCCallsTotal tracks node calls per chain and method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracer_rpc_calls_total",
			Help: "Total number of chain client calls",
		},
		[]string{"chain", "method"},
	)

	// RPCErrorsTotal tracks failed node calls
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracer_rpc_errors_total",
			Help: "Total number of chain client errors",
		},
		[]string{"chain", "method"},
	)

	// RPCLatency tracks node call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracer_rpc_latency_seconds",
			Help:    "Chain client call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain", "method"},
	)

	// CacheHits tracks receipt/block cache hits
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracer_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"chain", "kind"},
	)

	// CacheMisses tracks receipt/block cache misses
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracer_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"chain", "kind"},
	)
)
