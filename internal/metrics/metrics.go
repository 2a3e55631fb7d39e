package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counter Store Metrics
var (
	// StoreOpsTotal tracks total counter store operations by operation and status
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total counter store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// StoreOpDuration tracks counter store operation latency in seconds
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Counter store operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// StoreConnectionErrors tracks counter store connection errors
	StoreConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_connection_errors_total",
			Help: "Total counter store connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Vote Processing Metrics
var (
	// VotesTotal tracks vote operations by result
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_total",
			Help: "Total vote operations by result (submitted/reset/already_voted/nothing_to_reset/conflict/error)",
		},
		[]string{"result"},
	)

	// VoteDuration tracks submit/reset latency
	VoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vote_duration_seconds",
			Help:    "Submit/reset operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"operation"},
	)

	// TxConflictsTotal tracks optimistic transaction conflicts surfaced to callers
	TxConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tx_conflicts_total",
			Help: "Total optimistic lock failures surfaced to callers",
		},
	)
)

// Cache Metrics
var (
	// CacheHits tracks cache hits by cache name
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits by cache",
		},
		[]string{"cache"},
	)

	// CacheMisses tracks cache misses (absent or expired) by cache name
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses by cache",
		},
		[]string{"cache"},
	)

	// CacheEvictions tracks expired entries evicted by cache name
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total expired cache entries evicted by cache",
		},
		[]string{"cache"},
	)

	// CacheSize tracks current number of entries by cache name
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cache entries by cache",
		},
		[]string{"cache"},
	)
)

// HTTP Request Metrics
// Note: http_errors_total{type} is provided by the internal/errors package.
