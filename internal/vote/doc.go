// Package vote implements the vote aggregation engine: the per-user vote
// registry, the baseline-plus-live histogram aggregator, the atomic
// submit/reset protocol, the ranking computation, and the CSV export.
//
// All counter store access goes through a process-local TTL cache; every
// mutating path invalidates the keys it wrote before returning, so readers
// in this process always observe post-write state.
package vote
