// Package redis provides the Redis-backed counter store: plain key and
// hash operations plus watch/multi/exec optimistic transactions. All
// client traffic runs through a metrics hook and a circuit breaker hook.
package redis
