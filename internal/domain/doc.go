// Package domain holds the core types of the vote aggregation engine:
// movies, vote records, rating and recommendation buckets, aggregates,
// ranking filters, and the counter store contract everything is built on.
package domain
