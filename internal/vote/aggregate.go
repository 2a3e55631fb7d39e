package vote

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mister-vinster/ml-movies/internal/cache"
	"github.com/mister-vinster/ml-movies/internal/domain"
)

// Aggregator merges a movie's static baseline counts with the live
// increment hashes in the counter store. Live reads go through the cache,
// keyed by the store hash key, so repeated reads within the TTL cost one
// round trip.
type Aggregator struct {
	store  domain.CounterStore
	keys   domain.Keys
	counts *cache.Cache[map[string]int64]
}

func NewAggregator(store domain.CounterStore, keys domain.Keys, counts *cache.Cache[map[string]int64]) *Aggregator {
	return &Aggregator{store: store, keys: keys, counts: counts}
}

// live returns the live increments for one histogram hash. Absent fields
// stay absent from the map, keeping the merge baseline-exact for buckets
// that never saw a live vote.
func (a *Aggregator) live(ctx context.Context, key string, fields []string) (map[string]int64, error) {
	if m, ok := a.counts.Get(key); ok {
		return m, nil
	}

	raw, err := a.store.HashMultiGet(ctx, key, fields...)
	if err != nil {
		return nil, fmt.Errorf("failed to read histogram %s: %w", key, err)
	}

	m := make(map[string]int64, len(raw))
	for field, value := range raw {
		n, convErr := strconv.ParseInt(value, 10, 64)
		if convErr != nil {
			slog.Error("Histogram field is not an integer", "key", key, "field", field, "raw", value)
			return nil, fmt.Errorf("%w: histogram field %s=%q", domain.ErrInvalidBucket, field, value)
		}
		m[field] = n
	}

	a.counts.Set(key, m)
	return m, nil
}

// Aggregate returns the merged (baseline + live) counts for a movie. The
// merge is order-independent and idempotent: repeated reads without
// intervening writes yield identical results.
func (a *Aggregator) Aggregate(ctx context.Context, movie domain.Movie) (domain.Aggregate, error) {
	agg := movie.Baseline

	ratings, err := a.live(ctx, a.keys.Ratings(movie.ID), domain.RatingFields())
	if err != nil {
		return domain.Aggregate{}, err
	}
	for i, field := range domain.RatingFields() {
		agg.RatingCounts[i] += ratings[field]
	}

	recommendations, err := a.live(ctx, a.keys.Recommendations(movie.ID), domain.RecommendationFields())
	if err != nil {
		return domain.Aggregate{}, err
	}
	for i, field := range domain.RecommendationFields() {
		agg.RecommendCounts[i] += recommendations[field]
	}

	return agg, nil
}

// Invalidate drops the cached live counts for the given histogram keys.
func (a *Aggregator) Invalidate(keys ...string) {
	a.counts.Invalidate(keys...)
}
