package vote

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mister-vinster/ml-movies/internal/cache"
	"github.com/mister-vinster/ml-movies/internal/domain"
)

func newTestAggregator(store *MemoryStore) *Aggregator {
	counts := cache.New[map[string]int64]("histograms", 5*time.Second, clockwork.NewFakeClock())
	return NewAggregator(store, domain.Keys{PostID: "post1"}, counts)
}

func TestAggregateMergesBaselineAndLiveCounts(t *testing.T) {
	store := NewMemoryStore()
	aggregator := newTestAggregator(store)
	ctx := context.Background()

	movie := domain.Movie{ID: "movie1"}
	movie.Baseline.RatingCounts[4] = 3
	movie.Baseline.RecommendCounts[0] = 2

	_, err := store.HashIncrBy(ctx, "post1|movie-movie1|ratings", "five", 2)
	require.NoError(t, err)
	_, err = store.HashIncrBy(ctx, "post1|movie-movie1|recommendations", "recommend_no", 1)
	require.NoError(t, err)

	agg, err := aggregator.Aggregate(ctx, movie)
	require.NoError(t, err)

	assert.Equal(t, int64(5), agg.RatingCount(domain.RatingBucket(5)))
	assert.Equal(t, int64(2), agg.RecommendCount(domain.RecommendYes))
	assert.Equal(t, int64(1), agg.RecommendCount(domain.RecommendNo))
}

func TestAggregateIsIdempotentAcrossReads(t *testing.T) {
	store := NewMemoryStore()
	aggregator := newTestAggregator(store)
	ctx := context.Background()

	movie := domain.Movie{ID: "movie1"}
	_, err := store.HashIncrBy(ctx, "post1|movie-movie1|ratings", "seven", 4)
	require.NoError(t, err)

	first, err := aggregator.Aggregate(ctx, movie)
	require.NoError(t, err)
	second, err := aggregator.Aggregate(ctx, movie)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAverageRating(t *testing.T) {
	// One five and one nine average to seven.
	var agg domain.Aggregate
	agg.RatingCounts[4] = 1
	agg.RatingCounts[8] = 1
	assert.InDelta(t, 7.0, agg.AverageRating(), 1e-9)

	// Recommendations never influence the average.
	agg.RecommendCounts[0] = 100
	assert.InDelta(t, 7.0, agg.AverageRating(), 1e-9)

	assert.Zero(t, domain.Aggregate{}.AverageRating())
}

func TestAggregateRejectsCorruptHistogramField(t *testing.T) {
	store := NewMemoryStore()
	aggregator := newTestAggregator(store)
	ctx := context.Background()

	require.NoError(t, store.HashSet(ctx, "post1|movie-movie1|ratings", "five", "lots"))

	_, err := aggregator.Aggregate(ctx, domain.Movie{ID: "movie1"})
	assert.ErrorIs(t, err, domain.ErrInvalidBucket)
}

func TestAggregateIgnoresUnknownFields(t *testing.T) {
	store := NewMemoryStore()
	aggregator := newTestAggregator(store)
	ctx := context.Background()

	// A field outside the bucket set is never requested, so it cannot
	// leak into the merge.
	require.NoError(t, store.HashSet(ctx, "post1|movie-movie1|ratings", "eleven", "9"))
	_, err := store.HashIncrBy(ctx, "post1|movie-movie1|ratings", "ten", 1)
	require.NoError(t, err)

	agg, err := aggregator.Aggregate(ctx, domain.Movie{ID: "movie1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.TotalRatings())
}
