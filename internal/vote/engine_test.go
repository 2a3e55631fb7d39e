package vote

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mister-vinster/ml-movies/internal/domain"
)

func newTestEngine() (*Engine, *MemoryStore, *clockwork.FakeClock) {
	store := NewMemoryStore()
	clock := clockwork.NewFakeClock()
	engine := NewEngine(store, domain.Keys{PostID: "post1"}, 5*time.Second, clock)
	return engine, store, clock
}

func testMovie() domain.Movie {
	return domain.Movie{ID: "movie1", Title: "Test Movie"}
}

func TestSubmitRecordsVoteAndIncrementsHistogram(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	agg, err := engine.Submit(ctx, movie, "user1", domain.RatingBucket(7), domain.RecommendYes)
	require.NoError(t, err)

	assert.Equal(t, int64(1), agg.RatingCount(domain.RatingBucket(7)))
	assert.Equal(t, int64(1), agg.RecommendCount(domain.RecommendYes))
	assert.Equal(t, int64(1), agg.TotalRatings())
	assert.InDelta(t, 7.0, agg.AverageRating(), 1e-9)

	raw, ok, err := store.HashGet(ctx, "post1|movie-movie1|rating", "user1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7", raw)

	record, err := engine.Vote(ctx, movie.ID, "user1")
	require.NoError(t, err)
	assert.Equal(t, domain.RatingBucket(7), record.Rating)
	assert.Equal(t, domain.RecommendYes, record.Recommendation)
}

func TestSubmitRatingOnlyLeavesRecommendationUntouched(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Submit(ctx, testMovie(), "user1", domain.RatingBucket(4), "")
	require.NoError(t, err)

	_, ok, err := store.HashGet(ctx, "post1|movie-movie1|recommendation", "user1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitTwiceIsNoop(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	first, err := engine.Submit(ctx, movie, "user1", domain.RatingBucket(7), "")
	require.NoError(t, err)

	second, err := engine.Submit(ctx, movie, "user1", domain.RatingBucket(3), "")
	require.ErrorIs(t, err, domain.ErrAlreadyVoted)

	// The second submit observed state, it did not change it.
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), second.TotalRatings())
	assert.Equal(t, int64(0), second.RatingCount(domain.RatingBucket(3)))
}

func TestResetUnvotedUserIsNoop(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()

	agg, err := engine.Reset(ctx, testMovie(), "user1")
	require.ErrorIs(t, err, domain.ErrNothingToReset)
	assert.Equal(t, int64(0), agg.TotalRatings())
}

func TestSubmitResetRoundTripRestoresCounts(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()
	movie.Baseline.RatingCounts[6] = 10

	before, err := engine.Aggregate(ctx, movie)
	require.NoError(t, err)

	_, err = engine.Submit(ctx, movie, "user1", domain.RatingBucket(7), domain.RecommendNo)
	require.NoError(t, err)

	after, err := engine.Reset(ctx, movie, "user1")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// The pair is Unvoted again, so a fresh submit must succeed.
	agg, err := engine.Submit(ctx, movie, "user1", domain.RatingBucket(2), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.RatingCount(domain.RatingBucket(2)))
}

func TestResetDecrementsStoredBucketsOnly(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	_, err := engine.Submit(ctx, movie, "user1", domain.RatingBucket(9), "")
	require.NoError(t, err)

	_, err = engine.Reset(ctx, movie, "user1")
	require.NoError(t, err)

	raw, ok, err := store.HashGet(ctx, "post1|movie-movie1|ratings", "nine")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0", raw)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	_, err := engine.Submit(ctx, movie, "user1", 0, "")
	assert.Error(t, err)

	_, err = engine.Submit(ctx, movie, "user1", domain.RatingBucket(11), "")
	assert.ErrorIs(t, err, domain.ErrInvalidBucket)

	_, err = engine.Submit(ctx, movie, "user1", 0, domain.Recommendation("maybe"))
	assert.ErrorIs(t, err, domain.ErrInvalidBucket)
}

func TestSubmitSurfacesConflictWithoutRetry(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	// Another client bumps the watched histogram between read and exec.
	store.watchHook = func() {
		store.watchHook = nil
		_, err := store.HashIncrBy(ctx, "post1|movie-movie1|ratings", "one", 1)
		require.NoError(t, err)
	}

	_, err := engine.Submit(ctx, movie, "user1", domain.RatingBucket(7), "")
	require.ErrorIs(t, err, domain.ErrTxConflict)

	// Nothing was written for the user, so the retry succeeds cleanly.
	agg, err := engine.Submit(ctx, movie, "user1", domain.RatingBucket(7), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.RatingCount(domain.RatingBucket(7)))
}

func TestSubmitDetectsConcurrentVoteBehindStaleCache(t *testing.T) {
	engine, store, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	// Warm the record cache while the pair is still unvoted.
	_, err := engine.Vote(ctx, movie.ID, "user1")
	require.NoError(t, err)

	// Another instance commits a vote for the same pair directly.
	require.NoError(t, store.HashSet(ctx, "post1|movie-movie1|rating", "user1", "5"))
	_, err = store.HashIncrBy(ctx, "post1|movie-movie1|ratings", "five", 1)
	require.NoError(t, err)

	agg, err := engine.Submit(ctx, movie, "user1", domain.RatingBucket(7), "")
	require.ErrorIs(t, err, domain.ErrAlreadyVoted)
	assert.Equal(t, int64(1), agg.RatingCount(domain.RatingBucket(5)))
	assert.Equal(t, int64(0), agg.RatingCount(domain.RatingBucket(7)))
}

func TestConcurrentSubmitsForOneUserCountOnce(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Submit(ctx, movie, "user1", domain.RatingBucket(7), "")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		losing := errors.Is(err, domain.ErrAlreadyVoted) || errors.Is(err, domain.ErrTxConflict)
		assert.True(t, losing, "unexpected error: %v", err)
	}
	assert.Equal(t, 1, successes)

	agg, err := engine.Aggregate(ctx, movie)
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.TotalRatings())
}

func TestConcurrentSubmitsForDistinctUsersAllLand(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	const users = 10
	var wg sync.WaitGroup

	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := "user" + strconv.Itoa(i)
			for {
				_, err := engine.Submit(ctx, movie, userID, domain.RatingBucket(5), "")
				if err == nil {
					return
				}
				// Conflicts between distinct users are expected; retry.
				require.ErrorIs(t, err, domain.ErrTxConflict)
			}
		}(i)
	}
	wg.Wait()

	agg, err := engine.Aggregate(ctx, movie)
	require.NoError(t, err)
	assert.Equal(t, int64(users), agg.RatingCount(domain.RatingBucket(5)))
}

func TestCachesReflectWritesImmediately(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	movie := testMovie()

	// Warm both caches.
	_, err := engine.Aggregate(ctx, movie)
	require.NoError(t, err)
	_, err = engine.Vote(ctx, movie.ID, "user1")
	require.NoError(t, err)

	_, err = engine.Submit(ctx, movie, "user1", domain.RatingBucket(8), domain.RecommendConditional)
	require.NoError(t, err)

	// No TTL has elapsed, yet reads see the new state.
	agg, err := engine.Aggregate(ctx, movie)
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.RatingCount(domain.RatingBucket(8)))

	record, err := engine.Vote(ctx, movie.ID, "user1")
	require.NoError(t, err)
	assert.True(t, record.Voted())
}
