package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mister-vinster/ml-movies/internal/cache"
	"github.com/mister-vinster/ml-movies/internal/domain"
	"github.com/mister-vinster/ml-movies/internal/metrics"
)

// Engine runs the submit/reset protocol: it moves a (movie, user) pair
// between Unvoted and Voted, applying the registry write and the histogram
// increment in one watch transaction against the counter store.
//
// The engine never retries a conflicting transaction; ErrTxConflict
// surfaces to the caller, who owns the retry policy.
type Engine struct {
	store      domain.CounterStore
	keys       domain.Keys
	registry   *Registry
	aggregator *Aggregator

	records *cache.Cache[domain.VoteRecord]
	counts  *cache.Cache[map[string]int64]
}

// NewEngine wires the registry and aggregator over a shared pair of TTL
// caches. The clock drives cache expiry and is injected for tests.
func NewEngine(store domain.CounterStore, keys domain.Keys, cacheTTL time.Duration, clock clockwork.Clock) *Engine {
	records := cache.New[domain.VoteRecord]("votes", cacheTTL, clock)
	counts := cache.New[map[string]int64]("histograms", cacheTTL, clock)

	return &Engine{
		store:      store,
		keys:       keys,
		registry:   NewRegistry(store, keys, records),
		aggregator: NewAggregator(store, keys, counts),
		records:    records,
		counts:     counts,
	}
}

// StartCacheEviction starts periodic eviction of expired entries on both
// caches. Returns a stop function.
func (e *Engine) StartCacheEviction(interval time.Duration) func() {
	stopRecords := e.records.StartEvictionTimer(interval)
	stopCounts := e.counts.StartEvictionTimer(interval)
	return func() {
		stopRecords()
		stopCounts()
	}
}

// Exporter returns a CSV exporter sharing this engine's aggregator.
func (e *Engine) Exporter() *Exporter {
	return NewExporter(e.aggregator)
}

// Vote returns the caller's current vote record for a movie.
func (e *Engine) Vote(ctx context.Context, movieID, userID string) (domain.VoteRecord, error) {
	return e.registry.Vote(ctx, movieID, userID)
}

// Aggregate returns the merged (baseline + live) histogram for a movie.
func (e *Engine) Aggregate(ctx context.Context, movie domain.Movie) (domain.Aggregate, error) {
	return e.aggregator.Aggregate(ctx, movie)
}

// Submit casts a vote. At least one of rating and recommendation must be
// set. If the user already voted, Submit is a no-op: it returns the
// current aggregate together with ErrAlreadyVoted.
func (e *Engine) Submit(ctx context.Context, movie domain.Movie, userID string, rating domain.RatingBucket, recommendation domain.Recommendation) (domain.Aggregate, error) {
	start := time.Now()

	if rating == 0 && recommendation == "" {
		return domain.Aggregate{}, fmt.Errorf("submit for movie %s carries neither rating nor recommendation", movie.ID)
	}
	if rating != 0 && !rating.Valid() {
		return domain.Aggregate{}, fmt.Errorf("%w: rating value %d", domain.ErrInvalidBucket, rating.Value())
	}
	if recommendation != "" && !recommendation.Valid() {
		return domain.Aggregate{}, fmt.Errorf("%w: recommendation %q", domain.ErrInvalidBucket, recommendation)
	}

	current, err := e.registry.Vote(ctx, movie.ID, userID)
	if err != nil {
		metrics.VotesTotal.WithLabelValues("error").Inc()
		return domain.Aggregate{}, err
	}
	if current.Voted() {
		return e.noop(ctx, movie, "already_voted", domain.ErrAlreadyVoted)
	}

	record := domain.VoteRecord{Rating: rating, Recommendation: recommendation}
	watched, histograms := e.touchedKeys(movie.ID, record)

	err = e.store.Watch(ctx, func(tx domain.Tx) error {
		// Re-read on the watched connection: the cached record above may
		// be stale against a submit that committed in the meantime.
		stored, txErr := e.registry.VoteTx(tx, movie.ID, userID)
		if txErr != nil {
			return txErr
		}
		if stored.Voted() {
			return domain.ErrAlreadyVoted
		}

		e.registry.QueueRecord(tx, movie.ID, userID, record)
		if record.HasRating() {
			tx.HashIncrBy(e.keys.Ratings(movie.ID), record.Rating.Field(), 1)
		}
		if record.HasRecommendation() {
			tx.HashIncrBy(e.keys.Recommendations(movie.ID), record.Recommendation.Field(), 1)
		}
		return nil
	}, watched...)
	if errors.Is(err, domain.ErrAlreadyVoted) {
		e.registry.Invalidate(movie.ID, userID)
		return e.noop(ctx, movie, "already_voted", domain.ErrAlreadyVoted)
	}
	if err != nil {
		return domain.Aggregate{}, e.voteFailed("submit", err)
	}

	e.invalidate(movie.ID, userID, histograms)
	metrics.VotesTotal.WithLabelValues("submitted").Inc()
	metrics.VoteDuration.WithLabelValues("submit").Observe(time.Since(start).Seconds())
	return e.aggregator.Aggregate(ctx, movie)
}

// Reset removes the user's vote. The decremented buckets come from the
// stored record, never from caller input, so a drifted client cannot
// decrement the wrong bucket. Resetting an unvoted user is a no-op: it
// returns the current aggregate together with ErrNothingToReset.
func (e *Engine) Reset(ctx context.Context, movie domain.Movie, userID string) (domain.Aggregate, error) {
	start := time.Now()

	current, err := e.registry.Vote(ctx, movie.ID, userID)
	if err != nil {
		metrics.VotesTotal.WithLabelValues("error").Inc()
		return domain.Aggregate{}, err
	}
	if !current.Voted() {
		return e.noop(ctx, movie, "nothing_to_reset", domain.ErrNothingToReset)
	}

	watched, histograms := e.touchedKeys(movie.ID, current)

	err = e.store.Watch(ctx, func(tx domain.Tx) error {
		stored, txErr := e.registry.VoteTx(tx, movie.ID, userID)
		if txErr != nil {
			return txErr
		}
		if !stored.Voted() {
			return domain.ErrNothingToReset
		}

		// Decrement exactly what the store holds for this user, never
		// what the caller claims was voted.
		e.registry.QueueClear(tx, movie.ID, userID, stored)
		if stored.HasRating() {
			tx.HashIncrBy(e.keys.Ratings(movie.ID), stored.Rating.Field(), -1)
		}
		if stored.HasRecommendation() {
			tx.HashIncrBy(e.keys.Recommendations(movie.ID), stored.Recommendation.Field(), -1)
		}
		return nil
	}, watched...)
	if errors.Is(err, domain.ErrNothingToReset) {
		e.registry.Invalidate(movie.ID, userID)
		return e.noop(ctx, movie, "nothing_to_reset", domain.ErrNothingToReset)
	}
	if err != nil {
		return domain.Aggregate{}, e.voteFailed("reset", err)
	}

	e.invalidate(movie.ID, userID, histograms)
	metrics.VotesTotal.WithLabelValues("reset").Inc()
	metrics.VoteDuration.WithLabelValues("reset").Observe(time.Since(start).Seconds())
	return e.aggregator.Aggregate(ctx, movie)
}

// touchedKeys returns the keys a transaction for this record watches and
// the histogram keys it writes.
func (e *Engine) touchedKeys(movieID string, record domain.VoteRecord) (watched, histograms []string) {
	if record.HasRating() {
		watched = append(watched, e.keys.Rating(movieID), e.keys.Ratings(movieID))
		histograms = append(histograms, e.keys.Ratings(movieID))
	}
	if record.HasRecommendation() {
		watched = append(watched, e.keys.Recommendation(movieID), e.keys.Recommendations(movieID))
		histograms = append(histograms, e.keys.Recommendations(movieID))
	}
	return watched, histograms
}

// invalidate drops every cache entry the transaction wrote, before control
// returns to any reader.
func (e *Engine) invalidate(movieID, userID string, histograms []string) {
	e.registry.Invalidate(movieID, userID)
	e.aggregator.Invalidate(histograms...)
}

// noop records a vote attempt that changed nothing and returns the current
// aggregate together with the sentinel, so callers can answer with state.
func (e *Engine) noop(ctx context.Context, movie domain.Movie, result string, sentinel error) (domain.Aggregate, error) {
	metrics.VotesTotal.WithLabelValues(result).Inc()
	agg, err := e.aggregator.Aggregate(ctx, movie)
	if err != nil {
		return domain.Aggregate{}, err
	}
	return agg, sentinel
}

func (e *Engine) voteFailed(operation string, err error) error {
	if errors.Is(err, domain.ErrTxConflict) {
		metrics.TxConflictsTotal.Inc()
		metrics.VotesTotal.WithLabelValues("conflict").Inc()
		return fmt.Errorf("%s aborted: %w", operation, err)
	}
	metrics.VotesTotal.WithLabelValues("error").Inc()
	return fmt.Errorf("%s failed: %w", operation, err)
}
