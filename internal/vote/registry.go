package vote

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mister-vinster/ml-movies/internal/cache"
	"github.com/mister-vinster/ml-movies/internal/domain"
)

// Registry tracks, per (movie, user), whether a vote has been cast and its
// value. Reads go through the cache; writes are queued on the caller's
// transaction so they apply atomically with the histogram update.
type Registry struct {
	store   domain.CounterStore
	keys    domain.Keys
	records *cache.Cache[domain.VoteRecord]
}

func NewRegistry(store domain.CounterStore, keys domain.Keys, records *cache.Cache[domain.VoteRecord]) *Registry {
	return &Registry{store: store, keys: keys, records: records}
}

func (r *Registry) cacheKey(movieID, userID string) string {
	return r.keys.Rating(movieID) + "|" + userID
}

// Vote returns the user's current vote record for a movie. An empty record
// means the user has not voted.
func (r *Registry) Vote(ctx context.Context, movieID, userID string) (domain.VoteRecord, error) {
	ck := r.cacheKey(movieID, userID)
	if record, ok := r.records.Get(ck); ok {
		return record, nil
	}

	record, err := r.record(movieID, userID, func(key, field string) (string, bool, error) {
		return r.store.HashGet(ctx, key, field)
	})
	if err != nil {
		return domain.VoteRecord{}, err
	}

	r.records.Set(ck, record)
	return record, nil
}

// VoteTx re-reads the record inside a watch transaction, bypassing the
// cache. The read runs on the watched connection, so a concurrent write to
// the record aborts the transaction instead of slipping past a stale check.
func (r *Registry) VoteTx(tx domain.Tx, movieID, userID string) (domain.VoteRecord, error) {
	return r.record(movieID, userID, tx.HashGet)
}

func (r *Registry) record(movieID, userID string, read func(key, field string) (string, bool, error)) (domain.VoteRecord, error) {
	var record domain.VoteRecord

	raw, ok, err := read(r.keys.Rating(movieID), userID)
	if err != nil {
		return domain.VoteRecord{}, fmt.Errorf("failed to read rating for movie %s: %w", movieID, err)
	}
	if ok {
		value, convErr := strconv.Atoi(raw)
		if convErr != nil {
			slog.Error("Stored rating is not an integer", "movie_id", movieID, "raw", raw)
			return domain.VoteRecord{}, fmt.Errorf("%w: stored rating %q", domain.ErrInvalidBucket, raw)
		}
		bucket, bucketErr := domain.RatingBucketFromValue(value)
		if bucketErr != nil {
			slog.Error("Stored rating outside bucket set", "movie_id", movieID, "value", value)
			return domain.VoteRecord{}, bucketErr
		}
		record.Rating = bucket
	}

	raw, ok, err = read(r.keys.Recommendation(movieID), userID)
	if err != nil {
		return domain.VoteRecord{}, fmt.Errorf("failed to read recommendation for movie %s: %w", movieID, err)
	}
	if ok {
		choice, parseErr := domain.ParseRecommendation(raw)
		if parseErr != nil {
			slog.Error("Stored recommendation outside bucket set", "movie_id", movieID, "raw", raw)
			return domain.VoteRecord{}, parseErr
		}
		record.Recommendation = choice
	}

	return record, nil
}

// QueueRecord queues the write of the fields present on the record. Fields
// the record does not carry are never touched.
func (r *Registry) QueueRecord(tx domain.Tx, movieID, userID string, record domain.VoteRecord) {
	if record.HasRating() {
		tx.HashSet(r.keys.Rating(movieID), userID, strconv.Itoa(record.Rating.Value()))
	}
	if record.HasRecommendation() {
		tx.HashSet(r.keys.Recommendation(movieID), userID, string(record.Recommendation))
	}
}

// QueueClear queues the deletion of the fields present on the record.
func (r *Registry) QueueClear(tx domain.Tx, movieID, userID string, record domain.VoteRecord) {
	if record.HasRating() {
		tx.HashDelete(r.keys.Rating(movieID), userID)
	}
	if record.HasRecommendation() {
		tx.HashDelete(r.keys.Recommendation(movieID), userID)
	}
}

// Invalidate drops the cached record for a (movie, user) pair. Called
// synchronously by every write path that touches the pair.
func (r *Registry) Invalidate(movieID, userID string) {
	r.records.Invalidate(r.cacheKey(movieID, userID))
}
