package domain

import "context"

// Tx queues mutating operations inside a watch transaction. Queued
// operations are applied atomically by the store when the transaction
// executes, and only if none of the watched keys changed in between.
//
// HashGet reads immediately, on the watched connection. Decisions based
// on such a read stay sound: a write that would invalidate them aborts
// the transaction.
type Tx interface {
	HashGet(key, field string) (string, bool, error)
	HashSet(key, field, value string)
	HashIncrBy(key, field string, delta int64)
	HashDelete(key string, fields ...string)
}

// CounterStore is the durable hash-map-per-key storage the engine runs
// against. Absent values are reported as ok=false, never as errors.
//
// Watch runs fn under optimistic concurrency control over the given keys:
// operations queued on the Tx are applied atomically only if none of the
// watched keys changed since the watch began. A concurrent modification
// discards the transaction and returns ErrTxConflict. The store does not
// retry; that decision belongs to the caller.
type CounterStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error

	HashGet(ctx context.Context, key, field string) (string, bool, error)
	// HashMultiGet returns the present fields only; absent fields are
	// simply missing from the result map.
	HashMultiGet(ctx context.Context, key string, fields ...string) (map[string]string, error)
	HashSet(ctx context.Context, key, field, value string) error
	// HashIncrBy treats an absent field as 0. Delta may be negative.
	HashIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HashDelete(ctx context.Context, key string, fields ...string) error

	Watch(ctx context.Context, fn func(Tx) error, keys ...string) error

	Ping(ctx context.Context) error
}
