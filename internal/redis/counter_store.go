package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mister-vinster/ml-movies/internal/domain"
)

// CounterStore implements domain.CounterStore on Redis. Watch maps onto
// WATCH/MULTI/EXEC: reads inside the transaction run on the watched
// connection, queued writes are pipelined and executed atomically, and a
// failed EXEC surfaces as domain.ErrTxConflict.
type CounterStore struct {
	rdb *redis.Client
}

var _ domain.CounterStore = (*CounterStore)(nil)

func NewCounterStore(client *Client) *CounterStore {
	return &CounterStore{rdb: client.Underlying()}
}

func (s *CounterStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get", err)
	}
	return value, true, nil
}

func (s *CounterStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return storeErr("set", err)
	}
	return nil
}

func (s *CounterStore) HashGet(ctx context.Context, key, field string) (string, bool, error) {
	value, err := s.rdb.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("hget", err)
	}
	return value, true, nil
}

func (s *CounterStore) HashMultiGet(ctx context.Context, key string, fields ...string) (map[string]string, error) {
	values, err := s.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, storeErr("hmget", err)
	}

	// HMGET aligns results to the requested fields, nil for absent ones.
	result := make(map[string]string, len(fields))
	for i, raw := range values {
		if raw == nil {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("hmget %s returned %T for field %s", key, raw, fields[i])
		}
		result[fields[i]] = value
	}
	return result, nil
}

func (s *CounterStore) HashSet(ctx context.Context, key, field, value string) error {
	if err := s.rdb.HSet(ctx, key, field, value).Err(); err != nil {
		return storeErr("hset", err)
	}
	return nil
}

func (s *CounterStore) HashIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := s.rdb.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, storeErr("hincrby", err)
	}
	return n, nil
}

func (s *CounterStore) HashDelete(ctx context.Context, key string, fields ...string) error {
	if err := s.rdb.HDel(ctx, key, fields...).Err(); err != nil {
		return storeErr("hdel", err)
	}
	return nil
}

func (s *CounterStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// Watch runs fn under WATCH over the given keys, then executes the queued
// writes in one MULTI/EXEC. No retry on conflict; the caller decides.
func (s *CounterStore) Watch(ctx context.Context, fn func(domain.Tx) error, keys ...string) error {
	var fnErr error

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		rtx := &redisTx{ctx: ctx, tx: tx}
		if err := fn(rtx); err != nil {
			fnErr = err
			return err
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, queued := range rtx.ops {
				queued(pipe)
			}
			return nil
		})
		return err
	}, keys...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return domain.ErrTxConflict
	case fnErr != nil && errors.Is(err, fnErr):
		return err
	default:
		return storeErr("exec", err)
	}
}

type redisTx struct {
	ctx context.Context
	tx  *redis.Tx
	ops []func(redis.Pipeliner)
}

var _ domain.Tx = (*redisTx)(nil)

func (t *redisTx) HashGet(key, field string) (string, bool, error) {
	value, err := t.tx.HGet(t.ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("hget", err)
	}
	return value, true, nil
}

func (t *redisTx) HashSet(key, field, value string) {
	t.ops = append(t.ops, func(pipe redis.Pipeliner) {
		pipe.HSet(t.ctx, key, field, value)
	})
}

func (t *redisTx) HashIncrBy(key, field string, delta int64) {
	t.ops = append(t.ops, func(pipe redis.Pipeliner) {
		pipe.HIncrBy(t.ctx, key, field, delta)
	})
}

func (t *redisTx) HashDelete(key string, fields ...string) {
	t.ops = append(t.ops, func(pipe redis.Pipeliner) {
		pipe.HDel(t.ctx, key, fields...)
	})
}

func storeErr(operation string, err error) error {
	return fmt.Errorf("redis %s failed: %w: %w", operation, domain.ErrStoreUnavailable, err)
}
