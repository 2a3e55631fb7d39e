package vote

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/mister-vinster/ml-movies/internal/domain"
)

// MemoryStore is an in-process counter store for single-instance mode and
// tests. Watch semantics are real: every key carries a version counter and
// a transaction is discarded with ErrTxConflict when a watched key changed
// between watch and exec.
type MemoryStore struct {
	mu       sync.Mutex
	strings  map[string]string
	hashes   map[string]map[string]string
	versions map[string]uint64

	// watchHook runs between version snapshot and apply. Tests use it to
	// interleave a conflicting write.
	watchHook func()
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		strings:  make(map[string]string),
		hashes:   make(map[string]map[string]string),
		versions: make(map[string]uint64),
	}
}

var _ domain.CounterStore = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.strings[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	s.versions[key]++
	return nil
}

func (s *MemoryStore) HashGet(_ context.Context, key, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.hashes[key][field]
	return v, ok, nil
}

func (s *MemoryStore) HashMultiGet(_ context.Context, key string, fields ...string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := s.hashes[key][f]; ok {
			result[f] = v
		}
	}
	return result, nil
}

func (s *MemoryStore) HashSet(_ context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashSetLocked(key, field, value)
	return nil
}

func (s *MemoryStore) HashIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hashIncrLocked(key, field, delta)
}

func (s *MemoryStore) HashDelete(_ context.Context, key string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashDeleteLocked(key, fields...)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) hashSetLocked(key, field, value string) {
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	h[field] = value
	s.versions[key]++
}

func (s *MemoryStore) hashIncrLocked(key, field string, delta int64) (int64, error) {
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	var current int64
	if raw, ok := h[field]; ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("hash field %s.%s is not an integer: %w", key, field, err)
		}
		current = parsed
	}
	current += delta
	h[field] = strconv.FormatInt(current, 10)
	s.versions[key]++
	return current, nil
}

func (s *MemoryStore) hashDeleteLocked(key string, fields ...string) {
	h, ok := s.hashes[key]
	if !ok {
		return
	}
	for _, f := range fields {
		delete(h, f)
	}
	s.versions[key]++
}

type memoryOp struct {
	kind   string // "hset", "hincr", "hdel"
	key    string
	field  string
	value  string
	delta  int64
	fields []string
}

type memoryTx struct {
	store *MemoryStore
	ops   []memoryOp
}

var _ domain.Tx = (*memoryTx)(nil)

func (t *memoryTx) HashGet(key, field string) (string, bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	h, ok := t.store.hashes[key]
	if !ok {
		return "", false, nil
	}
	value, ok := h[field]
	return value, ok, nil
}

func (t *memoryTx) HashSet(key, field, value string) {
	t.ops = append(t.ops, memoryOp{kind: "hset", key: key, field: field, value: value})
}

func (t *memoryTx) HashIncrBy(key, field string, delta int64) {
	t.ops = append(t.ops, memoryOp{kind: "hincr", key: key, field: field, delta: delta})
}

func (t *memoryTx) HashDelete(key string, fields ...string) {
	t.ops = append(t.ops, memoryOp{kind: "hdel", key: key, fields: fields})
}

func (s *MemoryStore) Watch(_ context.Context, fn func(domain.Tx) error, keys ...string) error {
	s.mu.Lock()
	snapshot := make(map[string]uint64, len(keys))
	for _, k := range keys {
		snapshot[k] = s.versions[k]
	}
	s.mu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	if s.watchHook != nil {
		s.watchHook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		if s.versions[k] != snapshot[k] {
			return domain.ErrTxConflict
		}
	}

	for _, op := range tx.ops {
		switch op.kind {
		case "hset":
			s.hashSetLocked(op.key, op.field, op.value)
		case "hincr":
			if _, err := s.hashIncrLocked(op.key, op.field, op.delta); err != nil {
				return err
			}
		case "hdel":
			s.hashDeleteLocked(op.key, op.fields...)
		}
	}
	return nil
}
