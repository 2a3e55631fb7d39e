// Package catalog loads and saves the configuration snapshot: the movie
// list with baseline counts, the moderator list, and the image reference
// map. The engine treats snapshots as immutable; editing replaces the
// whole snapshot.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/mister-vinster/ml-movies/internal/cache"
	"github.com/mister-vinster/ml-movies/internal/domain"
)

const snapshotCacheKey = "snapshot"

// ErrNotModerator rejects a save by a user outside the moderator list.
var ErrNotModerator = errors.New("user is not a moderator")

// Snapshot is one immutable configuration state.
type Snapshot struct {
	Mods   []string
	Movies []domain.Movie
	Refs   map[string]string
}

// IsModerator reports whether userID is on the snapshot's moderator list.
func (s *Snapshot) IsModerator(userID string) bool {
	for _, mod := range s.Mods {
		if mod == userID {
			return true
		}
	}
	return false
}

// Movie finds a movie by id.
func (s *Snapshot) Movie(id string) (domain.Movie, bool) {
	for _, m := range s.Movies {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Movie{}, false
}

// Service reads and writes snapshots through the counter store, with a
// TTL cache in front so every request does not refetch the catalog.
type Service struct {
	store     domain.CounterStore
	keys      domain.Keys
	snapshots *cache.Cache[*Snapshot]
}

func NewService(store domain.CounterStore, keys domain.Keys, snapshots *cache.Cache[*Snapshot]) *Service {
	return &Service{store: store, keys: keys, snapshots: snapshots}
}

// Load returns the current snapshot. Before any configuration has been
// saved it returns the first-run placeholder so the app renders something.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.snapshots.Get(snapshotCacheKey); ok {
		return snap, nil
	}

	raw, ok, err := s.store.Get(ctx, s.keys.Configs())
	if err != nil {
		return nil, fmt.Errorf("failed to read configs: %w", err)
	}
	if !ok {
		return firstRunSnapshot(), nil
	}

	snap, err := ParseSnapshot([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("stored configs are invalid: %w", err)
	}

	s.snapshots.Set(snapshotCacheKey, snap)
	return snap, nil
}

// Save validates and persists a snapshot, replacing the previous one. Only
// moderators of the current snapshot may save; the very first save is open
// to the given actor, who becomes a moderator by inclusion in the payload.
func (s *Service) Save(ctx context.Context, raw []byte, actorID string) (*Snapshot, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(current.Mods) > 0 && !current.IsModerator(actorID) {
		return nil, fmt.Errorf("save configs: %w", ErrNotModerator)
	}

	snap, err := ParseSnapshot(raw)
	if err != nil {
		return nil, err
	}

	// Store the document as the moderator wrote it; parsing already
	// proved it valid, and keeping shorthand image refs keeps it editable.
	if err := s.store.Set(ctx, s.keys.Configs(), string(raw)); err != nil {
		return nil, fmt.Errorf("failed to write configs: %w", err)
	}

	// The snapshot changed; the next read must not see the old one.
	s.snapshots.Invalidate(snapshotCacheKey)
	return snap, nil
}

// Raw returns the stored configuration document verbatim, or ok=false
// before the first save.
func (s *Service) Raw(ctx context.Context) (string, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.keys.Configs())
	if err != nil {
		return "", false, fmt.Errorf("failed to read configs: %w", err)
	}
	return raw, ok, nil
}

// firstRunSnapshot is the fixture shown before any configuration exists.
func firstRunSnapshot() *Snapshot {
	return &Snapshot{
		Movies: []domain.Movie{{ID: "id", Title: "title"}},
	}
}
