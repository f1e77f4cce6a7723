package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

const snapshotKey = "wealth:snapshot"

// CachedStore wraps a primary Store (PostgreSQL) with a Redis cache of the
// serialized snapshot. Saves write through to the primary and refresh the
// cache; loads check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) SaveSnapshot(ctx context.Context, positions []model.Position) error {
	if err := s.primary.SaveSnapshot(ctx, positions); err != nil {
		return err
	}
	s.cacheSnapshot(ctx, positions)
	return nil
}

func (s *CachedStore) LoadSnapshot(ctx context.Context) ([]model.Position, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, snapshotKey).Bytes()
	if err == nil {
		var positions []model.Position
		if json.Unmarshal(data, &positions) == nil {
			return positions, nil
		}
	}

	// Cache miss: read from primary.
	positions, err := s.primary.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheSnapshot(ctx, positions)
	return positions, nil
}

func (s *CachedStore) cacheSnapshot(ctx context.Context, positions []model.Position) {
	if data, err := json.Marshal(positions); err == nil {
		s.rdb.Set(ctx, snapshotKey, data, s.ttl)
	}
}
