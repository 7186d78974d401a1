// Package dedup is the persistent at-most-once gate for reminder keys.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "dedup:"

// Store marks reminder keys as fired. Backed by Redis so marks survive
// process restarts.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore creates a dedup store. ttl is how long fired keys are retained;
// zero keeps them forever.
func NewStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// MarkOnce atomically checks and marks a reminder key.
// Returns true if this is the FIRST time the key is seen — the caller owns
// delivery for it. Returns false if the reminder already fired.
func (s *Store) MarkOnce(ctx context.Context, key string) bool {
	ok, err := s.rdb.SetNX(ctx, keyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		// Redis down? Fail open: a duplicate reminder beats a missed dose.
		if s.logger != nil {
			s.logger.Warn("Redis dedup check failed, allowing delivery",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && s.logger != nil {
		s.logger.Debug("Skipped already-fired reminder",
			zap.String("key", key),
		)
	}

	return ok
}

// Unmark releases a key so a later tick can retry it. Used when the
// notification write fails after the key was claimed.
func (s *Store) Unmark(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}

// Has reports whether a key has already fired, without claiming it.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
