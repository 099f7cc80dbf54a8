package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store claims checkout idempotency keys in Redis so that a repeated
// submission carrying the same key is rejected before any order work
// happens.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Claim marks the key as seen. Returns false when an earlier request
// already claimed it.
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "idem:checkout:"+key, "1", s.ttl).Result()
}

// Release frees a claimed key so the client may retry with it after
// a failed checkout.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, "idem:checkout:"+key).Err()
}
