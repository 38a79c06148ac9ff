package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store. All sessions live
// under the "session:" key space, distinct from other data in the same
// redis instance.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Create(ctx context.Context, s *Session, ttl time.Duration) error {
	if s.ID == "" {
		return fmt.Errorf("session: missing id")
	}
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(s.ID), data, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	return &s, nil
}

// Update is a whole-record replace with a fresh TTL. Redis SET is
// idempotent, so this is intentionally identical to Create; there is no
// partial-field update path.
func (r *RedisStore) Update(ctx context.Context, s *Session, ttl time.Duration) error {
	return r.Create(ctx, s, ttl)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// Touch slides the record's expiry without a read-modify-write cycle.
// A missing key is not an error; the next Get reports it as absent.
func (r *RedisStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	return r.client.Expire(ctx, r.key(id), ttl).Err()
}
