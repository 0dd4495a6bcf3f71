package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eventure/identity-api/internal/config"
	"github.com/eventure/identity-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from config. Connection errors surface on
// first use, not here; callers may Ping to fail fast.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Store is the ephemeral session store backing the registration flow.
// Values are JSON-encoded; every key carries a TTL enforced by Redis itself.
// Put on an existing key overwrites value and TTL atomically.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

// Get reads and decodes the value at key into out.
// A missing or expired key yields domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string, out interface{}) error {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("key %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Consume atomically reads and deletes the value at key (GETDEL), decoding it
// into out. Of any number of concurrent consumers exactly one receives the
// value; the rest get domain.ErrNotFound. The key's remaining TTL, observed
// just before consumption, is returned so callers can restore the record if
// downstream work fails.
func (s *Store) Consume(ctx context.Context, key string, out interface{}) (time.Duration, error) {
	pipe := s.client.Pipeline()
	ttlCmd := pipe.TTL(ctx, key)
	getCmd := pipe.GetDel(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	b, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("key %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return ttl, json.Unmarshal(b, out)
}
