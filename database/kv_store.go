package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStore is the persisted string key-value store the storefront keeps its
// client-side state in (cart, auth token, session user).
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// RedisKVStore keeps values in Redis. A non-zero ttl is refreshed on every write.
type RedisKVStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKVStore(client *redis.Client, ttl time.Duration) *RedisKVStore {
	return &RedisKVStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *RedisKVStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// MemoryKVStore is a process-local store, used for development and tests.
type MemoryKVStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{values: make(map[string]string)}
}

func (s *MemoryKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok, nil
}

func (s *MemoryKVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryKVStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
