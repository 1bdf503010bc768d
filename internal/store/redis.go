package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// putScript records first-insertion order in a list alongside the hash,
// atomically, so concurrent writers cannot duplicate an order entry.
var putScript = redis.NewScript(`
	if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 0 then
		redis.call("RPUSH", KEYS[2], ARGV[1])
	end
	redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
	return 1
`)

var deleteScript = redis.NewScript(`
	redis.call("HDEL", KEYS[1], ARGV[1])
	redis.call("LREM", KEYS[2], 1, ARGV[1])
	return 1
`)

// RedisStore keeps records in a Redis hash, with a companion list holding
// keys in insertion order. All keys are namespaced under a prefix so
// multiple applications can share one Redis database.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Addr      string // e.g. "127.0.0.1:6379"
	Password  string // empty if none
	DB        int
	KeyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "giftcard-market"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}, nil
}

func (s *RedisStore) recordsKey() string { return s.keyPrefix + ":records" }
func (s *RedisStore) orderKey() string   { return s.keyPrefix + ":order" }

// Fetch looks up one record by its exact composite key.
func (s *RedisStore) Fetch(ctx context.Context, typeName string, keyParts ...string) ([]byte, bool, error) {
	value, err := s.client.HGet(ctx, s.recordsKey(), QualifiedKey(typeName, keyParts)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch record: %w", err)
	}
	return value, true, nil
}

// Put inserts or replaces the record, preserving first-insertion order.
func (s *RedisStore) Put(ctx context.Context, typeName string, keyParts []string, value []byte) error {
	key := QualifiedKey(typeName, keyParts)
	err := putScript.Run(ctx, s.client, []string{s.recordsKey(), s.orderKey()}, key, value).Err()
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	return nil
}

// Delete removes the record and its order entry. Absent keys are a no-op.
func (s *RedisStore) Delete(ctx context.Context, typeName string, keyParts ...string) error {
	key := QualifiedKey(typeName, keyParts)
	err := deleteScript.Run(ctx, s.client, []string{s.recordsKey(), s.orderKey()}, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Keys enumerates keys in insertion order, optionally scoped to one type.
func (s *RedisStore) Keys(ctx context.Context, typeName string) ([]string, error) {
	keys, err := s.client.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return scopeKeys(keys, typeName), nil
}

// ClearAll removes every record of every type under this store's prefix.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	if err := s.client.Del(ctx, s.recordsKey(), s.orderKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error { return s.client.Close() }
