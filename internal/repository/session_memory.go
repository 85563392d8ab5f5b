package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionMemoryStore keeps short-lived conversational facts per session.
// Every write (re)arms the entry's expiry; expired entries are never
// returned.
type SessionMemoryStore interface {
	Store(ctx context.Context, sessionID, key, value string, ttl time.Duration) error
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	GetAll(ctx context.Context, sessionID string) (map[string]string, error)
	Delete(ctx context.Context, sessionID, key string) (bool, error)
	DeleteAll(ctx context.Context, sessionID string) (int, error)
}

type redisSessionMemory struct {
	client *redis.Client
}

// NewRedisSessionMemory builds the redis-backed store. Expiry rides on the
// native key TTL.
func NewRedisSessionMemory(client *redis.Client) SessionMemoryStore {
	return &redisSessionMemory{client: client}
}

func memoryKey(sessionID, key string) string {
	return fmt.Sprintf("memory:%s:%s", sessionID, key)
}

func (r *redisSessionMemory) Store(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, memoryKey(sessionID, key), value, ttl).Err()
}

func (r *redisSessionMemory) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, memoryKey(sessionID, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *redisSessionMemory) GetAll(ctx context.Context, sessionID string) (map[string]string, error) {
	prefix := fmt.Sprintf("memory:%s:", sessionID)
	out := make(map[string]string)

	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		val, err := r.client.Get(ctx, fullKey).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[strings.TrimPrefix(fullKey, prefix)] = val
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *redisSessionMemory) Delete(ctx context.Context, sessionID, key string) (bool, error) {
	n, err := r.client.Del(ctx, memoryKey(sessionID, key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisSessionMemory) DeleteAll(ctx context.Context, sessionID string) (int, error) {
	prefix := fmt.Sprintf("memory:%s:", sessionID)
	var keys []string

	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := r.client.Del(ctx, keys...).Result()
	return int(n), err
}
