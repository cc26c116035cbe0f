package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"voicetask/models"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "conversation:"

// RedisStore keeps conversations in Redis with a key TTL matching the conversation expiry.
// Redis evicts expired keys on its own, so Sweep has nothing to do.
type RedisStore struct {
	Client *redis.Client
	Now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client, Now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, key string, now time.Time) (*models.Conversation, error) {
	data, err := s.Client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Key: key, Err: err}
	}

	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, &StoreError{Op: "decode", Key: key, Err: err}
	}
	if conv.Expired(now) {
		// The key TTL and the conversation clock can disagree by a few milliseconds.
		_ = s.Client.Del(ctx, redisKeyPrefix+key).Err()
		return nil, nil
	}
	return &conv, nil
}

func (s *RedisStore) Put(ctx context.Context, conv models.Conversation) error {
	ttl := conv.ExpiresAt().Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, conv.Key)
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return &StoreError{Op: "encode", Key: conv.Key, Err: err}
	}
	if err := s.Client.Set(ctx, redisKeyPrefix+conv.Key, data, ttl).Err(); err != nil {
		return &StoreError{Op: "set", Key: conv.Key, Err: err}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.Client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
