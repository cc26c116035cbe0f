package ai

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const historyPrefix = "ai:history:"

// MaxTurns bounds the history kept per session.
const MaxTurns = 10

// Turn is one line of the conversation shown to the classifier.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// HistoryStore keeps the last few turns per session key.
type HistoryStore interface {
	Recent(ctx context.Context, key string) ([]Turn, error)
	Append(ctx context.Context, key string, turns ...Turn) error
	Clear(ctx context.Context, key string) error
}

type RedisHistoryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHistoryStore(client *redis.Client, ttl time.Duration) *RedisHistoryStore {
	return &RedisHistoryStore{client: client, ttl: ttl}
}

func (s *RedisHistoryStore) Recent(ctx context.Context, key string) ([]Turn, error) {
	items, err := s.client.LRange(ctx, historyPrefix+key, 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	turns := make([]Turn, 0, len(items))
	for _, item := range items {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisHistoryStore) Append(ctx context.Context, key string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	k := historyPrefix + key
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, k, values...)
	pipe.LTrim(ctx, k, -MaxTurns, -1)
	pipe.Expire(ctx, k, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisHistoryStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, historyPrefix+key).Err()
}

// MemoryHistoryStore keeps history in process memory without expiry.
type MemoryHistoryStore struct {
	mu    sync.Mutex
	turns map[string][]Turn
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{turns: make(map[string][]Turn)}
}

func (s *MemoryHistoryStore) Recent(_ context.Context, key string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns[key]...), nil
}

func (s *MemoryHistoryStore) Append(_ context.Context, key string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(s.turns[key], turns...)
	if len(all) > MaxTurns {
		all = all[len(all)-MaxTurns:]
	}
	s.turns[key] = all
	return nil
}

func (s *MemoryHistoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, key)
	return nil
}
