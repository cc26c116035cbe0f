// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"voicetask/config"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

var (
	// SessionCacheClient holds booking conversations when SESSION_STORE=redis.
	SessionCacheClient *redis.Client
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
)

// InitSessionCache initializes the Redis client used for conversation state.
func InitSessionCache() {
	SessionCacheClient = newPingedClient(config.AppConfig.RedisSessionDB, "Session Cache")
}

// GetSessionCacheClient returns the Redis client for conversation state.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newPingedClient(config.AppConfig.RedisCacheDB, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// QueueRedisOpt returns the connection options for the asynq queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

func newPingedClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}
