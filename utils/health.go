package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services. Services that are not
// configured are left out.
type HealthStatus struct {
	Mongo     *bool           `json:"mongo,omitempty"`
	Redis     map[string]bool `json:"redis,omitempty"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth pings every configured backend once and stores the snapshot.
func CheckHealth(ctx context.Context, redisClients map[string]*redis.Client, mongoClient *mongo.Client) HealthStatus {
	status := HealthStatus{CheckedAt: time.Now()}

	if len(redisClients) > 0 {
		status.Redis = make(map[string]bool, len(redisClients))
		for name, client := range redisClients {
			status.Redis[name] = client.Ping(ctx).Err() == nil
		}
	}
	if mongoClient != nil {
		ok := mongoClient.Ping(ctx, nil) == nil
		status.Mongo = &ok
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, redisClients map[string]*redis.Client, mongoClient *mongo.Client) {
	CheckHealth(ctx, redisClients, mongoClient)
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, redisClients, mongoClient)
			}
		}
	}()
}

// Healthy reports whether every checked backend answered.
func (h HealthStatus) Healthy() bool {
	if h.Mongo != nil && !*h.Mongo {
		return false
	}
	for _, ok := range h.Redis {
		if !ok {
			return false
		}
	}
	return true
}
