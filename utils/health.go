package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Pinger is anything whose liveness can be checked (mongo client, repositories).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Database  bool      `json:"database"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthMonitor keeps the latest health snapshot in memory.
type HealthMonitor struct {
	db       Pinger
	redis    *redis.Client
	interval time.Duration

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(db Pinger, redisClient *redis.Client, interval time.Duration) *HealthMonitor {
	return &HealthMonitor{db: db, redis: redisClient, interval: interval}
}

// Status returns latest stored health snapshot.
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Healthy is true when every checked dependency answered.
func (s HealthStatus) Healthy() bool {
	return s.Database && s.Redis
}

// Run performs periodic health checks until ctx is done.
func (h *HealthMonitor) Run(ctx context.Context) {
	h.check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (h *HealthMonitor) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// An unconfigured dependency cannot be down.
	status := HealthStatus{CheckedAt: time.Now(), Database: true, Redis: true}
	if h.db != nil {
		status.Database = h.db.Ping(ctx) == nil
	}
	if h.redis != nil {
		status.Redis = h.redis.Ping(ctx).Err() == nil
	}

	h.mu.Lock()
	h.current = status
	h.mu.Unlock()
}
