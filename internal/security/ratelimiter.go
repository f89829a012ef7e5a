package security

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"printbridge/internal/constants"
	"printbridge/internal/utils"
)

// RateLimiter answers whether a client identity may make another request
// right now. Allow both decides and records: an admitted call counts against
// the trailing window, a rejected one does not.
type RateLimiter interface {
	Allow(identity string, limit int) bool
	Close() error
}

const (
	EnvRedisHost     = "REDIS_HOST"
	EnvRedisPort     = "REDIS_PORT"
	EnvRedisUser     = "REDIS_USERNAME"
	EnvRedisPassword = "REDIS_PASSWORD"
)

// NewRateLimiter picks the backend from the environment: Redis when
// REDIS_HOST is set and reachable, in-memory otherwise.
func NewRateLimiter(logger *zap.Logger) RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	redisHost := utils.GetEnv(EnvRedisHost, "")
	if redisHost != "" {
		redisPort := utils.GetEnv(EnvRedisPort, "6379")
		redisUser := utils.GetEnv(EnvRedisUser, "")
		redisPassword := utils.GetEnv(EnvRedisPassword, "")

		limiter, err := NewRedisRateLimiter(redisHost, redisPort, redisUser, redisPassword)
		if err != nil {
			logger.Warn("redis connection failed, falling back to in-memory rate limiter",
				zap.Error(err))
			return NewMemoryRateLimiter()
		}
		logger.Info("using redis rate limiter",
			zap.String("host", redisHost), zap.String("port", redisPort))
		return limiter
	}

	return NewMemoryRateLimiter()
}

// MemoryRateLimiter keeps a per-identity slice of request timestamps guarded
// by one process-wide mutex. Entries older than the window are purged on each
// read, so memory stays bounded by recently active identities; no background
// sweep is needed.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string][]int64
	now     func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows: make(map[string][]int64),
		now:     time.Now,
	}
}

func (rl *MemoryRateLimiter) Allow(identity string, limit int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now().Unix()
	cutoff := now - int64(constants.RateLimitWindow/time.Second)

	window := rl.windows[identity]
	kept := window[:0]
	for _, ts := range window {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		rl.windows[identity] = kept
		return false
	}

	rl.windows[identity] = append(kept, now)
	return true
}

func (rl *MemoryRateLimiter) Close() error {
	return nil
}

// RedisRateLimiter implements the same sliding window on a Redis sorted set,
// for setups where several bridge instances share one quota.
type RedisRateLimiter struct {
	client *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRedisRateLimiter(host, port, username, password string) (*RedisRateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Username: username,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := client.Ping(ctx).Err(); err != nil {
		cancel()
		client.Close()
		return nil, err
	}

	return &RedisRateLimiter{client: client, ctx: ctx, cancel: cancel}, nil
}

const redisKeyPrefix = "printbridge:rate:"

func (rl *RedisRateLimiter) Allow(identity string, limit int) bool {
	key := redisKeyPrefix + identity
	now := time.Now()
	cutoff := now.Add(-constants.RateLimitWindow)

	// Purge, add and count in one MULTI/EXEC so two concurrent requests at
	// the quota boundary cannot both read a pre-add count below the limit.
	member := uuid.NewString()
	pipe := rl.client.TxPipeline()
	pipe.ZRemRangeByScore(rl.ctx, key, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	pipe.ZAdd(rl.ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(rl.ctx, key)
	pipe.Expire(rl.ctx, key, constants.RateLimitWindow)
	if _, err := pipe.Exec(rl.ctx); err != nil {
		// Redis being down must not lock every client out of printing.
		return true
	}

	// The count includes our own entry. Rejected requests must not extend
	// the window, so the entry is withdrawn again.
	if count.Val() > int64(limit) {
		rl.client.ZRem(rl.ctx, key, member)
		return false
	}
	return true
}

func (rl *RedisRateLimiter) Close() error {
	rl.cancel()
	return rl.client.Close()
}
