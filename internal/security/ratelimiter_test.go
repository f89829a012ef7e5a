package security

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"printbridge/internal/utils"
)

func TestMemoryRateLimiterWithinQuota(t *testing.T) {
	rl := NewMemoryRateLimiter()

	for i := 0; i < 60; i++ {
		assert.True(t, rl.Allow("10.0.0.1", 60), "request %d within quota must be admitted", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1", 60), "request 61 within the window must be rejected")
}

func TestMemoryRateLimiterRejectionNotRecorded(t *testing.T) {
	rl := NewMemoryRateLimiter()

	assert.True(t, rl.Allow("ip", 1))
	// Rejections do not extend the window: the identity still holds exactly
	// one recorded request.
	assert.False(t, rl.Allow("ip", 1))
	assert.False(t, rl.Allow("ip", 1))
	assert.Len(t, rl.windows["ip"], 1)
}

func TestMemoryRateLimiterWindowSlides(t *testing.T) {
	now := time.Now()
	rl := NewMemoryRateLimiter()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("ip", 2))
	assert.True(t, rl.Allow("ip", 2))
	assert.False(t, rl.Allow("ip", 2))

	// 61 seconds later the old entries are purged and the quota is fresh.
	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("ip", 2))
	assert.Len(t, rl.windows["ip"], 1)
}

func TestMemoryRateLimiterIdentitiesIndependent(t *testing.T) {
	rl := NewMemoryRateLimiter()

	assert.True(t, rl.Allow("a", 1))
	assert.False(t, rl.Allow("a", 1))
	assert.True(t, rl.Allow("b", 1), "another identity has its own window")
}

func TestMemoryRateLimiterBoundedMemory(t *testing.T) {
	now := time.Now()
	rl := NewMemoryRateLimiter()
	rl.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		rl.Allow(fmt.Sprintf("ip-%d", i), 10)
	}
	now = now.Add(2 * time.Minute)

	// Purge happens on read; touching each identity again leaves exactly one
	// live timestamp per window.
	for i := 0; i < 100; i++ {
		rl.Allow(fmt.Sprintf("ip-%d", i), 10)
	}
	for i := 0; i < 100; i++ {
		assert.Len(t, rl.windows[fmt.Sprintf("ip-%d", i)], 1)
	}
}

func TestMemoryRateLimiterConcurrentQuota(t *testing.T) {
	rl := NewMemoryRateLimiter()
	const limit = 10

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 4*limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("ip", limit) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), admitted.Load(),
		"concurrent requests must never be admitted over quota")
}

// Needs a reachable Redis; skipped otherwise. The window must hold under
// concurrency the same way the in-memory backend does.
func TestRedisRateLimiterConcurrentQuota(t *testing.T) {
	host := utils.GetEnv(EnvRedisHost, "127.0.0.1")
	port := utils.GetEnv(EnvRedisPort, "6379")
	rl, err := NewRedisRateLimiter(host, port, "", "")
	if err != nil {
		t.Skipf("redis not reachable at %s:%s: %v", host, port, err)
	}
	defer rl.Close()

	identity := "test-" + uuid.NewString()
	const limit = 10

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 4*limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow(identity, limit) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), admitted.Load())
}
