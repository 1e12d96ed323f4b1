package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/equilibra/pkg/logging"
)

// SlotLocker serializes the check-then-insert sequence for one calendar day.
// Lock blocks until the key is free or ctx is done.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// MemoryLocker serializes bookings within one process.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]chan struct{})}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	for {
		l.mu.Lock()
		wait, busy := l.held[key]
		if !busy {
			done := make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(done)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	defaultLockTTL   = 30 * time.Second
	defaultLockRetry = 50 * time.Millisecond
)

// RedisLocker serializes bookings across processes sharing one Redis.
type RedisLocker struct {
	redis  *redis.Client
	ttl    time.Duration
	retry  time.Duration
	logger *logging.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisLocker {
	if client == nil {
		panic("scheduling: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLocker{redis: client, ttl: ttl, retry: defaultLockRetry, logger: logger}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockKey(key)
	token := uuid.NewString()
	for {
		ok, err := l.redis.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("scheduling: acquire slot lock: %w", err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}
		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.redis, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warn("slot lock release failed", "key", redisKey, "error", err)
			}
		})
	}
}

func lockKey(key string) string {
	return fmt.Sprintf("slot_lock:%s", key)
}

var (
	_ SlotLocker = (*MemoryLocker)(nil)
	_ SlotLocker = (*RedisLocker)(nil)
)
