// Package bootstrap turns configuration into concrete collaborators for the
// API binary.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/equilibra/internal/config"
	"github.com/wolfman30/equilibra/internal/responses"
	"github.com/wolfman30/equilibra/internal/scheduling"
	"github.com/wolfman30/equilibra/internal/session"
	"github.com/wolfman30/equilibra/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// NeedsRedis reports whether any configured backend is Redis.
func NeedsRedis(cfg *appconfig.Config) bool {
	return cfg.SessionBackend == "redis" || cfg.EffectivenessBackend == "redis" || cfg.SlotLockBackend == "redis"
}

// BuildSessionStore picks the session transport. The memory store is returned
// as its concrete type so the caller can schedule its sweep.
func BuildSessionStore(cfg *appconfig.Config, client *redis.Client) (session.Store, *session.MemoryStore, error) {
	switch cfg.SessionBackend {
	case "redis":
		if client == nil {
			return nil, nil, fmt.Errorf("bootstrap: session backend redis requires REDIS_ADDR")
		}
		return session.NewRedisStore(client, cfg.SessionTTL, cfg.SessionMaxBytes), nil, nil
	case "", "memory":
		mem := session.NewMemoryStore(cfg.SessionTTL, cfg.SessionMaxBytes)
		return mem, mem, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown session backend %q", cfg.SessionBackend)
	}
}

// BuildEffectivenessPersister picks where the response-effectiveness document lives.
func BuildEffectivenessPersister(cfg *appconfig.Config, client *redis.Client) (responses.Persister, error) {
	switch cfg.EffectivenessBackend {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("bootstrap: effectiveness backend redis requires REDIS_ADDR")
		}
		return responses.NewRedisPersister(client, responses.DefaultRedisKey), nil
	case "", "file":
		return responses.NewFilePersister(cfg.EffectivenessPath), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown effectiveness backend %q", cfg.EffectivenessBackend)
	}
}

// lockMargin is added on top of the two calendar calls made under the lock.
const lockMargin = 5 * time.Second

// SlotLockTTL is the configured lock TTL, raised so a lock cannot expire while
// the holder is still waiting on the list and insert calendar calls.
func SlotLockTTL(cfg *appconfig.Config) time.Duration {
	calls := cfg.CalendarTimeout
	if calls <= 0 {
		calls = 10 * time.Second
	}
	floor := 2*calls + lockMargin
	if cfg.SlotLockTTL < floor {
		return floor
	}
	return cfg.SlotLockTTL
}

// BuildSlotLocker picks the booking lock. Redis is required when more than one
// API process books against the same calendar.
func BuildSlotLocker(cfg *appconfig.Config, client *redis.Client, logger *logging.Logger) (scheduling.SlotLocker, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.SlotLockBackend {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("bootstrap: slot lock backend redis requires REDIS_ADDR")
		}
		ttl := SlotLockTTL(cfg)
		if ttl != cfg.SlotLockTTL && cfg.SlotLockTTL > 0 {
			logger.Warn("slot lock ttl raised to cover calendar calls", "configured", cfg.SlotLockTTL.String(), "ttl", ttl.String())
		}
		return scheduling.NewRedisLocker(client, ttl, logger), nil
	case "", "memory":
		return scheduling.NewMemoryLocker(), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown slot lock backend %q", cfg.SlotLockBackend)
	}
}
