// Package session stores serialized dialogue sessions between requests.
// Blobs are opaque here; the handlers encode and decode them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNotFound is returned for unknown or expired session IDs.
	ErrNotFound = errors.New("session: not found")
	// ErrTooLarge is returned when a blob exceeds the configured max size.
	ErrTooLarge = errors.New("session: blob exceeds max size")
)

const (
	defaultTTL      = 24 * time.Hour
	defaultMaxBytes = 64 * 1024
)

// Store is a key-value slot per session ID.
type Store interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, blob []byte) error
	Delete(ctx context.Context, id string) error
}

func checkSize(blob []byte, max int) error {
	if max > 0 && len(blob) > max {
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(blob), max)
	}
	return nil
}

// RedisStore keeps each session under its own key with a sliding TTL.
type RedisStore struct {
	redis    *redis.Client
	ttl      time.Duration
	maxBytes int
	tracer   trace.Tracer
}

func NewRedisStore(client *redis.Client, ttl time.Duration, maxBytes int) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &RedisStore{
		redis:    client,
		ttl:      ttl,
		maxBytes: maxBytes,
		tracer:   otel.Tracer("equilibra/session"),
	}
}

func (s *RedisStore) Load(ctx context.Context, id string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, blob []byte) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	if err := checkSize(blob, s.maxBytes); err != nil {
		return err
	}
	if err := s.redis.Set(ctx, sessionKey(id), blob, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session: failed to delete: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

type memoryEntry struct {
	blob    []byte
	expires time.Time
}

// MemoryStore is the single-process development store.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	ttl      time.Duration
	maxBytes int
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration, maxBytes int) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, maxBytes: maxBytes, now: time.Now}
}

func (s *MemoryStore) Load(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(entry.expires) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	return append([]byte(nil), entry.blob...), nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, blob []byte) error {
	if err := checkSize(blob, s.maxBytes); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{blob: append([]byte(nil), blob...), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expires) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
