package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the document when no key is configured.
const DefaultRedisKey = "equilibra:response_effectiveness"

// maxUpdateAttempts bounds optimistic retries when another process writes
// the key between our read and our write.
const maxUpdateAttempts = 10

// RedisPersister keeps the document as a single JSON value shared by every
// process. Writers go through Update so concurrent records are merged.
type RedisPersister struct {
	redis *redis.Client
	key   string
}

func NewRedisPersister(client *redis.Client, key string) *RedisPersister {
	if client == nil {
		panic("responses: redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisPersister{redis: client, key: key}
}

func (p *RedisPersister) Load(ctx context.Context) (Document, error) {
	return p.decode(p.redis.Get(ctx, p.key).Bytes())
}

func (p *RedisPersister) decode(data []byte, err error) (Document, error) {
	if errors.Is(err, redis.Nil) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("responses: load effectiveness: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("responses: decode effectiveness: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Update re-reads the key under WATCH, applies fn and writes back in a
// MULTI/EXEC. A concurrent write aborts the transaction and fn is retried
// against the newer document.
func (p *RedisPersister) Update(ctx context.Context, fn func(Document) bool) (Document, error) {
	var result Document
	txf := func(tx *redis.Tx) error {
		doc, err := p.decode(tx.Get(ctx, p.key).Bytes())
		if err != nil {
			return err
		}
		if !fn(doc) {
			result = doc
			return nil
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("responses: encode effectiveness: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, p.key, data, 0)
			return nil
		})
		if err == nil {
			result = doc
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := p.redis.Watch(ctx, txf, p.key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("responses: update effectiveness: %w", err)
		}
	}
	return nil, fmt.Errorf("responses: update effectiveness: gave up after %d attempts: %w", maxUpdateAttempts, redis.TxFailedErr)
}

func (p *RedisPersister) Save(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("responses: encode effectiveness: %w", err)
	}
	if err := p.redis.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("responses: save effectiveness: %w", err)
	}
	return nil
}

var _ Updater = (*RedisPersister)(nil)
