// Package rediscache memoizes query embeddings in Redis.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kirillkom/judgment-assistant/internal/core/ports"
)

const DefaultTTL = 24 * time.Hour

var errMiss = errors.New("cache miss")

type store interface {
	get(ctx context.Context, key string) ([]byte, error)
	set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisStore struct {
	rdb *goredis.Client
}

func (s redisStore) get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, errMiss
	}
	return raw, err
}

func (s redisStore) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// NewClient connects and pings Redis.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// CachedEmbedder serves repeated query embeddings from Redis. Document embeddings pass
// through untouched. Cache errors never fail a query.
type CachedEmbedder struct {
	next   ports.Embedder
	store  store
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedEmbedder scopes keys by model so switching embedding models never serves stale vectors.
func NewCachedEmbedder(next ports.Embedder, rdb *goredis.Client, model string, ttl time.Duration, logger *slog.Logger) *CachedEmbedder {
	return newCachedEmbedder(next, redisStore{rdb: rdb}, model, ttl, logger)
}

func newCachedEmbedder(next ports.Embedder, s store, model string, ttl time.Duration, logger *slog.Logger) *CachedEmbedder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedder{next: next, store: s, prefix: "judgment:qemb:" + model + ":", ttl: ttl, logger: logger}
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return c.next.Embed(ctx, texts)
}

func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	raw, err := c.store.get(ctx, key)
	switch {
	case err == nil:
		var vec []float32
		if jsonErr := json.Unmarshal(raw, &vec); jsonErr == nil && len(vec) > 0 {
			return vec, nil
		}
		c.logger.Warn("embedding_cache_corrupt", "key", key)
	case !errors.Is(err, errMiss):
		c.logger.Warn("embedding_cache_unavailable", "error", err)
	}

	vec, err := c.next.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(vec); err == nil {
		if err := c.store.set(ctx, key, payload, c.ttl); err != nil {
			c.logger.Warn("embedding_cache_write_failed", "error", err)
		}
	}
	return vec, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}
