// Package cache memoises query embeddings in an expirable LRU.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultTTL bounds how long a cached query vector is kept.
const DefaultTTL = 30 * time.Minute

// EmbeddingService caches single-text embeddings keyed by model and text.
// Batch calls made while indexing bypass the cache.
type EmbeddingService struct {
	driven.EmbeddingService
	cache *expirable.LRU[string, []float32]
}

// Wrap returns next with a cache of size entries. A non-positive size or
// ttl returns next unchanged.
func Wrap(next driven.EmbeddingService, size int, ttl time.Duration) driven.EmbeddingService {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &EmbeddingService{
		EmbeddingService: next,
		cache:            expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Embed returns a cached copy when the same text was embedded recently.
func (c *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.ModelName() + "\x00" + text
	if cached, ok := c.cache.Get(key); ok {
		logger.L().Debug("embedding cache hit", zap.Int("len", len(text)))
		return clone(cached), nil
	}

	vec, err := c.EmbeddingService.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, clone(vec))
	return vec, nil
}

// Len returns the number of cached vectors.
func (c *EmbeddingService) Len() int {
	return c.cache.Len()
}

// Purge drops every cached vector. Called after a rebuild changes the model.
func (c *EmbeddingService) Purge() {
	c.cache.Purge()
}

func clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
