package llm

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/maypok86/otter"

	"github.com/modryn-studio/specifythat/internal/models"
)

type decomposer interface {
	Decompose(ctx context.Context, description, attachment string) (models.AnalysisResult, error)
}

// CachedDecomposer remembers decompositions by content hash, so going back
// and resubmitting the same description does not call the model again.
type CachedDecomposer struct {
	inner decomposer
	cache otter.Cache[string, models.AnalysisResult]
}

func NewCachedDecomposer(inner decomposer, capacity int, ttl time.Duration) (*CachedDecomposer, error) {
	cache, err := otter.MustBuilder[string, models.AnalysisResult](capacity).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build analysis cache: %w", err)
	}
	return &CachedDecomposer{inner: inner, cache: cache}, nil
}

func (c *CachedDecomposer) Decompose(ctx context.Context, description, attachment string) (models.AnalysisResult, error) {
	key := ContentHash(description + "\x00" + attachment)
	if result, ok := c.cache.Get(key); ok {
		return cloneResult(result), nil
	}

	result, err := c.inner.Decompose(ctx, description, attachment)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	c.cache.Set(key, cloneResult(result))
	return result, nil
}

// Close releases the cache's background resources.
func (c *CachedDecomposer) Close() {
	c.cache.Close()
}

// ContentHash computes a SHA-256 hash of text content.
func ContentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}

func cloneResult(r models.AnalysisResult) models.AnalysisResult {
	if r.Units != nil {
		r.Units = append([]models.BuildableUnit(nil), r.Units...)
	}
	return r
}
