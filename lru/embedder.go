// Package lru caches embeddings in a bounded LRU keyed by an xxhash of the
// text.
package lru

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/helpkb"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of cached embeddings.
const DefaultSize = 4096

// Ensure CachedEmbedder implements helpkb.Embedder at compile time.
var _ helpkb.Embedder = (*CachedEmbedder)(nil)

// CachedEmbedder memoizes another Embedder. Repeated labels and queries
// skip the model call. It is safe for concurrent use.
type CachedEmbedder struct {
	next  helpkb.Embedder
	cache *lru.Cache[uint64, []float32]
}

// NewCachedEmbedder wraps next with a cache of size entries.
func NewCachedEmbedder(next helpkb.Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[uint64, []float32](size)
	if err != nil {
		return nil, helpkb.Errorf(helpkb.EINVALID, "creating embedding cache: %v", err)
	}
	return &CachedEmbedder{next: next, cache: cache}, nil
}

// Embed returns the cached vector for text or computes and caches it.
// Callers must not modify the returned slice.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := xxhash.Sum64String(text)
	if vec, ok := e.cache.Get(key); ok {
		return vec, nil
	}
	vec, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, vec)
	return vec, nil
}

// Len returns the number of cached embeddings.
func (e *CachedEmbedder) Len() int {
	return e.cache.Len()
}
