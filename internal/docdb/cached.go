package docdb

import (
	"context"

	"github.com/ppiankov/fever/internal/cache"
)

// CachedStore serves repeated page lookups from a cache.
// Misses and errors fall through to the wrapped source; errors are never cached.
type CachedStore struct {
	source LineSource
	cache  cache.Cache
}

var _ LineSource = (*CachedStore)(nil)

// NewCachedStore wraps source with c
func NewCachedStore(source LineSource, c cache.Cache) *CachedStore {
	return &CachedStore{source: source, cache: c}
}

// GetLines returns the raw line records of a page
func (s *CachedStore) GetLines(ctx context.Context, pageID string) ([]string, error) {
	key := cache.CacheKey(NormalizeID(pageID))
	if lines, found := s.cache.Get(key); found {
		return lines, nil
	}

	lines, err := s.source.GetLines(ctx, pageID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(key, lines, 0)
	return lines, nil
}
