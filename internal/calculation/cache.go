package calculation

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// RequestCache memoizes program evaluations for the lifetime of one request.
// Entries are keyed by program ID plus a canonical serialization of the
// params, so identical inputs within the request reuse the earlier result.
// A RequestCache is never shared between requests.
type RequestCache struct {
	mu      sync.Mutex
	matches map[string]domain.ProgramMatch
	hits    int
	misses  int
}

// NewRequestCache returns an empty cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{matches: make(map[string]domain.ProgramMatch)}
}

type requestCacheKey struct{}

// WithRequestCache scopes c to ctx. Handlers call it once per request.
func WithRequestCache(ctx context.Context, c *RequestCache) context.Context {
	return context.WithValue(ctx, requestCacheKey{}, c)
}

// RequestCacheFrom returns the cache scoped to ctx, or nil.
func RequestCacheFrom(ctx context.Context) *RequestCache {
	c, _ := ctx.Value(requestCacheKey{}).(*RequestCache)
	return c
}

// CacheKey serializes params canonically. Struct fields marshal in
// declaration order and nil fields are omitted, so equal params always
// produce the same key.
func CacheKey(programID string, p domain.EligibilityParams) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return programID + "|" + string(b), nil
}

// GetOrCompute returns the cached match for key, computing and storing it on
// a miss. A nil cache always computes.
func (c *RequestCache) GetOrCompute(key string, compute func() domain.ProgramMatch) domain.ProgramMatch {
	if c == nil {
		return compute()
	}

	c.mu.Lock()
	if m, ok := c.matches[key]; ok {
		c.hits++
		c.mu.Unlock()
		return m
	}
	c.misses++
	c.mu.Unlock()

	m := compute()

	c.mu.Lock()
	c.matches[key] = m
	c.mu.Unlock()
	return m
}

// Stats returns the hit and miss counts so far.
func (c *RequestCache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
