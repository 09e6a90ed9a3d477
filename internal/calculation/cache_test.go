package calculation

import (
	"context"
	"testing"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_Canonical(t *testing.T) {
	a := domain.EligibilityParams{Age: domain.StringPtr("30"), Gender: domain.StringPtr("female")}
	b := domain.EligibilityParams{Gender: domain.StringPtr("female"), Age: domain.StringPtr("30")}

	ka, err := CacheKey("p-1", a)
	require.NoError(t, err)
	kb, err := CacheKey("p-1", b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)

	kc, err := CacheKey("p-2", a)
	require.NoError(t, err)
	assert.NotEqual(t, ka, kc)
}

func TestRequestCache_GetOrCompute(t *testing.T) {
	cache := NewRequestCache()
	calls := 0
	compute := func() domain.ProgramMatch {
		calls++
		return domain.ProgramMatch{EligibilityScore: 42}
	}

	first := cache.GetOrCompute("k", compute)
	second := cache.GetOrCompute("k", compute)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	hits, misses := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestRequestCache_NilAlwaysComputes(t *testing.T) {
	var cache *RequestCache
	calls := 0
	compute := func() domain.ProgramMatch { calls++; return domain.ProgramMatch{} }

	cache.GetOrCompute("k", compute)
	cache.GetOrCompute("k", compute)

	assert.Equal(t, 2, calls)
}

func TestRequestCacheFrom(t *testing.T) {
	assert.Nil(t, RequestCacheFrom(context.Background()))

	cache := NewRequestCache()
	assert.Same(t, cache, RequestCacheFrom(WithRequestCache(context.Background(), cache)))
}
