package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewTTLCache[string, int]()
	c.now = func() time.Time { return now }

	c.Set(ctx, "a", 1, time.Minute)
	v, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestTTLCacheIgnoresNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string, int]()

	c.Set(ctx, "a", 1, 0)
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestTTLCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string, string]()

	c.Set(ctx, "k", "v", time.Hour)
	c.Delete(ctx, "k")
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "tariff|active", cacheKey(" Tariff ", "", "ACTIVE"))
}

func TestRedisCacheNilClientMisses(t *testing.T) {
	c := NewRedisCache[int](nil, "crudpark", nil)
	c.Set(context.Background(), "k", 1, time.Minute)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}
