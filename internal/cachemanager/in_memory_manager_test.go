package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type renderKey string

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[renderKey, string]("cards", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "card:1:80", "rendered", DefaultExpiration)

	got, ok := cache.Get(context.Background(), "card:1:80")
	require.True(t, ok)
	require.Equal(t, "rendered", got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("cards", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "nope")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithWrongType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("cards", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("card", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "card")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("cards", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "card", "x", time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "card")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("cards", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "card", "x", 50*time.Millisecond)

	got, ok := cache.GetWithRefresh(ctx, "card", time.Hour)
	require.True(t, ok)
	require.Equal(t, "x", got)

	time.Sleep(100 * time.Millisecond)
	_, ok = cache.Get(ctx, "card")
	require.True(t, ok, "refresh should have extended the expiry")

	_, ok = cache.GetWithRefresh(ctx, "missing", time.Hour)
	require.False(t, ok)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("cards", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)
	cache.Set(ctx, "c", "3", DefaultExpiration)

	require.NoError(t, cache.Delete(ctx, "a", "missing"))
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	require.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Flush(ctx))
	require.Zero(t, cache.Len())
}
