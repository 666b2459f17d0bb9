package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	prev := client
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(prev) })
	return mr
}

type cachedEvent struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestAsideMissPopulatesCache(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	var got cachedEvent
	loader := func() error {
		calls++
		got = cachedEvent{ID: 7, Title: "Spring Market"}
		return nil
	}

	require.NoError(t, Aside(ctx, EventKey(7), &got, EventTTL, loader))
	assert.Equal(t, "Spring Market", got.Title)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(EventKey(7)))

	// Second read must come from the cache.
	var again cachedEvent
	require.NoError(t, Aside(ctx, EventKey(7), &again, EventTTL, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, got, again)
	assert.Equal(t, 1, calls)
}

func TestAsideCorruptEntryFallsBackToLoader(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(EventKey(3), "not-json"))

	var got cachedEvent
	err := Aside(ctx, EventKey(3), &got, EventTTL, func() error {
		got = cachedEvent{ID: 3, Title: "Recovered"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Recovered", got.Title)
}

func TestAsideWithoutRedis(t *testing.T) {
	prev := client
	SetClient(nil)
	t.Cleanup(func() { SetClient(prev) })

	var got cachedEvent
	err := Aside(context.Background(), EventKey(1), &got, EventTTL, func() error {
		got = cachedEvent{ID: 1, Title: "Direct"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Direct", got.Title)
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(ListingKey("corner-bakery"), `{}`))
	InvalidateListing(ctx, "corner-bakery")
	assert.False(t, mr.Exists(ListingKey("corner-bakery")))
}
