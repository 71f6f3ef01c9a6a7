package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

func sampleResult(title string) *domain.ListResult {
	return &domain.ListResult{
		Products:   []domain.Product{{ID: "p1", Title: title, Category: "Books"}},
		Pagination: domain.NewPagination(1, 1, 8),
		Categories: []string{"Books"},
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemoryCache(ttl time.Duration) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(ttl)
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache(time.Minute)

	miss, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, miss.Hit)

	require.NoError(t, c.Set(ctx, "k", miss.Generation, sampleResult("lamp")))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, got.Hit)
	assert.Equal(t, sampleResult("lamp"), got.Result)
}

func TestMemoryCache_EntriesExpireAfterTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache(5 * time.Minute)

	require.NoError(t, c.Set(ctx, "k", 0, sampleResult("lamp")))

	clock.Advance(5*time.Minute - time.Second)
	l, _ := c.Get(ctx, "k")
	assert.True(t, l.Hit, "entry should survive until its TTL elapses")

	clock.Advance(time.Second)
	l, _ = c.Get(ctx, "k")
	assert.False(t, l.Hit, "entry should be absent once its TTL elapses")
}

func TestMemoryCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache(time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), 0, sampleResult("lamp")))
	}
	require.Equal(t, 3, c.Len())

	require.NoError(t, c.InvalidateAll(ctx))

	assert.Equal(t, 0, c.Len())
	for i := 0; i < 3; i++ {
		l, _ := c.Get(ctx, fmt.Sprintf("k%d", i))
		assert.False(t, l.Hit)
		assert.Equal(t, int64(1), l.Generation)
	}
}

func TestMemoryCache_DropsPayloadComputedBeforeInvalidation(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache(time.Minute)

	before, err := c.Get(ctx, "k")
	require.NoError(t, err)

	// A mutation lands while the listing is being computed.
	require.NoError(t, c.InvalidateAll(ctx))
	require.NoError(t, c.Set(ctx, "k", before.Generation, sampleResult("stale")))

	l, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, l.Hit)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_IsolatesStoredPayload(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache(time.Minute)

	in := sampleResult("lamp")
	require.NoError(t, c.Set(ctx, "k", 0, in))
	in.Products[0].Title = "mutated after set"

	out, _ := c.Get(ctx, "k")
	require.True(t, out.Hit)
	out.Result.Categories[0] = "mutated after get"

	again, _ := c.Get(ctx, "k")
	assert.Equal(t, "lamp", again.Result.Products[0].Title)
	assert.Equal(t, "Books", again.Result.Categories[0])
}

func TestMemoryCache_SweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache(time.Minute)

	for i := 0; i < sweepThreshold; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("old%d", i), 0, sampleResult("x")))
	}
	clock.Advance(2 * time.Minute)

	require.NoError(t, c.Set(ctx, "fresh", 0, sampleResult("y")))
	assert.Equal(t, 1, c.Len())
}

func TestNewMemoryCache_DefaultsTTL(t *testing.T) {
	c := NewMemoryCache(0)
	assert.Equal(t, DefaultTTL, c.ttl)
}
