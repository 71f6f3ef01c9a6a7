package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tair/shopgrid/internal/catalog/cache"
	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/internal/catalog/repository"
)

var errStoreDown = errors.New("connection refused")

// seededRepo returns an in-memory catalog where each product is created one
// minute after the previous one, starting at base.
func seededRepo(t *testing.T, products ...domain.Product) *repository.MemoryProductRepository {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo := repository.NewMemoryProductRepository().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	for i := range products {
		p := products[i]
		require.NoError(t, repo.Create(context.Background(), &p))
	}
	return repo
}

// countingRepo records calls and optionally fails one of them
type countingRepo struct {
	domain.ProductRepository

	mu           sync.Mutex
	countCalls   int
	findCalls    int
	facetCalls   int
	failCount    bool
	failFind     bool
	failFacets   bool
	failFindByID error
}

func (r *countingRepo) Count(ctx context.Context, f domain.Filter) (int64, error) {
	r.mu.Lock()
	r.countCalls++
	r.mu.Unlock()
	if r.failCount {
		return 0, errStoreDown
	}
	return r.ProductRepository.Count(ctx, f)
}

func (r *countingRepo) Find(ctx context.Context, f domain.Filter, p domain.Page) ([]domain.Product, error) {
	r.mu.Lock()
	r.findCalls++
	r.mu.Unlock()
	if r.failFind {
		return nil, errStoreDown
	}
	return r.ProductRepository.Find(ctx, f, p)
}

func (r *countingRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	r.facetCalls++
	r.mu.Unlock()
	if r.failFacets {
		return nil, errStoreDown
	}
	return r.ProductRepository.DistinctCategories(ctx)
}

func (r *countingRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if r.failFindByID != nil {
		return nil, r.failFindByID
	}
	return r.ProductRepository.FindByID(ctx, id)
}

func (r *countingRepo) storeCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countCalls + r.findCalls + r.facetCalls
}

// stubCache is a map-backed ResultCache with injectable failures
type stubCache struct {
	mu         sync.Mutex
	entries    map[string]*domain.ListResult
	generation int64
	sets       int
	getErr     error
	setErr     error
	invalidErr error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*domain.ListResult)}
}

func (c *stubCache) Get(_ context.Context, key string) (cache.Lookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return cache.Lookup{}, c.getErr
	}
	r, ok := c.entries[key]
	return cache.Lookup{Result: r.Clone(), Hit: ok, Generation: c.generation}, nil
}

func (c *stubCache) Set(_ context.Context, key string, generation int64, r *domain.ListResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	if generation == c.generation {
		c.entries[key] = r.Clone()
	}
	return nil
}

func (c *stubCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidErr != nil {
		return c.invalidErr
	}
	c.entries = make(map[string]*domain.ListResult)
	c.generation++
	return nil
}

func (c *stubCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
