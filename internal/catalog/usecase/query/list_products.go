package query

import (
	"context"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/shopgrid/internal/catalog/cache"
	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/pkg/logger"
)

// Cache lookup outcomes
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// ListProductsHandler turns a listing query into a paginated, cached payload
// with category facets
type ListProductsHandler struct {
	repo         domain.ProductRepository
	cache        cache.ResultCache
	cacheLookups *prometheus.CounterVec
}

// NewListProductsHandler creates a new list products handler. The cache
// lookup counter is registered on reg.
func NewListProductsHandler(repo domain.ProductRepository, resultCache cache.ResultCache, reg prometheus.Registerer) *ListProductsHandler {
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Listing cache lookups by outcome",
		},
		[]string{"result"},
	)
	reg.MustRegister(cacheLookups)

	return &ListProductsHandler{repo: repo, cache: resultCache, cacheLookups: cacheLookups}
}

// Handle executes the listing query. Store faults surface as *domain.InternalError
// and nothing is cached for a failed or aborted computation.
func (h *ListProductsHandler) Handle(ctx context.Context, q domain.ListQuery) (*domain.ListResult, error) {
	key := q.CacheKey()

	lookup, err := h.cache.Get(ctx, key)
	switch {
	case err != nil:
		h.cacheLookups.WithLabelValues(cacheError).Inc()
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Listing cache read failed, querying store")
	case lookup.Hit:
		h.cacheLookups.WithLabelValues(cacheHit).Inc()
		logger.Debug(ctx).Str("cache_key", key).Msg("Listing cache hit")
		return lookup.Result, nil
	default:
		h.cacheLookups.WithLabelValues(cacheMiss).Inc()
		logger.Debug(ctx).Str("cache_key", key).Msg("Listing cache miss")
	}

	result, err := h.compute(ctx, q)
	if err != nil {
		return nil, err
	}

	if ctx.Err() == nil {
		// Stored against the generation seen before the fetch, so a
		// concurrent InvalidateAll wins.
		if err := h.cache.Set(ctx, key, lookup.Generation, result); err != nil {
			logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to cache listing")
		}
	}

	return result, nil
}

func (h *ListProductsHandler) compute(ctx context.Context, q domain.ListQuery) (*domain.ListResult, error) {
	filter := q.Filter()

	total, err := h.repo.Count(ctx, filter)
	if err != nil {
		return nil, storeFailure(ctx, "count products", err)
	}

	pagination := domain.NewPagination(total, q.Page, q.Limit)

	products := []domain.Product{}
	// offset < total keeps the conversion to int in range
	if offset := q.Offset(); offset < total {
		page, err := h.repo.Find(ctx, filter, domain.Page{Offset: int(offset), Limit: q.Limit})
		if err != nil {
			return nil, storeFailure(ctx, "find products", err)
		}
		if len(page) > q.Limit {
			page = page[:q.Limit]
		}
		products = append(products, page...)
	}

	categories, err := h.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, storeFailure(ctx, "list categories", err)
	}
	facets := make([]string, 0, len(categories))
	facets = append(facets, categories...)
	sort.Strings(facets)

	return &domain.ListResult{
		Products:   products,
		Pagination: pagination,
		Categories: facets,
	}, nil
}

func storeFailure(ctx context.Context, op string, err error) error {
	logger.Error(ctx).Err(err).Str("op", op).Msg("Catalog store failure")
	return &domain.InternalError{Op: op, Err: err}
}
