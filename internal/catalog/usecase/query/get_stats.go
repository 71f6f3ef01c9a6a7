package query

import (
	"context"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

// GetStatsQuery represents the query to get catalog statistics
type GetStatsQuery struct{}

// CatalogStats represents catalog statistics
type CatalogStats struct {
	TotalProducts   int64 `json:"totalProducts"`
	TotalCategories int64 `json:"totalCategories"`
}

// GetStatsHandler handles get stats query
type GetStatsHandler struct {
	repo domain.ProductRepository
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(repo domain.ProductRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(ctx context.Context, _ GetStatsQuery) (*CatalogStats, error) {
	total, err := h.repo.Count(ctx, domain.MatchAll())
	if err != nil {
		return nil, storeFailure(ctx, "count products", err)
	}

	categories, err := h.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, storeFailure(ctx, "list categories", err)
	}

	return &CatalogStats{
		TotalProducts:   total,
		TotalCategories: int64(len(categories)),
	}, nil
}
