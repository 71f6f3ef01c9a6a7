package query

import (
	"context"
	"errors"
	"strings"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

// GetProductQuery represents the query to get a product by ID
type GetProductQuery struct {
	ID string
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(ctx context.Context, q GetProductQuery) (*domain.Product, error) {
	id := strings.TrimSpace(q.ID)
	if id == "" {
		return nil, &domain.MalformedIdentityError{ID: q.ID}
	}

	product, err := h.repo.FindByID(ctx, id)
	switch {
	case err == nil:
		return product, nil
	case errors.Is(err, domain.ErrInvalidProductID):
		return nil, &domain.MalformedIdentityError{ID: id}
	case errors.Is(err, domain.ErrProductNotFound):
		return nil, &domain.NotFoundError{Resource: "product", ID: id}
	default:
		return nil, storeFailure(ctx, "find product", err)
	}
}
