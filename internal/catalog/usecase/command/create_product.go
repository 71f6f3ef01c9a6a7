package command

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tair/shopgrid/internal/catalog/cache"
	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/pkg/logger"
)

// CreateProductCommand represents the command to create a new product.
// Price carries the raw numeric text so non-numeric input can be reported
// alongside the other field violations.
type CreateProductCommand struct {
	Title    string
	Price    string
	Category string
	Image    string
}

// EventPublisher announces catalog changes to other services
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishProductCreated(context.Context, *domain.Product) error { return nil }

// decimalPrice is plain decimal notation. Hex floats, exponents, Inf and NaN
// are rejected before parsing.
var decimalPrice = regexp.MustCompile(`^[+-]?([0-9]*\.)?[0-9]+$`)

// CreateProductHandler handles product creation command
type CreateProductHandler struct {
	repo      domain.ProductRepository
	cache     cache.ResultCache
	publisher EventPublisher
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository, resultCache cache.ResultCache, publisher EventPublisher) *CreateProductHandler {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &CreateProductHandler{repo: repo, cache: resultCache, publisher: publisher}
}

// Handle validates and persists a new product, then drops every cached listing
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	product, err := validateCreate(cmd)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, product); err != nil {
		logger.Error(ctx).Err(err).Str("title", product.Title).Msg("Failed to create product")
		return nil, &domain.InternalError{Op: "create product", Err: err}
	}

	if err := h.cache.InvalidateAll(ctx); err != nil {
		// The record is committed; stale listings heal at TTL expiry.
		logger.Error(ctx).Err(err).Str("product_id", product.ID).Msg("Failed to invalidate listing cache")
	}

	if err := h.publisher.PublishProductCreated(ctx, product); err != nil {
		logger.Warn(ctx).Err(err).Str("product_id", product.ID).Msg("Failed to publish product created event")
	}

	logger.Info(ctx).
		Str("product_id", product.ID).
		Str("category", product.Category).
		Msg("Product created")

	return product, nil
}

func validateCreate(cmd CreateProductCommand) (*domain.Product, error) {
	verr := &domain.ValidationError{}

	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		verr.Add("title", "Title is required", cmd.Title)
	}

	rawPrice := strings.TrimSpace(cmd.Price)
	price, err := strconv.ParseFloat(rawPrice, 64)
	switch {
	case !decimalPrice.MatchString(rawPrice) || err != nil || math.IsNaN(price) || math.IsInf(price, 0):
		verr.Add("price", "Price must be a number", cmd.Price)
	case price < 0:
		verr.Add("price", "Price cannot be negative", cmd.Price)
	}

	category := strings.TrimSpace(cmd.Category)
	if category == "" {
		verr.Add("category", "Category is required", cmd.Category)
	}

	image := strings.TrimSpace(cmd.Image)
	if image == "" {
		verr.Add("image", "Image URL is required", cmd.Image)
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	return &domain.Product{
		Title:    title,
		Price:    price,
		Category: category,
		Image:    image,
	}, nil
}
