package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// TracingProductRepository wraps any ProductRepository with spans
type TracingProductRepository struct {
	next   domain.ProductRepository
	driver string
}

// NewTracingProductRepository creates a new repository with tracing
func NewTracingProductRepository(next domain.ProductRepository, driver string) *TracingProductRepository {
	return &TracingProductRepository{next: next, driver: driver}
}

// Create with tracing
func (r *TracingProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("db.system", r.driver),
			attribute.String("product.title", product.Title),
			attribute.String("product.category", product.Category),
			attribute.Float64("product.price", product.Price),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, product); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}

	span.SetAttributes(attribute.String("product.id", product.ID))
	return nil
}

// FindByID with tracing
func (r *TracingProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.String("db.system", r.driver),
			attribute.String("product.id", id),
		),
	)
	defer span.End()

	product, err := r.next.FindByID(ctx, id)
	if err != nil {
		// A missing or malformed id is an answer, not a fault.
		if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrInvalidProductID) {
			span.SetAttributes(attribute.String("result", err.Error()))
		} else {
			addDBErrorToSpan(span, err)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("product.title", product.Title),
		attribute.String("product.category", product.Category),
	)
	return product, nil
}

// Count with tracing
func (r *TracingProductRepository) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.Count",
		trace.WithAttributes(
			attribute.String("db.system", r.driver),
			attribute.String("query.filter", filter.String()),
		),
	)
	defer span.End()

	count, err := r.next.Count(ctx, filter)
	if err != nil {
		addDBErrorToSpan(span, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("result.count", count))
	return count, nil
}

// Find with tracing
func (r *TracingProductRepository) Find(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.Find",
		trace.WithAttributes(
			attribute.String("db.system", r.driver),
			attribute.String("query.filter", filter.String()),
			attribute.Int("query.limit", page.Limit),
			attribute.Int("query.offset", page.Offset),
		),
	)
	defer span.End()

	products, err := r.next.Find(ctx, filter, page)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, nil
}

// DistinctCategories with tracing
func (r *TracingProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "repository.DistinctCategories",
		trace.WithAttributes(attribute.String("db.system", r.driver)),
	)
	defer span.End()

	categories, err := r.next.DistinctCategories(ctx)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(categories)))
	return categories, nil
}

// Helper function to add database error details to span
func addDBErrorToSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("database error: %v", err))
	}
}
