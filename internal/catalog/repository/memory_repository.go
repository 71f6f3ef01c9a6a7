package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

// MemoryProductRepository keeps the catalog in process memory. It backs the
// "memory" store driver for local runs and serves as the reference for the
// filter semantics the database repositories translate.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	now      func() time.Time
}

// NewMemoryProductRepository creates an empty in-memory catalog
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]domain.Product),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source used on Create
func (r *MemoryProductRepository) WithClock(now func() time.Time) *MemoryProductRepository {
	r.now = now
	return r
}

func (r *MemoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := r.now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now

	r.mu.Lock()
	r.products[product.ID] = *product
	r.mu.Unlock()
	return nil
}

func (r *MemoryProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidProductID
	}

	r.mu.RLock()
	product, ok := r.products[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &product, nil
}

func (r *MemoryProductRepository) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(r.matching(filter))), nil
}

func (r *MemoryProductRepository) Find(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	matches := r.matching(filter)
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	if page.Offset >= len(matches) {
		return []domain.Product{}, nil
	}
	end := len(matches)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return matches[page.Offset:end], nil
}

func (r *MemoryProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range r.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *MemoryProductRepository) matching(filter domain.Filter) []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Product{}
	for _, p := range r.products {
		if Matches(filter, p) {
			out = append(out, p)
		}
	}
	return out
}

// Matches evaluates a filter against a single product
func Matches(f domain.Filter, p domain.Product) bool {
	switch f.Kind {
	case domain.FilterAll:
		return true
	case domain.FilterEquals:
		return fieldValue(p, f.Field) == f.Value
	case domain.FilterContains:
		return strings.Contains(strings.ToLower(fieldValue(p, f.Field)), strings.ToLower(f.Value))
	case domain.FilterAnd:
		for _, c := range f.Clauses {
			if !Matches(c, p) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func fieldValue(p domain.Product, field string) string {
	switch field {
	case domain.FieldTitle:
		return p.Title
	case domain.FieldCategory:
		return p.Category
	default:
		return ""
	}
}
