package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

const newestFirst = "created_at DESC, id DESC"

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{})
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidProductID
	}

	var product domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

func (r *GormProductRepository) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	q, err := r.filtered(ctx, filter)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *GormProductRepository) Find(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.Product, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	q, err := r.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}

	products := []domain.Product{}
	err = q.Order(newestFirst).Offset(page.Offset).Limit(page.Limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}

func (r *GormProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return categories, nil
}

func (r *GormProductRepository) filtered(ctx context.Context, filter domain.Filter) (*gorm.DB, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if where != "" {
		q = q.Where(where, args...)
	}
	return q, nil
}
