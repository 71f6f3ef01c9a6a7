package domain

import (
	"context"
	"errors"
	"time"
)

// Product represents a catalog entry
type Product struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Price     float64   `json:"price" gorm:"not null"`
	Category  string    `json:"category" gorm:"not null;index"`
	Image     string    `json:"image" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_products_created_at,sort:desc"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

var (
	// ErrProductNotFound is returned by repositories when no record matches a well-formed id.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProductID is returned when an id cannot represent a store identity.
	ErrInvalidProductID = errors.New("invalid product id")

	// ErrInvalidPage is returned for a negative offset or limit.
	ErrInvalidPage = errors.New("invalid page window")
)

// Page selects a window of a sorted result set
type Page struct {
	Offset int
	Limit  int
}

// Validate rejects windows no store can serve
func (p Page) Validate() error {
	if p.Offset < 0 || p.Limit < 0 {
		return ErrInvalidPage
	}
	return nil
}

// ProductRepository defines the contract for catalog storage.
//
// Find returns matches ordered by creation time, newest first, with the id
// descending as a tie-break so that pages are reproducible.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Find(ctx context.Context, filter Filter, page Page) ([]Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}
