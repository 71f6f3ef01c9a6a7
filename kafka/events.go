package kafka

import "time"

// ProductCreatedEvent announces a new catalog entry
type ProductCreatedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeProductCreated = "product.created"
)

// DefaultTopic receives catalog events unless configured otherwise
const DefaultTopic = "catalog-product-created"
