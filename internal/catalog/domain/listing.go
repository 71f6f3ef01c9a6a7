package domain

import (
	"math"
	"net/url"
	"strconv"
)

// Listing defaults and bounds
const (
	DefaultPage     = 1
	DefaultLimit    = 8
	MaxLimit        = 50
	MaxSearchLength = 100
)

// ListQuery is the canonical, validated form of a listing request.
// Two queries with equal fields are interchangeable cache keys.
type ListQuery struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// CacheKey returns a stable serialization of the query
func (q ListQuery) CacheKey() string {
	v := url.Values{}
	v.Set("search", q.Search)
	v.Set("category", q.Category)
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	// Encode sorts by key
	return v.Encode()
}

// Filter builds the store predicate for the query
func (q ListQuery) Filter() Filter {
	var clauses []Filter
	if q.Search != "" {
		clauses = append(clauses, Contains(FieldTitle, q.Search))
	}
	if q.Category != "" {
		clauses = append(clauses, Equals(FieldCategory, q.Category))
	}
	return And(clauses...)
}

// Offset is the number of matching records preceding the requested page.
// It saturates at math.MaxInt64 instead of wrapping for very large pages.
func (q ListQuery) Offset() int64 {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	skipped, limit := int64(q.Page-1), int64(q.Limit)
	if skipped > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return skipped * limit
}

// Pagination describes where a page sits in the full result set
type Pagination struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// NewPagination computes page metadata. The current page is reported as
// requested, even when it lies beyond the last page.
func NewPagination(totalItems int64, page, limit int) Pagination {
	var totalPages int64
	if totalItems > 0 && limit > 0 {
		totalPages = (totalItems + int64(limit) - 1) / int64(limit)
	}
	return Pagination{
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
	}
}

// ListResult is the listing payload, cached verbatim
type ListResult struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	Categories []string   `json:"categories"`
}

// Clone returns a deep copy so cached payloads are never shared with callers
func (r *ListResult) Clone() *ListResult {
	if r == nil {
		return nil
	}
	out := &ListResult{
		Products:   make([]Product, len(r.Products)),
		Pagination: r.Pagination,
		Categories: make([]string, len(r.Categories)),
	}
	copy(out.Products, r.Products)
	copy(out.Categories, r.Categories)
	return out
}
