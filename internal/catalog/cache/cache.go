// Package cache holds derived listing payloads keyed by canonical query.
// Entries are disposable: dropping any of them only costs latency.
package cache

import (
	"context"
	"time"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

// DefaultTTL is how long a listing payload stays valid
const DefaultTTL = 5 * time.Minute

// Lookup is the outcome of a cache read. Generation is the cache state the
// read observed and is handed back to Set with the computed payload.
type Lookup struct {
	Result     *domain.ListResult
	Hit        bool
	Generation int64
}

// ResultCache maps a listing cache key to a previously computed payload.
// InvalidateAll is the only invalidation granularity: any catalog mutation
// can change the category facets and so every entry.
//
// Set stores into the generation returned by the preceding Get. A payload
// computed before an InvalidateAll therefore never becomes visible.
type ResultCache interface {
	Get(ctx context.Context, key string) (Lookup, error)
	Set(ctx context.Context, key string, generation int64, result *domain.ListResult) error
	InvalidateAll(ctx context.Context) error
}
