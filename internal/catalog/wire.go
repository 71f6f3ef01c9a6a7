//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/shopgrid/internal/catalog/cache"
	"github.com/tair/shopgrid/internal/catalog/delivery/http"
	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/internal/catalog/usecase/command"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	repo domain.ProductRepository,
	resultCache cache.ResultCache,
	publisher command.EventPublisher,
	reg prometheus.Registerer,
) (*http.ProductHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewProductHandler,
	)
	return nil, nil
}
