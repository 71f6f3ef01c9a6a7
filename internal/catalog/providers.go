package catalog

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/shopgrid/internal/catalog/cache"
	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/internal/catalog/usecase/command"
	"github.com/tair/shopgrid/internal/catalog/usecase/query"
)

// Command Handlers Providers
func ProvideCreateProductHandler(repo domain.ProductRepository, resultCache cache.ResultCache, publisher command.EventPublisher) *command.CreateProductHandler {
	return command.NewCreateProductHandler(repo, resultCache, publisher)
}

// Query Handlers Providers
func ProvideGetProductHandler(repo domain.ProductRepository) *query.GetProductHandler {
	return query.NewGetProductHandler(repo)
}

func ProvideListProductsHandler(repo domain.ProductRepository, resultCache cache.ResultCache, reg prometheus.Registerer) *query.ListProductsHandler {
	return query.NewListProductsHandler(repo, resultCache, reg)
}

func ProvideGetStatsHandler(repo domain.ProductRepository) *query.GetStatsHandler {
	return query.NewGetStatsHandler(repo)
}

// Wire sets
var CommandHandlerSet = wire.NewSet(
	ProvideCreateProductHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetProductHandler,
	ProvideListProductsHandler,
	ProvideGetStatsHandler,
)

var AllHandlersSet = wire.NewSet(
	CommandHandlerSet,
	QueryHandlerSet,
)
