//go:build wireinject
// +build wireinject

package user

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/shopgrid/internal/user/delivery/http"
	"github.com/tair/shopgrid/internal/user/domain"
	"github.com/tair/shopgrid/pkg/auth"
)

// InitializeModule initializes the account module with all dependencies
func InitializeModule(
	repo domain.UserRepository,
	tokens *auth.TokenManager,
	secure http.SecureCookies,
	reg prometheus.Registerer,
) (*Module, error) {
	wire.Build(
		AllHandlersSet,
		http.NewUserHandler,
		ProvideModule,
	)
	return nil, nil
}
