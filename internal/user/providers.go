package user

import (
	"github.com/google/wire"

	"github.com/tair/shopgrid/internal/user/delivery/http"
	"github.com/tair/shopgrid/internal/user/domain"
	"github.com/tair/shopgrid/internal/user/usecase/command"
	"github.com/tair/shopgrid/internal/user/usecase/query"
	"github.com/tair/shopgrid/pkg/auth"
)

// Module bundles what the server needs from the account module
type Module struct {
	Handler    *http.UserHandler
	Users      *query.GetUserHandler
	ChangeRole *command.ChangeRoleHandler
}

// Command Handlers Providers
func ProvideRegisterUserHandler(repo domain.UserRepository, tokens *auth.TokenManager) *command.RegisterUserHandler {
	return command.NewRegisterUserHandler(repo, tokens)
}

func ProvideLoginUserHandler(repo domain.UserRepository, tokens *auth.TokenManager) *command.LoginUserHandler {
	return command.NewLoginUserHandler(repo, tokens)
}

func ProvideChangeRoleHandler(repo domain.UserRepository) *command.ChangeRoleHandler {
	return command.NewChangeRoleHandler(repo)
}

// Query Handlers Providers
func ProvideGetUserHandler(repo domain.UserRepository) *query.GetUserHandler {
	return query.NewGetUserHandler(repo)
}

// ProvideModule assembles the module
func ProvideModule(handler *http.UserHandler, users *query.GetUserHandler, changeRole *command.ChangeRoleHandler) *Module {
	return &Module{Handler: handler, Users: users, ChangeRole: changeRole}
}

// Wire sets
var CommandHandlerSet = wire.NewSet(
	ProvideRegisterUserHandler,
	ProvideLoginUserHandler,
	ProvideChangeRoleHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetUserHandler,
)

var AllHandlersSet = wire.NewSet(
	CommandHandlerSet,
	QueryHandlerSet,
)
