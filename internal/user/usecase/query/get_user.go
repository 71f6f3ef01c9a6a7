package query

import (
	"context"
	"errors"

	"github.com/tair/shopgrid/internal/user/domain"
	"github.com/tair/shopgrid/pkg/middleware"
)

// GetUserQuery represents the query to get a user by ID
type GetUserQuery struct {
	ID string
}

// GetUserHandler handles get user query
type GetUserHandler struct {
	repo domain.UserRepository
}

// NewGetUserHandler creates a new get user handler
func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(ctx context.Context, query GetUserQuery) (*domain.User, error) {
	return h.repo.FindByID(ctx, query.ID)
}

// UserRole implements middleware.RoleLookup. Tokens whose subject no longer
// resolves to an account are reported as unknown users.
func (h *GetUserHandler) UserRole(ctx context.Context, userID string) (string, error) {
	user, err := h.repo.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidUserID) {
		return "", middleware.ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

var _ middleware.RoleLookup = (*GetUserHandler)(nil)
