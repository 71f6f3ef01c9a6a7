package command

import (
	"context"
	"fmt"

	"github.com/tair/shopgrid/internal/user/domain"
	"github.com/tair/shopgrid/pkg/logger"
)

// ChangeRoleCommand represents the command to change a user's role, found by email
type ChangeRoleCommand struct {
	Email string
	Role  string
}

// ChangeRoleHandler handles user role change command
type ChangeRoleHandler struct {
	repo domain.UserRepository
}

// NewChangeRoleHandler creates a new change role handler
func NewChangeRoleHandler(repo domain.UserRepository) *ChangeRoleHandler {
	return &ChangeRoleHandler{repo: repo}
}

// Handle executes the change role command
func (h *ChangeRoleHandler) Handle(ctx context.Context, cmd ChangeRoleCommand) (*domain.User, error) {
	if !domain.ValidRole(cmd.Role) {
		return nil, domain.ErrInvalidRole
	}
	email, ok := NormalizeEmail(cmd.Email)
	if !ok {
		return nil, &domain.ValidationError{Errors: []domain.FieldError{{Field: "email", Message: "Invalid email address"}}}
	}

	user, err := h.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user.Role != cmd.Role {
		if err := h.repo.UpdateRole(ctx, user.ID, cmd.Role); err != nil {
			return nil, fmt.Errorf("failed to update user role: %w", err)
		}
		user.Role = cmd.Role
	}

	logger.Info(ctx).Str("user_id", user.ID).Str("role", user.Role).Msg("User role changed")
	return user, nil
}
