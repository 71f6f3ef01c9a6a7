package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/shopgrid/internal/user/domain"
	"github.com/tair/shopgrid/pkg/auth"
	"github.com/tair/shopgrid/pkg/logger"
)

// LoginUserCommand represents the command to login a user
type LoginUserCommand struct {
	Email    string
	Password string
}

// LoginUserHandler handles user login command
type LoginUserHandler struct {
	repo   domain.UserRepository
	tokens *auth.TokenManager
}

// NewLoginUserHandler creates a new login user handler
func NewLoginUserHandler(repo domain.UserRepository, tokens *auth.TokenManager) *LoginUserHandler {
	return &LoginUserHandler{repo: repo, tokens: tokens}
}

// Handle executes the login user command
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*AuthResult, error) {
	email, emailOK := NormalizeEmail(cmd.Email)

	verr := &domain.ValidationError{}
	verr.Check(emailOK, "email", "Invalid email address")
	verr.Check(cmd.Password != "", "password", "Password is required")
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	user, err := h.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(user.Password, cmd.Password) {
		logger.Warn(ctx).Str("user_id", user.ID).Msg("Failed login attempt")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}
