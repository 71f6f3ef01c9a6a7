package command

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/tair/shopgrid/internal/user/domain"
	"github.com/tair/shopgrid/pkg/auth"
	"github.com/tair/shopgrid/pkg/logger"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// RegisterUserCommand represents the command to register a new user
type RegisterUserCommand struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by registration and login
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	repo   domain.UserRepository
	tokens *auth.TokenManager
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(repo domain.UserRepository, tokens *auth.TokenManager) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo, tokens: tokens}
}

// Handle executes the register user command. New accounts always get the
// user role; promotion happens out of band.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*AuthResult, error) {
	username := strings.TrimSpace(cmd.Username)
	email, emailOK := NormalizeEmail(cmd.Email)

	verr := &domain.ValidationError{}
	verr.Check(len([]rune(username)) >= minUsernameLength, "username", "Username must be at least 3 characters")
	verr.Check(emailOK, "email", "Invalid email address")
	verr.Check(len(cmd.Password) >= minPasswordLength, "password", "Password must be at least 6 characters")
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	exists, err := h.repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     domain.RoleUser,
	}
	if err := h.repo.Create(ctx, user); err != nil {
		// a concurrent registration can still win the unique index
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info(ctx).Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return &AuthResult{Token: token, User: user}, nil
}

// NormalizeEmail trims and lower-cases a bare address, reporting whether it is valid
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return email, false
	}
	return email, true
}
