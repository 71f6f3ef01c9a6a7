package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tair/shopgrid/pkg/auth"
	"github.com/tair/shopgrid/pkg/logger"
)

// TokenCookie is the httpOnly cookie holding the session token
const TokenCookie = "token"

const roleAdmin = "admin"

// ErrUnknownUser is returned by a RoleLookup when the account no longer exists
var ErrUnknownUser = errors.New("unknown user")

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// RoleLookup resolves the current role of a user from the account store.
// Roles are re-read on every guarded request so a demotion takes effect
// before the token expires.
type RoleLookup interface {
	UserRole(ctx context.Context, userID string) (string, error)
}

// Authenticator guards routes with session tokens
type Authenticator struct {
	tokens *auth.TokenManager
	roles  RoleLookup
}

// NewAuthenticator creates the route guards
func NewAuthenticator(tokens *auth.TokenManager, roles RoleLookup) *Authenticator {
	return &Authenticator{tokens: tokens, roles: roles}
}

// TokenFromRequest reads the session token from the cookie, then from a
// bearer Authorization header
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate validates the session token and stores the caller in the context
func (a *Authenticator) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
			return
		}

		claims, err := a.tokens.ValidateToken(token)
		if err != nil {
			logger.Warn(r.Context()).Err(err).Msg("Invalid token")
			respondError(w, http.StatusUnauthorized, "unauthorized", "Token is not valid")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, roleKey, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireAdmin authenticates the caller and checks the stored role is admin
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := UserIDFromContext(ctx)

		role, err := a.roles.UserRole(ctx, userID)
		if errors.Is(err, ErrUnknownUser) {
			respondError(w, http.StatusForbidden, "forbidden", "Access denied. Admin only.")
			return
		}
		if err != nil {
			logger.Error(ctx).Err(err).Str("user_id", userID).Msg("Admin check failed")
			respondError(w, http.StatusInternalServerError, "internal_error", "Server error in admin middleware")
			return
		}
		if role != roleAdmin {
			logger.Warn(ctx).Str("user_id", userID).Str("role", role).Msg("Non-admin attempted admin route")
			respondError(w, http.StatusForbidden, "forbidden", "Access denied. Admin only.")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, roleKey, role)))
	})
}

// UserIDFromContext returns the authenticated user id, or ""
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RoleFromContext returns the authenticated caller's role, or ""
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
