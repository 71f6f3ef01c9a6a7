package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/shopgrid/internal/user/domain"
	"github.com/tair/shopgrid/internal/user/usecase/command"
	"github.com/tair/shopgrid/internal/user/usecase/query"
	"github.com/tair/shopgrid/pkg/auth"
	"github.com/tair/shopgrid/pkg/logger"
	"github.com/tair/shopgrid/pkg/middleware"
)

const maxBodyBytes = 1 << 16

// SecureCookies marks the session cookie Secure; enabled outside development
type SecureCookies bool

// UserHandler handles HTTP requests for accounts and sessions
type UserHandler struct {
	// Command handlers
	registerHandler *command.RegisterUserHandler
	loginHandler    *command.LoginUserHandler

	// Query handlers
	getUserHandler *query.GetUserHandler

	tokens        *auth.TokenManager
	secureCookies bool

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	authEvents     *prometheus.CounterVec
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	registerHandler *command.RegisterUserHandler,
	loginHandler *command.LoginUserHandler,
	getUserHandler *query.GetUserHandler,
	tokens *auth.TokenManager,
	secure SecureCookies,
	reg prometheus.Registerer,
) *UserHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_http_requests_total",
			Help: "Total number of requests to the auth API",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_http_request_duration_seconds",
			Help:    "Duration of auth API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	authEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Registrations and logins by outcome",
		},
		[]string{"event", "outcome"},
	)

	reg.MustRegister(requestCounter, requestLatency, authEvents)

	return &UserHandler{
		registerHandler: registerHandler,
		loginHandler:    loginHandler,
		getUserHandler:  getUserHandler,
		tokens:          tokens,
		secureCookies:   bool(secure),
		requestCounter:  requestCounter,
		requestLatency:  requestLatency,
		authEvents:      authEvents,
	}
}

// Response is the failure envelope
type Response struct {
	Success bool                `json:"success"`
	Code    string              `json:"code,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *UserHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// RegisterRoutes mounts the auth routes. authenticate guards /me.
func (h *UserHandler) RegisterRoutes(router *mux.Router, authenticate func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/auth/register", h.metricsMiddleware("/api/auth/register", h.Register)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.metricsMiddleware("/api/auth/login", h.Login)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", h.metricsMiddleware("/api/auth/logout", h.Logout)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", h.metricsMiddleware("/api/auth/me", authenticate(h.Me))).Methods(http.MethodGet)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Code: "invalid_body", Error: "Invalid request body"})
		return req, false
	}
	return req, true
}

// Register handles POST /api/auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.registerHandler.Handle(r.Context(), command.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.authEvents.WithLabelValues("register", "rejected").Inc()
		h.respondError(w, r, err, "Server error during registration")
		return
	}

	h.authEvents.WithLabelValues("register", "success").Inc()
	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.loginHandler.Handle(r.Context(), command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.authEvents.WithLabelValues("login", "rejected").Inc()
		h.respondError(w, r, err, "Server error during login")
		return
	}

	h.authEvents.WithLabelValues("login", "success").Inc()
	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/auth/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserHandler.Handle(r.Context(), query.GetUserQuery{
		ID: middleware.UserIDFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, r, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) respondError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, Response{
			Code:   "validation_failed",
			Error:  "Validation failed",
			Errors: verr.Errors,
		})
	case errors.Is(err, domain.ErrUserExists):
		respondJSON(w, http.StatusBadRequest, Response{Code: "user_exists", Error: "User already exists"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondJSON(w, http.StatusBadRequest, Response{Code: "invalid_credentials", Error: "Invalid credentials"})
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidUserID):
		respondJSON(w, http.StatusNotFound, Response{Code: "not_found", Error: "User not found"})
	default:
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Auth request failed")
		respondJSON(w, http.StatusInternalServerError, Response{Code: "internal_error", Error: internalMsg})
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
