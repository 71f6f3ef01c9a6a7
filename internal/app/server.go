package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/tair/shopgrid/docs"
	"github.com/tair/shopgrid/internal/catalog"
	"github.com/tair/shopgrid/internal/catalog/cache"
	cataloghttp "github.com/tair/shopgrid/internal/catalog/delivery/http"
	"github.com/tair/shopgrid/internal/catalog/usecase/command"
	"github.com/tair/shopgrid/internal/user"
	userhttp "github.com/tair/shopgrid/internal/user/delivery/http"
	"github.com/tair/shopgrid/pkg/auth"
	"github.com/tair/shopgrid/pkg/config"
	"github.com/tair/shopgrid/pkg/health"
	"github.com/tair/shopgrid/pkg/logger"
	"github.com/tair/shopgrid/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

// Metrics selects where collectors are registered and scraped from
type Metrics struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// DefaultMetrics uses the process-wide Prometheus registry
func DefaultMetrics() Metrics {
	return Metrics{Registerer: prometheus.DefaultRegisterer, Gatherer: prometheus.DefaultGatherer}
}

// Server is the assembled HTTP API
type Server struct {
	cfg     *config.Config
	handler http.Handler
	Users   *user.Module
}

// NewServer wires the catalog and account modules onto one router
func NewServer(cfg *config.Config, stores *Stores, publisher command.EventPublisher, metrics Metrics) (*Server, error) {
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	resultCache, err := newResultCache(cfg, stores)
	if err != nil {
		return nil, err
	}

	productHandler, err := catalog.InitializeHTTPHandler(stores.Products, resultCache, publisher, metrics.Registerer)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	users, err := user.InitializeModule(stores.Users, tokens, userhttp.SecureCookies(!cfg.Service.IsDevelopment()), metrics.Registerer)
	if err != nil {
		return nil, fmt.Errorf("init users: %w", err)
	}

	authn := middleware.NewAuthenticator(tokens, users.Users)

	checker := health.NewChecker(cfg.Service.Name, 5*time.Second)
	stores.RegisterHealthChecks(checker)

	router := mux.NewRouter()
	router.HandleFunc("/", banner).Methods(http.MethodGet)
	router.HandleFunc("/health", checker.Handler()).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	cataloghttp.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if cfg.RateLimit.Enabled && stores.Redis != nil {
		limiter := middleware.NewRateLimiter(stores.Redis, tokens, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		router.Use(pathPrefix("/api/", limiter.Middleware))
	}

	productHandler.RegisterRoutes(router, authn.RequireAdmin)
	users.Handler.RegisterRoutes(router, authn.Authenticate)

	router.NotFoundHandler = http.HandlerFunc(notFound)

	var h http.Handler = router
	h = middleware.Timeout(cfg.HTTP.RequestTimeout)(h)
	h = middleware.CORS(cfg.CORS.AllowedOrigins)(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.Logging(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(h)
	h = otelhttp.NewHandler(h, cfg.Service.Name)

	return &Server{cfg: cfg, handler: h, Users: users}, nil
}

func newResultCache(cfg *config.Config, stores *Stores) (cache.ResultCache, error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		if stores.Redis == nil {
			return nil, errors.New("redis cache selected but redis is not connected")
		}
		return cache.NewRedisCache(stores.Redis, cfg.Cache.TTL), nil
	default:
		return cache.NewMemoryCache(cfg.Cache.TTL), nil
	}
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info().
			Str("addr", srv.Addr).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pathPrefix(prefix string, mw func(http.Handler) http.Handler) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func banner(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, `{"message":"ShopGrid API is running"}`)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, `{"success":false,"code":"not_found","error":"Route not found"}`)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body + "\n"))
}
