package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/shopgrid/internal/catalog/usecase/command"
	userdomain "github.com/tair/shopgrid/internal/user/domain"
	usercommand "github.com/tair/shopgrid/internal/user/usecase/command"
	"github.com/tair/shopgrid/pkg/config"
	"github.com/tair/shopgrid/pkg/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		Service: config.Service{Name: "shopgrid-test", Environment: "development"},
		HTTP:    config.HTTP{Port: 0, RequestTimeout: 5 * time.Second},
		Store:   config.Store{Driver: config.StoreMemory},
		Cache:   config.Cache{Driver: config.CacheMemory, TTL: time.Minute},
		Auth:    config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour},
		CORS:    config.CORS{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	stores, err := OpenStores(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close(context.Background()) })

	reg := prometheus.NewRegistry()
	srv, err := NewServer(cfg, stores, command.NoopPublisher{}, Metrics{Registerer: reg, Gatherer: reg})
	require.NoError(t, err)
	return srv
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.TokenCookie {
			c.cookies = []*http.Cookie{ck}
		}
	}
	return rec
}

func TestServer_Banner404AndHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := &client{t: t, handler: srv.Handler()}

	rec := c.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"ShopGrid API is running"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = c.do(http.MethodGet, "/api/nothing-here", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Route not found"`)

	rec = c.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "healthy", report["status"])

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products", "").Code)
	rec = c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_cache_lookups_total{result="miss"} 1`)
}

func TestServer_AdminCreatesProduct(t *testing.T) {
	srv := newTestServer(t, testConfig())
	handler := srv.Handler()
	admin := &client{t: t, handler: handler}
	shopper := &client{t: t, handler: handler}
	anonymous := &client{t: t, handler: handler}

	require.Equal(t, http.StatusCreated, admin.do(http.MethodPost, "/api/auth/register",
		`{"username":"boss","email":"boss@example.com","password":"password123"}`).Code)
	require.Equal(t, http.StatusCreated, shopper.do(http.MethodPost, "/api/auth/register",
		`{"username":"shopper","email":"shopper@example.com","password":"password123"}`).Code)

	product := `{"title":"Desk Lamp","price":"24.90","category":"Home","image":"http://img/lamp.png"}`

	rec := anonymous.do(http.MethodPost, "/api/products", product)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No token, authorization denied")

	// the token still says "user"; the role is re-read on every admin request
	rec = admin.do(http.MethodPost, "/api/products", product)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := srv.Users.ChangeRole.Handle(context.Background(), usercommand.ChangeRoleCommand{
		Email: "boss@example.com",
		Role:  userdomain.RoleAdmin,
	})
	require.NoError(t, err)

	rec = admin.do(http.MethodPost, "/api/products", product)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = shopper.do(http.MethodPost, "/api/products", product)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied. Admin only.")

	rec = anonymous.do(http.MethodGet, "/api/products?search=lamp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Products []struct {
			Title string  `json:"title"`
			Price float64 `json:"price"`
		} `json:"products"`
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Products, 1)
	assert.Equal(t, "Desk Lamp", listing.Products[0].Title)
	assert.Equal(t, 24.9, listing.Products[0].Price)
	assert.Equal(t, []string{"Home"}, listing.Categories)
}

func TestServer_RateLimitsAPIOnly(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Redis = config.Redis{Addr: mr.Addr()}
	cfg.RateLimit = config.RateLimit{Enabled: true, MaxRequests: 2, Window: time.Minute}
	srv := newTestServer(t, cfg)
	c := &client{t: t, handler: srv.Handler()}

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products", "").Code)
	}

	rec := c.do(http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests, please try again later.")

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/", "").Code)
}

func TestOpenStores_RedisCacheRequiresRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Driver = config.CacheRedis
	cfg.Redis = config.Redis{Addr: "127.0.0.1:1"}

	_, err := OpenStores(context.Background(), cfg)
	assert.Error(t, err)
}
