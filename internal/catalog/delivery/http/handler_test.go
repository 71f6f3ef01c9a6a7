package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/shopgrid/internal/catalog/cache"
	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/internal/catalog/repository"
	"github.com/tair/shopgrid/internal/catalog/usecase/command"
	"github.com/tair/shopgrid/internal/catalog/usecase/query"
)

func allowAll(next http.HandlerFunc) http.HandlerFunc { return next }

func denyAll(http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusForbidden, Response{Code: "forbidden", Error: "Access denied. Admin only."})
	}
}

type testServer struct {
	router  *mux.Router
	handler *ProductHandler
	repo    domain.ProductRepository
}

func newTestServer(t *testing.T, repo domain.ProductRepository, admin func(http.HandlerFunc) http.HandlerFunc) *testServer {
	t.Helper()
	resultCache := cache.NewMemoryCache(time.Minute)
	reg := prometheus.NewRegistry()
	h := NewProductHandler(
		command.NewCreateProductHandler(repo, resultCache, nil),
		query.NewGetProductHandler(repo),
		query.NewListProductsHandler(repo, resultCache, reg),
		query.NewGetStatsHandler(repo),
		reg,
	)
	router := mux.NewRouter()
	h.RegisterRoutes(router, admin)
	return &testServer{router: router, handler: h, repo: repo}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestListProducts_EmptyCatalog(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	rec := s.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"products":[],"pagination":{"totalItems":0,"totalPages":0,"currentPage":1,"limit":8},"categories":[]}`,
		rec.Body.String())
}

func TestListProducts_ValidationReportsEveryField(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	target := "/api/products?page=0&limit=999&search=" + strings.Repeat("x", 101)
	rec := s.do(t, http.MethodGet, target, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[Response](t, rec)
	assert.Equal(t, "validation_failed", body.Code)
	var fields []string
	for _, fe := range body.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"page", "limit", "search"}, fields)
}

func TestListProducts_HugePageReturnsNoProducts(t *testing.T) {
	repo := repository.NewMemoryProductRepository()
	for _, title := range []string{"p0", "p1", "p2"} {
		require.NoError(t, repo.Create(context.Background(), &domain.Product{Title: title, Price: 1, Category: "Misc", Image: "http://i"}))
	}
	s := newTestServer(t, repo, allowAll)

	for _, page := range []string{"2305843009213693953", "9223372036854775807"} {
		t.Run(page, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/products?limit=8&page="+page, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t,
				`{"products":[],"pagination":{"totalItems":3,"totalPages":1,"currentPage":`+page+`,"limit":8},"categories":["Misc"]}`,
				rec.Body.String())
		})
	}
}

func TestCreateThenList(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	rec := s.do(t, http.MethodGet, "/api/products?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[domain.ListResult](t, rec)
	assert.Zero(t, before.Pagination.TotalItems)

	rec = s.do(t, http.MethodPost, "/api/products",
		`{"title":"Lamp","price":19.5,"category":"Home","image":"http://img/lamp.png"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Product](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 19.5, created.Price)
	assert.False(t, created.CreatedAt.IsZero())

	rec = s.do(t, http.MethodGet, "/api/products?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[domain.ListResult](t, rec)
	assert.Equal(t, int64(1), after.Pagination.TotalItems)
	assert.Equal(t, []string{"Home"}, after.Categories)

	rec = s.do(t, http.MethodGet, "/api/products/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lamp", decode[domain.Product](t, rec).Title)

	assert.Equal(t, float64(1), testutil.ToFloat64(s.handler.totalProducts))
}

func TestCreateProduct_Validation(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	rec := s.do(t, http.MethodPost, "/api/products",
		`{"title":"","price":10,"category":"X","image":"http://i"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[Response](t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "title", body.Errors[0].Field)
	assert.Equal(t, "Title is required", body.Errors[0].Message)

	rec = s.do(t, http.MethodPost, "/api/products", `{"price":"abc"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[Response](t, rec).Errors, 4)
}

func TestCreateProduct_WrongTypedFieldsAreFieldErrors(t *testing.T) {
	repo := repository.NewMemoryProductRepository()
	s := newTestServer(t, repo, allowAll)

	rec := s.do(t, http.MethodPost, "/api/products", `{"title":5,"price":"abc","category":"","image":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[Response](t, rec)
	assert.Equal(t, "validation_failed", body.Code)
	var fields []string
	for _, fe := range body.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"title", "price", "category", "image"}, fields)
	assert.Equal(t, "Title is required", body.Errors[0].Message)

	rec = s.do(t, http.MethodPost, "/api/products",
		`{"title":["Lamp"],"price":1,"category":{"name":"Home"},"image":null}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[Response](t, rec).Errors, 3)

	total, err := repo.Count(context.Background(), domain.MatchAll())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateProduct_ExponentPriceNumber(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	rec := s.do(t, http.MethodPost, "/api/products",
		`{"title":"Sofa","price":1.2e3,"category":"Home","image":"http://img/sofa.png"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1200.0, decode[domain.Product](t, rec).Price)
}

func TestCreateProduct_NumericStringPrice(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	rec := s.do(t, http.MethodPost, "/api/products",
		`{"title":"Mug","price":"7.25","category":"Kitchen","image":"http://img/mug.png"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 7.25, decode[domain.Product](t, rec).Price)
}

func TestCreateProduct_InvalidBody(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	rec := s.do(t, http.MethodPost, "/api/products", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", decode[Response](t, rec).Code)
}

func TestCreateProduct_GuardRunsFirst(t *testing.T) {
	repo := repository.NewMemoryProductRepository()
	s := newTestServer(t, repo, denyAll)

	rec := s.do(t, http.MethodPost, "/api/products",
		`{"title":"Lamp","price":1,"category":"Home","image":"http://i"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	total, err := repo.Count(context.Background(), domain.MatchAll())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetProduct_Errors(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	rec := s.do(t, http.MethodGet, "/api/products/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", decode[Response](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[Response](t, rec).Code)
}

func TestGetStats(t *testing.T) {
	repo := repository.NewMemoryProductRepository()
	for _, c := range []string{"Books", "Books", "Home"} {
		require.NoError(t, repo.Create(context.Background(), &domain.Product{Title: "x", Category: c, Image: "i"}))
	}
	s := newTestServer(t, repo, allowAll)

	rec := s.do(t, http.MethodGet, "/api/products/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalProducts":3,"totalCategories":2}`, rec.Body.String())
}

type brokenRepo struct {
	domain.ProductRepository
}

func (brokenRepo) Count(context.Context, domain.Filter) (int64, error) {
	return 0, errors.New("pq: password authentication failed for user \"postgres\"")
}

func TestListProducts_StoreFailureHidesDetail(t *testing.T) {
	s := newTestServer(t, brokenRepo{repository.NewMemoryProductRepository()}, allowAll)

	rec := s.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decode[Response](t, rec).Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestMetricsRecorded(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryProductRepository(), allowAll)

	s.do(t, http.MethodGet, "/api/products", "")
	s.do(t, http.MethodGet, "/api/products?page=0", "")

	assert.Equal(t, float64(1), testutil.ToFloat64(s.handler.requestCounter.WithLabelValues("GET", "/api/products", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.handler.requestCounter.WithLabelValues("GET", "/api/products", "400")))
}
