package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/internal/catalog/usecase/command"
	"github.com/tair/shopgrid/internal/catalog/usecase/query"
	"github.com/tair/shopgrid/pkg/logger"
	"github.com/tair/shopgrid/pkg/middleware"
)

// maxBodyBytes bounds the creation payload
const maxBodyBytes = 1 << 20

// ProductHandler handles HTTP requests for products using CQRS pattern
type ProductHandler struct {
	// Command handlers
	createHandler *command.CreateProductHandler

	// Query handlers
	getProductHandler *query.GetProductHandler
	listHandler       *query.ListProductsHandler
	statsHandler      *query.GetStatsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestSummary *prometheus.SummaryVec
	totalProducts  prometheus.Gauge
}

// NewProductHandler creates a new product handler. Collectors are registered
// on reg so tests can use a private registry.
func NewProductHandler(
	createHandler *command.CreateProductHandler,
	getProductHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	statsHandler *query.GetStatsHandler,
	reg prometheus.Registerer,
) *ProductHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of requests to the catalog API",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "Duration of catalog API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Summary metric for percentile calculation (p50, p90, p95, p99)
	requestSummary := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "catalog_http_request_duration_summary",
			Help: "Summary of request durations with percentiles (client-side quantiles)",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method", "endpoint"},
	)

	totalProducts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_total_products",
			Help: "Total number of products in the catalog",
		},
	)

	reg.MustRegister(requestCounter, requestLatency, requestSummary, totalProducts)

	return &ProductHandler{
		createHandler:     createHandler,
		getProductHandler: getProductHandler,
		listHandler:       listHandler,
		statsHandler:      statsHandler,
		requestCounter:    requestCounter,
		requestLatency:    requestLatency,
		requestSummary:    requestSummary,
		totalProducts:     totalProducts,
	}
}

// Response is the envelope for failures. Successful calls return the
// resource itself.
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
func (h *ProductHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes mounts the catalog routes. admin guards the write path.
func (h *ProductHandler) RegisterRoutes(router *mux.Router, admin func(http.HandlerFunc) http.HandlerFunc) {
	// Public routes (no auth required)
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.ListProducts)).Methods(http.MethodGet)
	router.HandleFunc("/api/products/stats", h.metricsMiddleware("/api/products/stats", h.GetStats)).Methods(http.MethodGet)
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.GetProduct)).Methods(http.MethodGet)

	// Admin routes (admin role required)
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", admin(h.CreateProduct))).Methods(http.MethodPost)
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	param := func(name string) *string {
		if _, ok := values[name]; !ok {
			return nil
		}
		v := values.Get(name)
		return &v
	}

	q, err := query.NormalizeListParams(query.ListProductsParams{
		Search:   param("search"),
		Category: param("category"),
		Page:     param("page"),
		Limit:    param("limit"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.getProductHandler.Handle(r.Context(), query.GetProductQuery{ID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// GetStats handles GET /api/products/stats
func (h *ProductHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), query.GetStatsQuery{})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.totalProducts.Set(float64(stats.TotalProducts))
	respondJSON(w, http.StatusOK, stats)
}

// createProductRequest keeps fields raw so a wrongly typed value is reported
// as a field violation instead of failing the whole decode
type createProductRequest struct {
	Title    json.RawMessage `json:"title"`
	Price    json.RawMessage `json:"price"`
	Category json.RawMessage `json:"category"`
	Image    json.RawMessage `json:"image"`
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "invalid_body",
			Error:   "Invalid request body",
		})
		return
	}

	ctx := r.Context()
	product, err := h.createHandler.Handle(ctx, command.CreateProductCommand{
		Title:    rawString(req.Title),
		Price:    rawNumber(req.Price),
		Category: rawString(req.Category),
		Image:    rawString(req.Image),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info(ctx).
		Str("product_id", product.ID).
		Str("admin_id", middleware.UserIDFromContext(ctx)).
		Msg("Product created via API")

	h.updateProductsMetric(r)

	respondJSON(w, http.StatusCreated, product)
}

// rawString returns the value of a JSON string. Anything else, including
// numbers, objects and null, yields "" and fails the required check.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rawNumber returns the textual price, accepting JSON numbers and numeric
// strings. JSON numbers are rendered in plain decimal so exponent forms pass
// the decimal-only price check.
func rawNumber(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return string(raw)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// updateProductsMetric updates the total products gauge
func (h *ProductHandler) updateProductsMetric(r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), query.GetStatsQuery{})
	if err == nil {
		h.totalProducts.Set(float64(stats.TotalProducts))
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr      *domain.ValidationError
		notFound  *domain.NotFoundError
		malformed *domain.MalformedIdentityError
	)

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "validation_failed",
			Error:   "Validation failed",
			Errors:  verr.Errors,
		})
	case errors.As(err, &malformed):
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "invalid_id",
			Error:   "Invalid product ID",
		})
	case errors.As(err, &notFound):
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Code:    "not_found",
			Error:   "Product not found",
		})
	default:
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Request failed")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Code:    "internal_error",
			Error:   "Server error",
		})
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
