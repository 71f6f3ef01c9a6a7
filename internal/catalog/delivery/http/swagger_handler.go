package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// ListProducts godoc
// @Summary List products
// @Description Paginated catalog listing with title search, category filter and category facets. Results are cached until the next product is created.
// @Tags Products
// @Produce json
// @Param search query string false "Case-insensitive title substring (max 100 chars)"
// @Param category query string false "Exact category"
// @Param page query int false "Page number, default 1"
// @Param limit query int false "Page size between 1 and 50, default 8"
// @Success 200 {object} domain.ListResult
// @Failure 400 {object} Response
// @Failure 500 {object} Response
// @Router /api/products [get]
func (h *ProductHandler) ListProductsDoc() {}

// GetStats godoc
// @Summary Catalog statistics
// @Tags Products
// @Produce json
// @Success 200 {object} query.CatalogStats
// @Failure 500 {object} Response
// @Router /api/products/stats [get]
func (h *ProductHandler) GetStatsDoc() {}

// GetProduct godoc
// @Summary Get product by ID
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} Response "Malformed ID"
// @Failure 404 {object} Response
// @Router /api/products/{id} [get]
func (h *ProductHandler) GetProductDoc() {}

// CreateProduct godoc
// @Summary Create a new product
// @Description Create a new product (Admin only)
// @Tags Products
// @Security CookieAuth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{title=string,price=number,category=string,image=string} true "Product data"
// @Success 201 {object} domain.Product
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 403 {object} Response
// @Router /api/products [post]
func (h *ProductHandler) CreateProductDoc() {}
