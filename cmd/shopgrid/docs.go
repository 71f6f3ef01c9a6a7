package main

// @title ShopGrid API
// @version 1.0
// @description Product catalog and storefront backend with full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/shopgrid
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/shopgrid/blob/main/LICENSE

// @host localhost:5000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

// @tag.name Products
// @tag.description Catalog listing and admin product creation

// @tag.name Auth
// @tag.description Registration, login and session endpoints

// @tag.name Health
// @tag.description Health check endpoints
