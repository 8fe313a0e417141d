// Package router registers the HTTP routes and their middleware.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/drive-in-checkout/internal/config"
	"github.com/iliyamo/drive-in-checkout/internal/handler"
	"github.com/iliyamo/drive-in-checkout/internal/middleware"
)

// Deps are the handlers and infrastructure the routes need.  Redis is
// optional; without it checkout is not rate limited and the product list is
// not cached.
type Deps struct {
	JWTSecret string
	Log       logrus.FieldLogger
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Metrics   http.Handler
	Requests  middleware.RequestObserver
	DB        handler.Pinger

	Checkout *handler.CheckoutHandler
	Catalog  *handler.CatalogHandler
	Accounts *handler.AccountHandler
	Operator *handler.OperatorHandler
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(d.Log, d.Requests))

	RegisterRoutes(e, d)
	RegisterPublic(e, d)
	RegisterCustomer(e, d)
	RegisterOperator(e, d)
	return e
}

// RegisterRoutes registers the unauthenticated infrastructure endpoints.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}
}

// RegisterPublic registers the browse endpoints.  Only the product list
// is cached: slot availability must always be read fresh.
func RegisterPublic(e *echo.Echo, d Deps) {
	var cacher middleware.Cacher
	if d.Redis != nil {
		cacher = d.Redis
	}
	e.GET("/v1/products", d.Catalog.Products, middleware.NewRedisCache(d.Cache, cacher, d.Log))
	e.GET("/v1/shows", d.Catalog.Shows)
	e.GET("/v1/shows/:id/slots", d.Catalog.Slots)
}
