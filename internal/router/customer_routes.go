package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/drive-in-checkout/internal/middleware"
)

// RegisterCustomer registers quote and checkout, which guests may call,
// and the /v1/me routes, which need a token.
func RegisterCustomer(e *echo.Echo, d Deps) {
	var scripter redis.Scripter
	if d.Redis != nil {
		scripter = d.Redis
	}
	optional := middleware.OptionalJWT(d.JWTSecret)
	e.POST("/v1/quotes", d.Catalog.Quote, optional)
	e.POST("/v1/checkout", d.Checkout.Checkout, optional, middleware.NewTokenBucket(d.RateLimit, scripter, d.Log))

	me := e.Group("/v1/me", middleware.JWTAuth(d.JWTSecret))
	me.GET("/account", d.Accounts.Me)
	me.GET("/notifications", d.Accounts.Notifications)
}
