package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/drive-in-checkout/internal/middleware"
	"github.com/iliyamo/drive-in-checkout/internal/utils"
)

// RegisterOperator registers the gate routes: the show roster and the
// reservation state changes.  They require the OPERATOR role.
func RegisterOperator(e *echo.Echo, d Deps) {
	g := e.Group("/v1/operator", middleware.JWTAuth(d.JWTSecret), middleware.RequireRole(utils.RoleOperator))
	g.POST("/reservations/:id/check-in", d.Operator.CheckIn)
	g.POST("/reservations/:id/cancel", d.Operator.Cancel)
	g.GET("/shows/:id/reservations", d.Operator.Roster)
}
