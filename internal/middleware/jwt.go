// Package middleware holds the echo middleware shared by the routes:
// identity, roles, rate limiting, response caching and request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/drive-in-checkout/internal/utils"
)

// Context keys set by the JWT middleware.
const (
	ctxAccountID = "account_id"
	ctxRole      = "role"
)

// JWTAuth validates a Bearer access token and stores the account ID and
// role in the context.  Requests without a valid token get 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return jwtAuth(secret, false)
}

// OptionalJWT is JWTAuth for routes that guests may call.  A request
// without an Authorization header continues anonymously, but a header
// carrying a bad token is still rejected.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return jwtAuth(secret, true)
}

func jwtAuth(secret string, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" && optional {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			id, _ := claims.AccountID()
			c.Set(ctxAccountID, id)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}
