package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// AccountID returns the authenticated account, if any.
func AccountID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxAccountID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated role, or "" for anonymous requests.
func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

// subject identifies the caller for rate limiting: the account ID or
// "anon".
func subject(c echo.Context) string {
	if id, ok := AccountID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
