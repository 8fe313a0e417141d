package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/drive-in-checkout/internal/middleware"
	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// Accounts reads the caller's own data.  *service.AccountService
// implements it.
type Accounts interface {
	Account(ctx context.Context, id uint64) (*model.Account, error)
	Notifications(ctx context.Context, id uint64, limit int) ([]model.Notification, error)
}

// AccountHandler serves the /v1/me routes.
type AccountHandler struct {
	svc Accounts
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(svc Accounts) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Me handles GET /v1/me/account.
func (h *AccountHandler) Me(c echo.Context) error {
	id, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	a, err := h.svc.Account(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Notifications handles GET /v1/me/notifications?limit=N.
func (h *AccountHandler) Notifications(c echo.Context) error {
	id, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}
	notes, err := h.svc.Notifications(c.Request().Context(), id, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": notes})
}
