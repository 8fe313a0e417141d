// Package handler exposes the checkout core over HTTP.  Handlers bind and
// check the request shape, resolve identity from the middleware and map
// service errors onto status codes; all business rules live in the service
// package.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/drive-in-checkout/internal/logging"
	"github.com/iliyamo/drive-in-checkout/internal/service"
)

// writeError maps service errors onto responses.  Unknown errors become a
// generic 500 and are logged with the request logger.
func writeError(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		pd *service.PaymentDeclinedError
		sc *service.SlotConflictError
		nf *service.ItemNotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
	case errors.As(err, &pd):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"reason": pd.Reason})
	case errors.As(err, &sc):
		return c.JSON(http.StatusConflict, echo.Map{"conflicting_slot": sc.SlotID, "show_id": sc.ShowID})
	case errors.As(err, &nf):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": nf.Error()})
	case errors.Is(err, service.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		logging.FromContext(c.Request().Context()).WithError(err).Error("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
