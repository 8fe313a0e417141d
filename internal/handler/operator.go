package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// Operator performs reservation state changes.  *service.ReservationService
// implements it.
type Operator interface {
	CheckIn(ctx context.Context, id uint64) (*model.Reservation, error)
	Cancel(ctx context.Context, id uint64) (*model.Reservation, error)
	Roster(ctx context.Context, showID uint64) ([]model.Reservation, error)
}

// OperatorHandler serves the /v1/operator routes.
type OperatorHandler struct {
	svc Operator
}

// NewOperatorHandler constructs an OperatorHandler.
func NewOperatorHandler(svc Operator) *OperatorHandler {
	return &OperatorHandler{svc: svc}
}

// CheckIn handles POST /v1/operator/reservations/:id/check-in.
func (h *OperatorHandler) CheckIn(c echo.Context) error {
	return h.transition(c, h.svc.CheckIn)
}

// Cancel handles POST /v1/operator/reservations/:id/cancel.
func (h *OperatorHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.svc.Cancel)
}

func (h *OperatorHandler) transition(c echo.Context, fn func(context.Context, uint64) (*model.Reservation, error)) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := fn(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Roster handles GET /v1/operator/shows/:id/reservations.
func (h *OperatorHandler) Roster(c echo.Context) error {
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	list, err := h.svc.Roster(c.Request().Context(), showID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}
