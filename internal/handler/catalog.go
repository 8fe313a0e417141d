package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/drive-in-checkout/internal/model"
	"github.com/iliyamo/drive-in-checkout/internal/pricing"
	"github.com/iliyamo/drive-in-checkout/internal/repository"
	"github.com/iliyamo/drive-in-checkout/internal/service"
)

// Catalog answers the read-only catalog routes.  *service.CatalogService
// implements it.
type Catalog interface {
	Quote(ctx context.Context, showID uint64, slotID string, attendees int) (pricing.Quote, error)
	SlotMap(ctx context.Context, showID uint64) (*service.SlotMap, error)
	Shows(ctx context.Context, q repository.ShowSearchQuery) (*service.ShowPage, error)
	Products(ctx context.Context) ([]model.Product, error)
}

// CatalogHandler serves products, slot maps and quotes.
type CatalogHandler struct {
	svc Catalog
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(svc Catalog) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Products handles GET /v1/products.
func (h *CatalogHandler) Products(c echo.Context) error {
	products, err := h.svc.Products(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Shows handles GET /v1/shows?title=&date=&page=&page_size=.
func (h *CatalogHandler) Shows(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	res, err := h.svc.Shows(c.Request().Context(), repository.ShowSearchQuery{
		Title:    strings.TrimSpace(c.QueryParam("title")),
		Date:     strings.TrimSpace(c.QueryParam("date")),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Slots handles GET /v1/shows/:id/slots.
func (h *CatalogHandler) Slots(c echo.Context) error {
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	m, err := h.svc.SlotMap(c.Request().Context(), showID)
	if err != nil {
		return showError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

type quoteBody struct {
	ShowID        uint64 `json:"show_id"`
	SlotID        string `json:"slot_id"`
	AttendeeCount int    `json:"attendee_count"`
}

// Quote handles POST /v1/quotes.  The amount is advisory; checkout prices
// again inside its transaction.
func (h *CatalogHandler) Quote(c echo.Context) error {
	var body quoteBody
	if err := c.Bind(&body); err != nil || body.ShowID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id, slot_id and attendee_count are required"})
	}
	q, err := h.svc.Quote(c.Request().Context(), body.ShowID, body.SlotID, body.AttendeeCount)
	if err != nil {
		return showError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// showError answers 404 for an unknown show on show-scoped routes.
func showError(c echo.Context, err error) error {
	var nf *service.ItemNotFoundError
	if errors.As(err, &nf) && nf.Kind == "show" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	}
	return writeError(c, err)
}
