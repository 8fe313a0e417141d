package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/drive-in-checkout/internal/middleware"
	"github.com/iliyamo/drive-in-checkout/internal/payment"
	"github.com/iliyamo/drive-in-checkout/internal/service"
)

// HeaderIdempotencyKey lets clients retry a checkout safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// Checkouter runs checkouts.  *service.CheckoutService implements it.
type Checkouter interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.Receipt, error)
}

// CheckoutHandler serves POST /v1/checkout.
type CheckoutHandler struct {
	svc Checkouter
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(svc Checkouter) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

type checkoutBody struct {
	AccountID    *uint64            `json:"account_id"`
	Cart         []service.CartItem `json:"cart"`
	Payment      payment.Instrument `json:"payment"`
	Location     *string            `json:"location"`
	RedeemPoints bool               `json:"redeem_points"`
}

// Checkout handles POST /v1/checkout.  Anonymous callers check out as
// guests; an account_id in the body must match the token subject.
//
//	200 receipt
//	400 {"error": ...}             malformed cart or card fields, unknown item
//	402 {"reason": ...}            card declined
//	403 {"error": "forbidden"}     account_id is not the caller
//	409 {"conflicting_slot": ...}  slot already reserved
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var body checkoutBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var accountID *uint64
	if id, ok := middleware.AccountID(c); ok {
		accountID = &id
	}
	if body.AccountID != nil && (accountID == nil || *body.AccountID != *accountID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	receipt, err := h.svc.Checkout(c.Request().Context(), service.CheckoutRequest{
		AccountID:      accountID,
		Items:          body.Cart,
		Payment:        body.Payment,
		Location:       body.Location,
		RedeemPoints:   body.RedeemPoints,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, err)
	}
	if receipt.Replayed {
		c.Response().Header().Set("Idempotent-Replayed", "true")
	}
	return c.JSON(http.StatusOK, receipt)
}
