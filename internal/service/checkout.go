// Package service holds the checkout core: the transaction that turns a cart
// into reservations, a concession order, a ledger update and a notification,
// plus the operator and read-side operations around it.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/drive-in-checkout/internal/model"
	"github.com/iliyamo/drive-in-checkout/internal/payment"
	"github.com/iliyamo/drive-in-checkout/internal/pricing"
	"github.com/iliyamo/drive-in-checkout/internal/repository"
)

// Loyalty rules.
const (
	PointsPerReservation = 100
	RedemptionCost       = 1000
)

// Cart item kinds.
const (
	KindReservation = "reservation"
	KindProduct     = "product"
)

// MaxCartItems bounds a single checkout.
const MaxCartItems = 20

// MaxQuantity bounds the quantity of one product in a checkout, summed
// over lines naming the same product.
const MaxQuantity = 99

// CartItem is one line of a cart.  Reservation items carry ShowID, SlotID,
// VehicleClass and AttendeeCount; product items carry ProductID and
// Quantity.  Price is whatever the client displayed and is never used.
type CartItem struct {
	Kind          string `json:"kind"`
	ShowID        uint64 `json:"show_id,omitempty"`
	SlotID        string `json:"slot_id,omitempty"`
	VehicleClass  string `json:"vehicle_class,omitempty"`
	AttendeeCount int    `json:"attendee_count,omitempty"`
	ProductID     uint64 `json:"product_id,omitempty"`
	Quantity      int    `json:"quantity,omitempty"`
	Price         *int64 `json:"price,omitempty"`
}

// CheckoutRequest is the explicit checkout intent.  AccountID is nil for
// guests; identity is resolved before the request reaches the service.
type CheckoutRequest struct {
	AccountID      *uint64
	Items          []CartItem
	Payment        payment.Instrument
	Location       *string
	RedeemPoints   bool
	IdempotencyKey string
}

// Receipt summarizes a committed checkout.
type Receipt struct {
	CheckoutID        string          `json:"checkout_id"`
	AccountID         *uint64         `json:"account_id"`
	ReservationCount  int             `json:"reservation_count"`
	OrderCount        int             `json:"order_count"`
	ReservationIDs    []uint64        `json:"reservation_ids"`
	OrderID           *uint64         `json:"order_id"`
	TicketTotal       int64           `json:"ticket_total"`
	OrderTotal        int64           `json:"order_total"`
	PointsEarned      int64           `json:"points_earned"`
	PointsRedeemed    int64           `json:"points_redeemed"`
	NetPointsChange   int64           `json:"net_points_change"`
	RedemptionApplied bool            `json:"redemption_applied"`
	NotificationID    uint64          `json:"notification_id"`
	Payment           payment.Attempt `json:"payment"`
	Replayed          bool            `json:"replayed,omitempty"`
}

// PaymentAuthorizer authorizes a card.  *payment.Authorizer implements it.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, in payment.Instrument) (payment.Attempt, error)
}

// NotificationPublisher hands committed notifications to the delivery
// side.  Failures never affect the checkout result.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n model.Notification) error
}

// CheckoutObserver receives the outcome and duration of every checkout.
type CheckoutObserver interface {
	ObserveCheckout(outcome string, elapsed time.Duration)
}

// CheckoutService runs checkouts against a repository.Store.
type CheckoutService struct {
	store     repository.Store
	payments  PaymentAuthorizer
	publisher NotificationPublisher
	observer  CheckoutObserver
	log       logrus.FieldLogger
	now       func() time.Time
	newID     func() string
}

// Option customizes a CheckoutService.
type Option func(*CheckoutService)

// WithPublisher sets the post-commit notification publisher.
func WithPublisher(p NotificationPublisher) Option {
	return func(s *CheckoutService) { s.publisher = p }
}

// WithObserver sets the checkout observer.
func WithObserver(o CheckoutObserver) Option {
	return func(s *CheckoutService) { s.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *CheckoutService) { s.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *CheckoutService) { s.now = now }
}

// NewCheckoutService builds a CheckoutService.
func NewCheckoutService(store repository.Store, payments PaymentAuthorizer, opts ...Option) *CheckoutService {
	s := &CheckoutService{
		store:    store,
		payments: payments,
		log:      logrus.StandardLogger(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout authorizes payment and then, in one transaction, reserves every
// slot in the cart at the server-computed price, records the concession
// order at catalog prices, applies the loyalty delta and writes a
// notification.  Either all of it commits or none of it does.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	start := s.now()
	receipt, err := s.checkout(ctx, req)
	if s.observer != nil {
		s.observer.ObserveCheckout(Outcome(err), s.now().Sub(start))
	}
	return receipt, err
}

// Outcome names the result of a checkout for metrics and logs.
func Outcome(err error) string {
	var (
		ve *ValidationError
		pd *PaymentDeclinedError
		sc *SlotConflictError
		nf *ItemNotFoundError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "validation_error"
	case errors.As(err, &pd):
		return "payment_declined"
	case errors.As(err, &sc):
		return "slot_conflict"
	case errors.As(err, &nf):
		return "item_not_found"
	default:
		return "internal_error"
	}
}

type cart struct {
	reservations []CartItem
	products     []CartItem
}

func (s *CheckoutService) checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	c, err := partition(req.Items)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(req.IdempotencyKey)
	if len(key) > 128 {
		return nil, invalidf("idempotency key must be at most 128 characters")
	}
	if key != "" {
		if r, err := s.replay(ctx, key, req.AccountID); r != nil || err != nil {
			return r, err
		}
	}

	attempt, err := s.payments.Authorize(ctx, req.Payment)
	if err != nil {
		var declined *payment.DeclinedError
		switch {
		case errors.As(err, &declined):
			s.log.WithFields(logrus.Fields{"card": attempt.MaskedNumber, "reason": declined.Reason}).Info("payment declined")
			return nil, &PaymentDeclinedError{Reason: declined.Reason}
		case errors.Is(err, payment.ErrInvalidInstrument):
			return nil, &ValidationError{Msg: err.Error()}
		default:
			return nil, internal(err)
		}
	}

	checkoutID := s.newID()
	log := s.log.WithField("checkout_id", checkoutID)
	if req.AccountID != nil {
		log = log.WithField("account_id", *req.AccountID)
	}

	var (
		receipt *Receipt
		note    model.Notification
	)
	err = s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if key != "" {
			if err := tx.ClaimRequest(ctx, key, req.AccountID); err != nil {
				return err
			}
		}
		r, n, err := s.apply(ctx, tx, checkoutID, req, c)
		if err != nil {
			return err
		}
		r.Payment = attempt
		if key != "" {
			body, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := tx.SaveReceipt(ctx, key, body); err != nil {
				return err
			}
		}
		receipt, note = r, n
		return nil
	})
	if errors.Is(err, repository.ErrDuplicateRequest) {
		// a concurrent request with the same key committed first
		r, rerr := s.replay(ctx, key, req.AccountID)
		if rerr != nil {
			return nil, rerr
		}
		if r == nil {
			return nil, &InternalError{Err: fmt.Errorf("idempotency key %q claimed without a receipt", key)}
		}
		return r, nil
	}
	if err != nil {
		if Outcome(err) == "internal_error" {
			log.WithError(err).Error("checkout failed")
		} else {
			log.WithError(err).Info("checkout rejected")
		}
		return nil, internal(err)
	}

	log.WithFields(logrus.Fields{
		"reservations": receipt.ReservationCount,
		"orders":       receipt.OrderCount,
		"net_points":   receipt.NetPointsChange,
	}).Info("checkout committed")

	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, note); err != nil {
			log.WithError(err).Warn("notification publish failed")
		}
	}
	return receipt, nil
}

// replay returns the stored receipt for key, or nil when there is none.
func (s *CheckoutService) replay(ctx context.Context, key string, accountID *uint64) (*Receipt, error) {
	body, owner, found, err := s.store.LookupReceipt(ctx, key)
	if err != nil {
		return nil, internal(err)
	}
	if !found || len(body) == 0 {
		return nil, nil
	}
	if !sameAccount(owner, accountID) {
		return nil, invalidf("idempotency key was used by a different account")
	}
	var r Receipt
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, internal(fmt.Errorf("decode stored receipt: %w", err))
	}
	r.Replayed = true
	return &r, nil
}

func sameAccount(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// partition validates the cart structurally and splits it by kind.
// Reservation items come back ordered by show and slot position so that
// concurrent checkouts insert overlapping slots in the same order.
func partition(items []CartItem) (cart, error) {
	var c cart
	qty := make(map[uint64]int)
	if len(items) == 0 {
		return c, invalidf("cart is empty")
	}
	if len(items) > MaxCartItems {
		return c, invalidf("cart may hold at most %d items", MaxCartItems)
	}
	for i, it := range items {
		switch it.Kind {
		case KindReservation:
			if it.ShowID == 0 {
				return c, invalidf("item %d: show_id is required", i)
			}
			if _, err := pricing.ParseSlot(it.SlotID); err != nil {
				return c, invalidf("item %d: %v", i, err)
			}
			if strings.TrimSpace(it.VehicleClass) == "" {
				return c, invalidf("item %d: vehicle_class is required", i)
			}
			if it.AttendeeCount < pricing.MinAttendees || it.AttendeeCount > pricing.MaxAttendees {
				return c, invalidf("item %d: %v", i, pricing.ErrAttendeeCount)
			}
			c.reservations = append(c.reservations, it)
		case KindProduct:
			if it.ProductID == 0 {
				return c, invalidf("item %d: product_id is required", i)
			}
			if it.Quantity < 1 || it.Quantity > MaxQuantity {
				return c, invalidf("item %d: quantity must be between 1 and %d", i, MaxQuantity)
			}
			qty[it.ProductID] += it.Quantity
			if qty[it.ProductID] > MaxQuantity {
				return c, invalidf("product %d: at most %d may be ordered", it.ProductID, MaxQuantity)
			}
			c.products = append(c.products, it)
		default:
			return c, invalidf("item %d: unknown kind %q", i, it.Kind)
		}
	}
	sort.SliceStable(c.reservations, func(i, j int) bool {
		a, b := c.reservations[i], c.reservations[j]
		if a.ShowID != b.ShowID {
			return a.ShowID < b.ShowID
		}
		sa, _ := pricing.ParseSlot(a.SlotID)
		sb, _ := pricing.ParseSlot(b.SlotID)
		if sa.Row != sb.Row {
			return sa.Row < sb.Row
		}
		return sa.Col < sb.Col
	})
	return c, nil
}

// apply performs every write of a checkout through tx.
func (s *CheckoutService) apply(ctx context.Context, tx repository.Tx, checkoutID string, req CheckoutRequest, c cart) (*Receipt, model.Notification, error) {
	now := s.now().UTC()
	r := &Receipt{CheckoutID: checkoutID, AccountID: req.AccountID, ReservationIDs: []uint64{}}

	reserved, err := s.reserve(ctx, tx, checkoutID, req.AccountID, c.reservations, now)
	if err != nil {
		return nil, model.Notification{}, err
	}
	for _, res := range reserved {
		r.ReservationIDs = append(r.ReservationIDs, res.ID)
		r.TicketTotal += res.Price
	}
	r.ReservationCount = len(reserved)

	var order *model.Order
	if len(c.products) > 0 {
		order, err = resolveOrder(ctx, tx, checkoutID, req, c.products, now)
		if err != nil {
			return nil, model.Notification{}, err
		}
	}

	if req.AccountID != nil {
		acct, err := tx.LockAccount(ctx, *req.AccountID)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, model.Notification{}, &ItemNotFoundError{Kind: "account", ID: *req.AccountID}
		}
		if err != nil {
			return nil, model.Notification{}, err
		}
		var subtotal int64
		if order != nil {
			subtotal = order.TotalAmount
		}
		r.PointsEarned = int64(PointsPerReservation*len(reserved)) + subtotal/2
		if req.RedeemPoints && acct.PointsBalance >= RedemptionCost {
			r.PointsRedeemed = RedemptionCost
			r.RedemptionApplied = true
		}
		r.NetPointsChange = r.PointsEarned - r.PointsRedeemed
		if r.NetPointsChange != 0 {
			if err := tx.ApplyPointsDelta(ctx, acct.ID, r.NetPointsChange); err != nil {
				return nil, model.Notification{}, fmt.Errorf("apply points delta: %w", err)
			}
		}
	}

	if order != nil {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return nil, model.Notification{}, fmt.Errorf("insert order: %w", err)
		}
		id := order.ID
		r.OrderID = &id
		r.OrderCount = 1
		r.OrderTotal = order.TotalAmount
	}

	note := model.Notification{
		AccountID: req.AccountID,
		Title:     "Checkout confirmed",
		Message:   summarize(reserved, order, r),
		Type:      "checkout",
		CreatedAt: now,
	}
	if err := tx.InsertNotification(ctx, &note); err != nil {
		return nil, model.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	r.NotificationID = note.ID
	return r, note, nil
}

// reserve prices and inserts every reservation item.  Shows are read once
// per transaction.
func (s *CheckoutService) reserve(ctx context.Context, tx repository.Tx, checkoutID string, accountID *uint64, items []CartItem, now time.Time) ([]model.Reservation, error) {
	shows := make(map[uint64]*model.Show)
	out := make([]model.Reservation, 0, len(items))
	for _, it := range items {
		show, ok := shows[it.ShowID]
		if !ok {
			var err error
			show, err = tx.GetShow(ctx, it.ShowID)
			if errors.Is(err, repository.ErrShowNotFound) {
				return nil, &ItemNotFoundError{Kind: "show", ID: it.ShowID}
			}
			if err != nil {
				return nil, err
			}
			if !show.Bookable() {
				return nil, invalidf("show %d is not open for booking", show.ID)
			}
			shows[it.ShowID] = show
		}

		quote, err := pricing.QuoteSlot(*show, it.SlotID, it.AttendeeCount)
		if err != nil {
			if errors.Is(err, pricing.ErrInvalidSlot) || errors.Is(err, pricing.ErrAttendeeCount) {
				return nil, &ValidationError{Msg: err.Error()}
			}
			return nil, err
		}

		taken, err := tx.ActiveReservationExists(ctx, show.ID, quote.SlotID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &SlotConflictError{ShowID: show.ID, SlotID: quote.SlotID}
		}
		res := model.Reservation{
			CheckoutID:    checkoutID,
			AccountID:     accountID,
			ShowID:        show.ID,
			SlotID:        quote.SlotID,
			VehicleClass:  strings.ToLower(strings.TrimSpace(it.VehicleClass)),
			Tier:          quote.Tier,
			AttendeeCount: it.AttendeeCount,
			Price:         quote.Amount,
			Status:        model.ReservationActive,
			CreatedAt:     now,
		}
		if err := tx.InsertReservation(ctx, &res); err != nil {
			if errors.Is(err, repository.ErrSlotTaken) {
				return nil, &SlotConflictError{ShowID: show.ID, SlotID: quote.SlotID}
			}
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// resolveOrder builds the order from catalog rows read inside tx.  Lines
// for the same product are merged.
func resolveOrder(ctx context.Context, tx repository.Tx, checkoutID string, req CheckoutRequest, items []CartItem, now time.Time) (*model.Order, error) {
	qty := make(map[uint64]int)
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		if _, seen := qty[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	catalog, err := tx.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	order := &model.Order{
		CheckoutID: checkoutID,
		AccountID:  req.AccountID,
		Status:     model.OrderPending,
		Location:   req.Location,
		CreatedAt:  now,
	}
	for _, id := range ids {
		p, ok := catalog[id]
		if !ok || !p.IsActive {
			return nil, &ItemNotFoundError{Kind: "product", ID: id}
		}
		item := model.OrderItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty[id]}
		if p.Price > 0 && int64(item.Quantity) > math.MaxInt64/p.Price {
			return nil, invalidf("product %d: line total is too large", id)
		}
		line := item.LineTotal()
		if order.TotalAmount > math.MaxInt64-line {
			return nil, invalidf("order total is too large")
		}
		order.Items = append(order.Items, item)
		order.TotalAmount += line
	}
	return order, nil
}

func summarize(reserved []model.Reservation, order *model.Order, r *Receipt) string {
	var parts []string
	if len(reserved) > 0 {
		slots := make([]string, 0, len(reserved))
		for _, res := range reserved {
			slots = append(slots, fmt.Sprintf("%s (show %d)", res.SlotID, res.ShowID))
		}
		parts = append(parts, fmt.Sprintf("%d slot(s) reserved: %s", len(reserved), strings.Join(slots, ", ")))
	}
	if order != nil {
		parts = append(parts, fmt.Sprintf("concession order of %d item(s) totalling %d", len(order.Items), order.TotalAmount))
	}
	if r.AccountID != nil {
		parts = append(parts, fmt.Sprintf("points %+d", r.NetPointsChange))
	}
	return strings.Join(parts, "; ") + "."
}
