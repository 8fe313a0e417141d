package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/drive-in-checkout/internal/model"
	"github.com/iliyamo/drive-in-checkout/internal/pricing"
	"github.com/iliyamo/drive-in-checkout/internal/repository"
)

// CatalogReader is the read side used for quotes and listings.
// *repository.MySQLStore implements it.
type CatalogReader interface {
	GetShow(ctx context.Context, id uint64) (*model.Show, error)
	SearchShows(ctx context.Context, q repository.ShowSearchQuery) ([]model.Show, int64, error)
	OccupiedSlots(ctx context.Context, showID uint64) (map[string]bool, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// CatalogService answers quotes, slot maps and product listings.  Quotes
// are advisory: checkout recomputes every price inside its transaction.
type CatalogService struct {
	reader CatalogReader
}

// NewCatalogService builds a CatalogService.
func NewCatalogService(reader CatalogReader) *CatalogService {
	return &CatalogService{reader: reader}
}

// SlotView is one slot of the availability map.
type SlotView struct {
	SlotID    string     `json:"slot_id"`
	Tier      model.Tier `json:"tier"`
	UnitPrice int64      `json:"unit_price"`
	Occupied  bool       `json:"occupied"`
}

// SlotMap is the availability map of a show.
type SlotMap struct {
	Show  model.Show `json:"show"`
	Slots []SlotView `json:"slots"`
}

// Quote prices one slot for attendees people using the show's current base
// price.
func (s *CatalogService) Quote(ctx context.Context, showID uint64, slotID string, attendees int) (pricing.Quote, error) {
	show, err := s.show(ctx, showID)
	if err != nil {
		return pricing.Quote{}, err
	}
	q, err := pricing.QuoteSlot(*show, slotID, attendees)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidSlot) || errors.Is(err, pricing.ErrAttendeeCount) {
			return pricing.Quote{}, &ValidationError{Msg: err.Error()}
		}
		return pricing.Quote{}, internal(err)
	}
	return q, nil
}

// SlotMap lists every slot of a show with its tier, the single-attendee
// price and whether an active reservation holds it.  Occupancy is read
// fresh on every call.
func (s *CatalogService) SlotMap(ctx context.Context, showID uint64) (*SlotMap, error) {
	show, err := s.show(ctx, showID)
	if err != nil {
		return nil, err
	}
	occupied, err := s.reader.OccupiedSlots(ctx, showID)
	if err != nil {
		return nil, internal(err)
	}
	layout := pricing.LayoutOf(*show)
	slots := layout.Slots()
	out := &SlotMap{Show: *show, Slots: make([]SlotView, 0, len(slots))}
	for _, slot := range slots {
		tier := layout.TierOf(slot)
		price, err := pricing.Price(show.BasePrice, 1, tier)
		if err != nil {
			return nil, internal(err)
		}
		out.Slots = append(out.Slots, SlotView{
			SlotID:    slot.String(),
			Tier:      tier,
			UnitPrice: price,
			Occupied:  occupied[slot.String()],
		})
	}
	return out, nil
}

// ShowPage is one page of the show listing.
type ShowPage struct {
	Shows    []model.Show `json:"shows"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Shows lists scheduled shows, optionally filtered by title and date.
func (s *CatalogService) Shows(ctx context.Context, q repository.ShowSearchQuery) (*ShowPage, error) {
	if q.Date != "" {
		if _, err := time.Parse(time.DateOnly, q.Date); err != nil {
			return nil, invalidf("date must be YYYY-MM-DD")
		}
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	shows, total, err := s.reader.SearchShows(ctx, q)
	if err != nil {
		return nil, internal(err)
	}
	return &ShowPage{Shows: shows, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// Products lists the active catalog.
func (s *CatalogService) Products(ctx context.Context) ([]model.Product, error) {
	products, err := s.reader.ListProducts(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return products, nil
}

func (s *CatalogService) show(ctx context.Context, id uint64) (*model.Show, error) {
	show, err := s.reader.GetShow(ctx, id)
	if errors.Is(err, repository.ErrShowNotFound) {
		return nil, &ItemNotFoundError{Kind: "show", ID: id}
	}
	if err != nil {
		return nil, internal(err)
	}
	return show, nil
}

// AccountReader is the read side of accounts and notifications.
type AccountReader interface {
	GetAccount(ctx context.Context, id uint64) (*model.Account, error)
	ListNotifications(ctx context.Context, accountID uint64, limit int) ([]model.Notification, error)
}

// AccountService serves the authenticated guest's own data.
type AccountService struct {
	reader AccountReader
}

// NewAccountService builds an AccountService.
func NewAccountService(reader AccountReader) *AccountService {
	return &AccountService{reader: reader}
}

// Account returns the account with its current points balance.
func (s *AccountService) Account(ctx context.Context, id uint64) (*model.Account, error) {
	a, err := s.reader.GetAccount(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, internal(err)
	}
	return a, nil
}

// Notifications lists the newest notifications for the account, broadcasts
// included.
func (s *AccountService) Notifications(ctx context.Context, id uint64, limit int) ([]model.Notification, error) {
	out, err := s.reader.ListNotifications(ctx, id, limit)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}
