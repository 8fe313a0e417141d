package model

// Tier is the pricing category of a slot.
type Tier string

const (
	TierEconomy  Tier = "economy"
	TierStandard Tier = "standard"
	TierVIP      Tier = "vip"
)

// Show is a scheduled screening as seen by the checkout core: the
// reference a guest books against, its current base ticket price and the
// slot grid of the lot.  Rows are lettered from A (front) and columns are
// numbered from 1.
//
// Fields:
//
//	ID         – primary key identifier.
//	MovieTitle – title of the movie being screened.
//	ShowDate   – screening date (YYYY-MM-DD).
//	ShowTime   – screening start time (HH:MM).
//	BasePrice  – current base price per attendee.
//	SlotRows   – number of slot rows in the lot.
//	SlotCols   – number of slots per row.
//	VIPRows    – number of front rows priced as VIP.
//	Status     – SCHEDULED, CANCELLED or FINISHED.
type Show struct {
	ID         uint64 `json:"id"`          // shows.id
	MovieTitle string `json:"movie_title"` // shows.movie_title
	ShowDate   string `json:"show_date"`   // shows.show_date
	ShowTime   string `json:"show_time"`   // shows.show_time
	BasePrice  int64  `json:"base_price"`  // shows.base_price
	SlotRows   int    `json:"slot_rows"`   // shows.slot_rows
	SlotCols   int    `json:"slot_cols"`   // shows.slot_cols
	VIPRows    int    `json:"vip_rows"`    // shows.vip_rows
	Status     string `json:"status"`      // shows.status
}

// Reference renders the human readable show reference (movie + date + time).
func (s Show) Reference() string {
	return s.MovieTitle + " @ " + s.ShowDate + " " + s.ShowTime
}

// Bookable reports whether new reservations may be taken for the show.
func (s Show) Bookable() bool { return s.Status == "" || s.Status == "SCHEDULED" }
