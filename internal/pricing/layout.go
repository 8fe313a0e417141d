package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// MaxRows is bounded by the single letter row labels.
const MaxRows = 26

// ErrInvalidSlot is returned for slot labels that are malformed or fall
// outside the lot.
var ErrInvalidSlot = errors.New("invalid slot")

// Slot is a parsed slot position.  Row is zero based (A = 0, the front
// row); Col is one based.
type Slot struct {
	Row int
	Col int
}

// String renders the canonical label, e.g. "A-3".
func (s Slot) String() string {
	return fmt.Sprintf("%c-%d", 'A'+rune(s.Row), s.Col)
}

// ParseSlot parses labels of the form "<row letter>-<column>".  Lower case
// row letters are accepted.
func ParseSlot(label string) (Slot, error) {
	row, col, ok := strings.Cut(strings.TrimSpace(label), "-")
	if !ok || len(row) != 1 {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	r := strings.ToUpper(row)[0]
	if r < 'A' || r > 'Z' {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	c, err := strconv.Atoi(col)
	if err != nil || c < 1 {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	return Slot{Row: int(r - 'A'), Col: c}, nil
}

// Layout is the slot grid of a show.  The last row is the designated rear
// row; the first VIPRows rows are the front rows.
type Layout struct {
	Rows    int
	Cols    int
	VIPRows int
}

// LayoutOf extracts the layout of a show.
func LayoutOf(s model.Show) Layout {
	return Layout{Rows: s.SlotRows, Cols: s.SlotCols, VIPRows: s.VIPRows}
}

// Contains reports whether s lies inside the grid.
func (l Layout) Contains(s Slot) bool {
	return s.Row >= 0 && s.Row < l.Rows && s.Row < MaxRows && s.Col >= 1 && s.Col <= l.Cols
}

// Resolve parses label and checks it against the grid.
func (l Layout) Resolve(label string) (Slot, error) {
	s, err := ParseSlot(label)
	if err != nil {
		return Slot{}, err
	}
	if !l.Contains(s) {
		return Slot{}, fmt.Errorf("%w: %q is outside the lot", ErrInvalidSlot, label)
	}
	return s, nil
}

// TierOf classifies a slot.  Outer columns and the rear row are economy,
// and that rule wins over the front-row VIP rule.
func (l Layout) TierOf(s Slot) model.Tier {
	switch {
	case s.Col == 1 || s.Col == l.Cols || s.Row == l.Rows-1:
		return model.TierEconomy
	case s.Row < l.VIPRows:
		return model.TierVIP
	default:
		return model.TierStandard
	}
}

// Slots lists every slot of the grid in row-major order.
func (l Layout) Slots() []Slot {
	rows := l.Rows
	if rows > MaxRows {
		rows = MaxRows
	}
	if rows <= 0 || l.Cols <= 0 {
		return nil
	}
	out := make([]Slot, 0, rows*l.Cols)
	for r := 0; r < rows; r++ {
		for c := 1; c <= l.Cols; c++ {
			out = append(out, Slot{Row: r, Col: c})
		}
	}
	return out
}
