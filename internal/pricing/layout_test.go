package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

func TestParseSlot(t *testing.T) {
	s, err := ParseSlot("A-3")
	require.NoError(t, err)
	assert.Equal(t, Slot{Row: 0, Col: 3}, s)
	assert.Equal(t, "A-3", s.String())

	s, err = ParseSlot(" d-12 ")
	require.NoError(t, err)
	assert.Equal(t, Slot{Row: 3, Col: 12}, s)

	for _, bad := range []string{"", "A", "A3", "AA-1", "1-1", "A-0", "A-x", "A--1"} {
		_, err := ParseSlot(bad)
		assert.ErrorIs(t, err, ErrInvalidSlot, "label=%q", bad)
	}
}

func TestLayout_TierOf(t *testing.T) {
	l := Layout{Rows: 5, Cols: 6, VIPRows: 2}

	tests := []struct {
		label string
		want  model.Tier
	}{
		{"A-1", model.TierEconomy}, // outer column beats front row
		{"A-6", model.TierEconomy},
		{"A-2", model.TierVIP},
		{"B-5", model.TierVIP},
		{"C-3", model.TierStandard},
		{"D-4", model.TierStandard},
		{"E-3", model.TierEconomy}, // rear row
		{"C-1", model.TierEconomy},
	}
	for _, tt := range tests {
		s, err := l.Resolve(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.want, l.TierOf(s), tt.label)
	}
}

func TestLayout_Resolve(t *testing.T) {
	l := Layout{Rows: 2, Cols: 3}
	_, err := l.Resolve("B-3")
	assert.NoError(t, err)
	_, err = l.Resolve("C-1")
	assert.ErrorIs(t, err, ErrInvalidSlot)
	_, err = l.Resolve("A-4")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestLayout_Slots(t *testing.T) {
	l := Layout{Rows: 2, Cols: 3}
	slots := l.Slots()
	require.Len(t, slots, 6)
	assert.Equal(t, "A-1", slots[0].String())
	assert.Equal(t, "B-3", slots[5].String())
	assert.Nil(t, Layout{}.Slots())
}
