package ticket

import (
	"math/rand"
	"testing"

	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_TicketInvariants(t *testing.T) {
	g := NewGenerator(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		count := i%StripSize + 1
		tickets, err := g.Generate(count)
		require.NoError(t, err)
		require.Len(t, tickets, count)

		for _, tk := range tickets {
			assert.NoError(t, Validate(tk))
			assert.Len(t, tk.Numbers(), 15)
		}
	}
}

func TestGenerate_BatchNeverOverlaps(t *testing.T) {
	g := NewGenerator(rand.NewSource(7))

	for count := 2; count <= StripSize; count++ {
		tickets, err := g.Generate(count)
		require.NoError(t, err)

		seen := make(map[int]bool)
		for _, tk := range tickets {
			for _, n := range tk.Numbers() {
				assert.False(t, seen[n], "number %d reused across tickets", n)
				seen[n] = true
			}
		}
	}
}

func TestGenerate_FullStripCoversAllNumbers(t *testing.T) {
	g := NewGenerator(rand.NewSource(99))

	tickets, err := g.Generate(StripSize)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, tk := range tickets {
		for _, n := range tk.Numbers() {
			seen[n] = true
		}
	}
	assert.Len(t, seen, models.MaxNumber)
}

func TestGenerate_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1, 7} {
		_, err := Generate(n)
		assert.ErrorIs(t, err, ErrInvalidCount)
	}
}

func TestGenerate_PackageLevel(t *testing.T) {
	tickets, err := Generate(1)
	require.NoError(t, err)
	assert.NoError(t, ValidateBatch(tickets))
}

func TestPlaceRows_ExactlyFivePerRow(t *testing.T) {
	g := NewGenerator(rand.NewSource(1))

	placement, ok := g.placeRows([models.TicketCols]int{3, 1, 2, 1, 2, 1, 2, 1, 2})
	require.True(t, ok)
	for r := 0; r < models.TicketRows; r++ {
		filled := 0
		for c := 0; c < models.TicketCols; c++ {
			if placement[r][c] {
				filled++
			}
		}
		assert.Equal(t, models.NumbersPerRow, filled)
	}
}

func TestPlaceRows_Infeasible(t *testing.T) {
	g := NewGenerator(rand.NewSource(1))

	// sixteen numbers can never split into three rows of five
	_, ok := g.placeRows([models.TicketCols]int{3, 3, 2, 2, 2, 1, 1, 1, 1})
	assert.False(t, ok)
}

func TestColumnRange(t *testing.T) {
	cases := []struct {
		col    int
		lo, hi int
	}{
		{0, 1, 9},
		{1, 10, 19},
		{4, 40, 49},
		{7, 70, 79},
		{8, 80, 90},
	}
	for _, tc := range cases {
		lo, hi := ColumnRange(tc.col)
		assert.Equal(t, tc.lo, lo, "col %d", tc.col)
		assert.Equal(t, tc.hi, hi, "col %d", tc.col)
	}
}
