package ticket

import (
	"fmt"

	"github.com/avvvet/tambola-services/internal/gamesvc/models"
)

// ColumnRange returns the inclusive decade reserved for column c.
func ColumnRange(c int) (int, int) {
	switch {
	case c == 0:
		return 1, 9
	case c == models.TicketCols-1:
		return 80, models.MaxNumber
	default:
		return c * 10, c*10 + 9
	}
}

// Validate checks the structural rules of a single ticket.
func Validate(t models.Ticket) error {
	seen := make(map[int]bool, 15)
	total := 0

	for r := 0; r < models.TicketRows; r++ {
		if n := len(t.Row(r)); n != models.NumbersPerRow {
			return fmt.Errorf("row %d has %d numbers, want %d", r, n, models.NumbersPerRow)
		}
	}

	for c := 0; c < models.TicketCols; c++ {
		lo, hi := ColumnRange(c)
		filled, prev := 0, 0
		for r := 0; r < models.TicketRows; r++ {
			n := t[r][c]
			if n == 0 {
				continue
			}
			if n < lo || n > hi {
				return fmt.Errorf("number %d outside column %d range %d-%d", n, c, lo, hi)
			}
			if n <= prev {
				return fmt.Errorf("column %d not ascending at row %d", c, r)
			}
			if seen[n] {
				return fmt.Errorf("number %d repeated", n)
			}
			seen[n] = true
			prev = n
			filled++
		}
		if filled == 0 {
			return fmt.Errorf("column %d is empty", c)
		}
		total += filled
	}

	if total != models.TicketRows*models.NumbersPerRow {
		return fmt.Errorf("ticket has %d numbers, want 15", total)
	}
	return nil
}

// ValidateBatch validates each ticket and checks no number is shared.
func ValidateBatch(tickets []models.Ticket) error {
	owner := make(map[int]int)
	for i, t := range tickets {
		if err := Validate(t); err != nil {
			return fmt.Errorf("ticket %d: %w", i, err)
		}
		for _, n := range t.Numbers() {
			if j, ok := owner[n]; ok {
				return fmt.Errorf("number %d on tickets %d and %d", n, j, i)
			}
			owner[n] = i
		}
	}
	return nil
}
