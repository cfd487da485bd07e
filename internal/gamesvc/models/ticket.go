package models

import "encoding/json"

const (
	TicketRows    = 3
	TicketCols    = 9
	NumbersPerRow = 5
	MaxNumber     = 90
)

// Ticket is a 3x9 tambola grid. A zero cell is empty.
type Ticket [TicketRows][TicketCols]int

// Numbers returns the filled cells in row-major order.
func (t Ticket) Numbers() []int {
	nums := make([]int, 0, TicketRows*NumbersPerRow)
	for r := 0; r < TicketRows; r++ {
		nums = append(nums, t.Row(r)...)
	}
	return nums
}

// Row returns the filled cells of row r, left to right.
func (t Ticket) Row(r int) []int {
	nums := make([]int, 0, NumbersPerRow)
	for c := 0; c < TicketCols; c++ {
		if t[r][c] != 0 {
			nums = append(nums, t[r][c])
		}
	}
	return nums
}

// Corners returns the filled corner cells. Empty corners are skipped.
func (t Ticket) Corners() []int {
	cells := [4]int{t[0][0], t[0][TicketCols-1], t[TicketRows-1][0], t[TicketRows-1][TicketCols-1]}
	nums := make([]int, 0, 4)
	for _, n := range cells {
		if n != 0 {
			nums = append(nums, n)
		}
	}
	return nums
}

func (t Ticket) Contains(n int) bool {
	if n <= 0 {
		return false
	}
	for r := 0; r < TicketRows; r++ {
		for c := 0; c < TicketCols; c++ {
			if t[r][c] == n {
				return true
			}
		}
	}
	return false
}

// MarshalJSON renders empty cells as null, the shape board clients render.
func (t Ticket) MarshalJSON() ([]byte, error) {
	rows := make([][]*int, TicketRows)
	for r := range rows {
		rows[r] = make([]*int, TicketCols)
		for c := 0; c < TicketCols; c++ {
			if t[r][c] != 0 {
				n := t[r][c]
				rows[r][c] = &n
			}
		}
	}
	return json.Marshal(rows)
}

func (t *Ticket) UnmarshalJSON(data []byte) error {
	var rows [][]*int
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*t = Ticket{}
	for r := 0; r < len(rows) && r < TicketRows; r++ {
		for c := 0; c < len(rows[r]) && c < TicketCols; c++ {
			if rows[r][c] != nil {
				t[r][c] = *rows[r][c]
			}
		}
	}
	return nil
}
