package models

// Category is a prize category a claim settles.
type Category string

const (
	TopLine    Category = "topLine"
	MiddleLine Category = "middleLine"
	BottomLine Category = "bottomLine"
	Corners    Category = "corners"
	Early5     Category = "early5"
	House      Category = "house"
)

// LineCategories maps a row index to its line prize.
var LineCategories = [TicketRows]Category{TopLine, MiddleLine, BottomLine}

var categoryNames = map[Category]string{
	TopLine:    "Top Line",
	MiddleLine: "Middle Line",
	BottomLine: "Bottom Line",
	Corners:    "Corners",
	Early5:     "Early 5",
	House:      "Full House",
}

// DisplayName is the human readable prize name.
func (c Category) DisplayName() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return string(c)
}

// ClaimType is what a player asks to be checked.
type ClaimType string

const (
	ClaimLine    ClaimType = "line"
	ClaimCorners ClaimType = "corners"
	ClaimEarly5  ClaimType = "early5"
	ClaimHouse   ClaimType = "house"
)

// Prizes holds the amount per category in whole currency units.
type Prizes struct {
	TopLine    int64 `json:"topLine"`
	MiddleLine int64 `json:"middleLine"`
	BottomLine int64 `json:"bottomLine"`
	Corners    int64 `json:"corners"`
	House      int64 `json:"house"`
	Early5     int64 `json:"early5"`
}

func (p Prizes) Amount(c Category) int64 {
	switch c {
	case TopLine:
		return p.TopLine
	case MiddleLine:
		return p.MiddleLine
	case BottomLine:
		return p.BottomLine
	case Corners:
		return p.Corners
	case Early5:
		return p.Early5
	case House:
		return p.House
	}
	return 0
}

func (p Prizes) Total() int64 {
	return p.TopLine + p.MiddleLine + p.BottomLine + p.Corners + p.House + p.Early5
}

// HouseWin is one entry of the ordered full house winners list.
type HouseWin struct {
	PlayerName  string `json:"playerName"`
	Position    int    `json:"position"`
	Amount      int64  `json:"amount"`
	TicketIndex int    `json:"ticketIndex"`
}

// Winners records display names per category. Empty means unclaimed.
type Winners struct {
	TopLine    string     `json:"topLine"`
	MiddleLine string     `json:"middleLine"`
	BottomLine string     `json:"bottomLine"`
	Corners    string     `json:"corners"`
	Early5     string     `json:"early5"`
	House      []HouseWin `json:"house"`
}

// Winner returns the single winner of a non-house category.
func (w *Winners) Winner(c Category) string {
	switch c {
	case TopLine:
		return w.TopLine
	case MiddleLine:
		return w.MiddleLine
	case BottomLine:
		return w.BottomLine
	case Corners:
		return w.Corners
	case Early5:
		return w.Early5
	}
	return ""
}

func (w *Winners) SetWinner(c Category, name string) {
	switch c {
	case TopLine:
		w.TopLine = name
	case MiddleLine:
		w.MiddleLine = name
	case BottomLine:
		w.BottomLine = name
	case Corners:
		w.Corners = name
	case Early5:
		w.Early5 = name
	}
}

func (w *Winners) HasHouseWinner(name string) bool {
	for _, h := range w.House {
		if h.PlayerName == name {
			return true
		}
	}
	return false
}

// Clone returns a copy safe to hand outside the room lock.
func (w Winners) Clone() Winners {
	c := w
	c.House = append([]HouseWin(nil), w.House...)
	if c.House == nil {
		c.House = []HouseWin{}
	}
	return c
}
