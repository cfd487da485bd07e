package comm

import "github.com/avvvet/tambola-services/internal/gamesvc/models"

type GameRef struct {
	GameId string `json:"gameId"`
}

type CreateGameRequest struct {
	HostName       string         `json:"hostName"`
	PricePerTicket int64          `json:"pricePerTicket"`
	NumTickets     int            `json:"numTickets"`
	GameOptions    models.Options `json:"gameOptions"`
}

type JoinGameRequest struct {
	GameId     string `json:"gameId"`
	PlayerName string `json:"playerName"`
	NumTickets int    `json:"numTickets"`
}

type ClaimRequest struct {
	GameId        string           `json:"gameId"`
	ClaimType     models.ClaimType `json:"claimType"`
	Lines         []int            `json:"lines,omitempty"`
	MarkedNumbers [][]int          `json:"markedNumbers"` // per ticket
}

// Line is the row a line claim targets; the first entry of Lines, default 0.
func (r ClaimRequest) Line() int {
	if len(r.Lines) == 0 {
		return 0
	}
	return r.Lines[0]
}

type PauseRequest struct {
	GameId  string `json:"gameId"`
	Seconds int    `json:"seconds"`
}
