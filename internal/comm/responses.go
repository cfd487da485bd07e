package comm

import "github.com/avvvet/tambola-services/internal/gamesvc/models"

type CreateGameResponse struct {
	Ack
	GameId  string              `json:"gameId,omitempty"`
	Tickets []models.Ticket     `json:"tickets,omitempty"`
	Players []models.PlayerView `json:"players,omitempty"`
}

type GameDetailsResponse struct {
	Ack
	GameId           string            `json:"gameId,omitempty"`
	PricePerTicket   int64             `json:"pricePerTicket"`
	Prizes           models.Prizes     `json:"prizes"`
	PlayerCount      int               `json:"playerCount"`
	TotalTicketsSold int               `json:"totalTicketsSold"`
	TotalRevenue     int64             `json:"totalRevenue"`
	Options          models.Options    `json:"options"`
	Status           models.GameStatus `json:"status,omitempty"`
}

type JoinGameResponse struct {
	Ack
	Tickets     []models.Ticket     `json:"tickets,omitempty"`
	Players     []models.PlayerView `json:"players,omitempty"`
	Reconnected bool                `json:"reconnected"`
	WasHost     bool                `json:"wasHost"`
}

type ClaimResponse struct {
	Ack
	Valid         bool            `json:"valid"`
	Reason        string          `json:"reason,omitempty"`
	LineType      models.Category `json:"lineType,omitempty"`
	TicketIndex   *int            `json:"ticketIndex,omitempty"`
	HousePosition int             `json:"housePosition,omitempty"`
	PrizeAmount   int64           `json:"prizeAmount,omitempty"`
}
