package comm

import (
	"time"

	"github.com/avvvet/tambola-services/internal/gamesvc/models"
)

type PlayersUpdated struct {
	Players []models.PlayerView `json:"players"`
}

type PrizesUpdated struct {
	Prizes           models.Prizes `json:"prizes"`
	TotalTicketsSold int           `json:"totalTicketsSold"`
	TotalRevenue     int64         `json:"totalRevenue"`
}

type GameStarted struct {
	GameId       string `json:"gameId"`
	StartsInMs   int64  `json:"startsInMs"`
	DrawInterval int    `json:"drawInterval"`
}

type GameInfo struct {
	GameId         string            `json:"gameId"`
	Status         models.GameStatus `json:"status"`
	PricePerTicket int64             `json:"pricePerTicket"`
	Prizes         models.Prizes     `json:"prizes"`
	Winners        models.Winners    `json:"winners"`
	Options        models.Options    `json:"options"`
	DrawnNumbers   []int             `json:"drawnNumbers"`
	Remaining      int               `json:"remaining"`
	Paused         bool              `json:"paused"`
}

type NumberDrawn struct {
	Number       int   `json:"number"`
	DrawnNumbers []int `json:"drawnNumbers"`
	Remaining    int   `json:"remaining"`
}

type ClaimSuccess struct {
	PlayerId      string           `json:"playerId"`
	PlayerName    string           `json:"playerName"`
	ClaimType     models.ClaimType `json:"claimType"`
	LineType      models.Category  `json:"lineType"`
	PrizeMessage  string           `json:"prizeMessage"`
	PrizeAmount   int64            `json:"prizeAmount"`
	LineIndex     *int             `json:"lineIndex,omitempty"`
	TicketIndex   int              `json:"ticketIndex"`
	HousePosition int              `json:"housePosition,omitempty"`
}

type ClaimFailed struct {
	ClaimType models.ClaimType `json:"claimType"`
	Reason    string           `json:"reason"`
}

type BogeyCalled struct {
	PlayerName     string           `json:"playerName"`
	ClaimType      models.ClaimType `json:"claimType"`
	Reason         string           `json:"reason"`
	PenaltySeconds int              `json:"penaltySeconds"`
}

type PenaltyStarted struct {
	Seconds int       `json:"seconds"`
	Until   time.Time `json:"until"`
}

type GamePaused struct {
	Seconds  int       `json:"seconds"`
	Reason   string    `json:"reason"`
	ResumeAt time.Time `json:"resumeAt"`
}

type GameResumed struct {
	GameId string `json:"gameId"`
}

type PauseRequested struct {
	PlayerName string `json:"playerName"`
}

type GameCompleted struct {
	Reason       string         `json:"reason"`
	Winners      models.Winners `json:"winners"`
	TotalNumbers int            `json:"totalNumbers"`
}

type GameCancelled struct {
	Reason string `json:"reason"`
}

// PlayerPresence covers player_left, player_disconnected, player_reconnected
// and their host_* counterparts.
type PlayerPresence struct {
	PlayerId   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type ErrorEvent struct {
	Error string `json:"error"`
}

// Announcement is published on the announce subject for the voice caller.
type Announcement struct {
	GameId string `json:"gameId"`
	Text   string `json:"text"`
}

// Connected is the first message on a new socket.
type Connected struct {
	SocketId string `json:"socketId"`
}
