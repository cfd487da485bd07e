package models

import "time"

type GameStatus string

const (
	StatusLobby     GameStatus = "lobby"
	StatusRunning   GameStatus = "running"
	StatusCompleted GameStatus = "completed"
	StatusCancelled GameStatus = "cancelled"
)

func (s GameStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// GameResult is the archived summary of a finished room.
type GameResult struct {
	GameID         string     `json:"game_id" bson:"game_id"`
	Status         GameStatus `json:"status" bson:"status"`
	Reason         string     `json:"reason" bson:"reason"`
	PricePerTicket int64      `json:"price_per_ticket" bson:"price_per_ticket"`
	TicketsSold    int        `json:"tickets_sold" bson:"tickets_sold"`
	PlayerCount    int        `json:"player_count" bson:"player_count"`
	Prizes         Prizes     `json:"prizes" bson:"prizes"`
	Winners        Winners    `json:"winners" bson:"winners"`
	DrawnNumbers   []int      `json:"drawn_numbers" bson:"drawn_numbers"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	EndedAt        time.Time  `json:"ended_at" bson:"ended_at"`
}
