package models

import "time"

// Player is a room member. Tickets never change after creation.
type Player struct {
	Name           string
	SocketID       string
	Tickets        []Ticket
	Marked         []map[int]bool // per ticket
	IsHost         bool
	Connected      bool
	DisconnectedAt time.Time
	PenaltyUntil   time.Time
	JoinedAt       time.Time
}

func NewPlayer(name, socketID string, tickets []Ticket, now time.Time) *Player {
	marked := make([]map[int]bool, len(tickets))
	for i := range marked {
		marked[i] = make(map[int]bool)
	}
	return &Player{
		Name:      name,
		SocketID:  socketID,
		Tickets:   tickets,
		Marked:    marked,
		Connected: true,
		JoinedAt:  now,
	}
}

// Mark replaces the numbers dabbed on ticket i with nums, so a number left
// out of a later claim is un-dabbed. Numbers not on the ticket are ignored.
func (p *Player) Mark(i int, nums []int) {
	if i < 0 || i >= len(p.Tickets) {
		return
	}
	marked := make(map[int]bool, len(nums))
	for _, n := range nums {
		if p.Tickets[i].Contains(n) {
			marked[n] = true
		}
	}
	p.Marked[i] = marked
}

// PlayerView is the roster entry broadcast to room members.
type PlayerView struct {
	Name        string `json:"name"`
	TicketCount int    `json:"ticketCount"`
	IsHost      bool   `json:"isHost"`
}
