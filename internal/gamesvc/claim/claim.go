// Package claim decides whether a player's tickets satisfy a claimed pattern.
package claim

import (
	"fmt"

	"github.com/avvvet/tambola-services/internal/gamesvc/models"
)

const early5Needed = 5

type Code int

const (
	CodeOK Code = iota
	CodeInvalid
	CodeNotAllowed
	CodeAlreadyClaimed
	CodeIncomplete
)

type Request struct {
	Type models.ClaimType
	Line int // row index for line claims
}

type Result struct {
	Valid         bool
	Code          Code
	Reason        string
	Category      models.Category
	LineIndex     int
	TicketIndex   int
	HousePosition int
}

func reject(code Code, cat models.Category, format string, args ...any) Result {
	return Result{Code: code, Category: cat, Reason: fmt.Sprintf(format, args...), TicketIndex: -1}
}

// Category resolves the prize category a request targets.
func Category(req Request) (models.Category, error) {
	switch req.Type {
	case models.ClaimLine:
		if req.Line < 0 || req.Line >= models.TicketRows {
			return "", fmt.Errorf("invalid line %d", req.Line)
		}
		return models.LineCategories[req.Line], nil
	case models.ClaimCorners:
		return models.Corners, nil
	case models.ClaimEarly5:
		return models.Early5, nil
	case models.ClaimHouse:
		return models.House, nil
	}
	return "", fmt.Errorf("invalid claim type %q", req.Type)
}

// Evaluate scans the player's tickets in order and settles the claim on the
// first ticket that completes the pattern. A number only counts when it has
// been drawn and the player marked it. On success the winners record is
// updated; nothing else is touched.
func Evaluate(p *models.Player, req Request, opts models.Options, drawn []int, w *models.Winners) Result {
	cat, err := Category(req)
	if err != nil {
		return reject(CodeInvalid, "", "Invalid claim: %s", err)
	}
	name := cat.DisplayName()

	if cat == models.Early5 && !opts.EnableEarly5 {
		return reject(CodeNotAllowed, cat, "%s is not enabled for this game", name)
	}

	if cat == models.House {
		capacity := opts.HouseCapacity()
		switch {
		case !opts.EnableMultipleHouses && len(w.House) > 0:
			return reject(CodeAlreadyClaimed, cat, "%s already claimed", name)
		case len(w.House) >= capacity:
			return reject(CodeAlreadyClaimed, cat, "All %d %s prizes already claimed", capacity, name)
		case w.HasHouseWinner(p.Name):
			return reject(CodeAlreadyClaimed, cat, "You have already claimed a %s", name)
		}
	} else if w.Winner(cat) != "" {
		return reject(CodeAlreadyClaimed, cat, "%s already claimed", name)
	}

	if len(p.Tickets) == 0 {
		return reject(CodeInvalid, cat, "No tickets found")
	}

	called := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		called[n] = true
	}

	for i, t := range p.Tickets {
		var marked map[int]bool
		if i < len(p.Marked) {
			marked = p.Marked[i]
		}
		if !complete(t, cat, req.Line, called, marked) {
			continue
		}

		res := Result{Valid: true, Code: CodeOK, Category: cat, TicketIndex: i, LineIndex: -1}
		switch cat {
		case models.House:
			res.HousePosition = len(w.House) + 1
			w.House = append(w.House, models.HouseWin{
				PlayerName:  p.Name,
				Position:    res.HousePosition,
				TicketIndex: i,
			})
		default:
			if req.Type == models.ClaimLine {
				res.LineIndex = req.Line
			}
			w.SetWinner(cat, p.Name)
		}
		return res
	}

	return reject(CodeIncomplete, cat, "%s not complete on any ticket", name)
}

func complete(t models.Ticket, cat models.Category, line int, called, marked map[int]bool) bool {
	hit := func(n int) bool { return called[n] && marked[n] }

	var need []int
	switch cat {
	case models.TopLine, models.MiddleLine, models.BottomLine:
		need = t.Row(line)
	case models.Corners:
		need = t.Corners()
	case models.Early5:
		satisfied := 0
		for _, n := range t.Numbers() {
			if hit(n) {
				satisfied++
			}
		}
		return satisfied >= early5Needed
	case models.House:
		need = t.Numbers()
	default:
		return false
	}

	for _, n := range need {
		if !hit(n) {
			return false
		}
	}
	return true
}
