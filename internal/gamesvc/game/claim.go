package game

import (
	"fmt"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/gamesvc/claim"
	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"github.com/avvvet/tambola-services/internal/gamesvc/prize"
	log "github.com/sirupsen/logrus"
)

func claimEvaluate(p *models.Player, req comm.ClaimRequest, g *Game) claim.Result {
	return claim.Evaluate(p, claim.Request{Type: req.ClaimType, Line: req.Line()}, g.opts, g.drawn, &g.winners)
}

func (g *Game) rejectClaim(p *models.Player, req comm.ClaimRequest, res claim.Result) {
	log.Debugf("game %s: %s claim by %s rejected: %s", g.ID, req.ClaimType, p.Name, res.Reason)
	g.send(p.SocketID, comm.EventClaimFailed, comm.ClaimFailed{ClaimType: req.ClaimType, Reason: res.Reason})

	if !g.opts.EnableBogey || res.Code != claim.CodeIncomplete {
		return
	}
	secs := g.opts.BogeyPenaltySeconds
	p.PenaltyUntil = g.m.now().Add(g.m.settings.seconds(secs))

	g.broadcast(comm.EventBogeyCalled, comm.BogeyCalled{
		PlayerName:     p.Name,
		ClaimType:      req.ClaimType,
		Reason:         res.Reason,
		PenaltySeconds: secs,
	})
	g.send(p.SocketID, comm.EventPenaltyStarted, comm.PenaltyStarted{Seconds: secs, Until: p.PenaltyUntil})
}

// awardClaim settles the prize for a claim the evaluator accepted and
// returns the amount paid.
func (g *Game) awardClaim(p *models.Player, req comm.ClaimRequest, res claim.Result) int64 {
	name := res.Category.DisplayName()
	amount := g.prizes.Amount(res.Category)
	message := fmt.Sprintf("%s won %s!", p.Name, name)

	if res.Category == models.House {
		amount = prize.HousePayout(g.prizes.House, g.opts.HouseReductionPercent, res.HousePosition)
		g.winners.House[len(g.winners.House)-1].Amount = amount
		if g.opts.EnableMultipleHouses {
			message = fmt.Sprintf("%s won %s #%d!", p.Name, name, res.HousePosition)
		}
	}
	log.Infof("game %s: %s (prize %d)", g.ID, message, amount)

	event := comm.ClaimSuccess{
		PlayerId:      p.SocketID,
		PlayerName:    p.Name,
		ClaimType:     req.ClaimType,
		LineType:      res.Category,
		PrizeMessage:  message,
		PrizeAmount:   amount,
		TicketIndex:   res.TicketIndex,
		HousePosition: res.HousePosition,
	}
	if res.LineIndex >= 0 {
		line := res.LineIndex
		event.LineIndex = &line
	}
	g.broadcast(comm.EventClaimSuccess, event)
	g.announce(fmt.Sprintf("%s wins %s", p.Name, name))

	g.checkCompletion()
	if g.status == models.StatusRunning {
		g.pause(g.m.settings.ClaimPause, fmt.Sprintf("%s claimed by %s", name, p.Name), false)
	}
	return amount
}
