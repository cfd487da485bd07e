package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"github.com/avvvet/tambola-services/internal/gamesvc/prize"
	"github.com/avvvet/tambola-services/internal/monitoring"
	log "github.com/sirupsen/logrus"
)

// Game is one room. Every method that touches room state runs under mu, so
// operations and timer callbacks never interleave. Timer callbacks carry the
// sequence number they were scheduled with and give up when it has moved on.
type Game struct {
	mu sync.Mutex
	m  *Manager

	ID             string
	status         models.GameStatus
	players        map[string]*models.Player // by socket id
	drawn          []int
	remaining      []int
	pricePerTicket int64
	ticketsSold    int
	prizes         models.Prizes
	winners        models.Winners
	opts           models.Options
	createdAt      time.Time
	endedAt        time.Time
	emptySince     time.Time
	deleted        bool

	drawing     bool
	drawSeq     uint64
	drawTimer   *time.Timer
	paused      bool
	resumeAt    time.Time
	resumeSeq   uint64
	resumeTimer *time.Timer
	graceTimer  *time.Timer
	deleteTimer *time.Timer
}

func newGame(m *Manager, id string, price int64, opts models.Options) *Game {
	remaining := make([]int, models.MaxNumber)
	for i := range remaining {
		remaining[i] = i + 1
	}
	return &Game{
		m:              m,
		ID:             id,
		status:         models.StatusLobby,
		players:        make(map[string]*models.Player),
		remaining:      remaining,
		pricePerTicket: price,
		opts:           opts,
		createdAt:      m.now(),
		winners:        models.Winners{House: []models.HouseWin{}},
	}
}

func (g *Game) addPlayer(p *models.Player) {
	g.players[p.SocketID] = p
	g.ticketsSold += len(p.Tickets)
	g.prizes = prize.Compute(g.ticketsSold, g.pricePerTicket, g.opts)
	g.emptySince = time.Time{}
}

func (g *Game) findByName(name string) *models.Player {
	for _, p := range g.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (g *Game) host() *models.Player {
	for _, p := range g.players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (g *Game) connected() []*models.Player {
	list := make([]*models.Player, 0, len(g.players))
	for _, p := range g.players {
		if p.Connected {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].JoinedAt.Equal(list[j].JoinedAt) {
			return list[i].Name < list[j].Name
		}
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})
	return list
}

func (g *Game) roster() []models.PlayerView {
	views := []models.PlayerView{}
	for _, p := range g.connected() {
		views = append(views, models.PlayerView{Name: p.Name, TicketCount: len(p.Tickets), IsHost: p.IsHost})
	}
	return views
}

func (g *Game) revenue() int64 {
	return int64(g.ticketsSold) * g.pricePerTicket
}

func (g *Game) broadcast(event string, payload any) {
	targets := make([]string, 0, len(g.players))
	for _, p := range g.connected() {
		targets = append(targets, p.SocketID)
	}
	if len(targets) == 0 {
		return
	}
	g.m.notifier.Notify(targets, event, payload)
}

func (g *Game) send(socketID, event string, payload any) {
	g.m.notifier.Notify([]string{socketID}, event, payload)
}

func (g *Game) announce(text string) {
	if g.m.announcer != nil {
		g.m.announcer.Announce(g.ID, text)
	}
}

func (g *Game) broadcastRoster() {
	g.broadcast(comm.EventPlayersUpdated, comm.PlayersUpdated{Players: g.roster()})
}

func (g *Game) broadcastPrizes() {
	g.broadcast(comm.EventPrizesUpdated, comm.PrizesUpdated{
		Prizes:           g.prizes,
		TotalTicketsSold: g.ticketsSold,
		TotalRevenue:     g.revenue(),
	})
}

func (g *Game) info() comm.GameInfo {
	return comm.GameInfo{
		GameId:         g.ID,
		Status:         g.status,
		PricePerTicket: g.pricePerTicket,
		Prizes:         g.prizes,
		Winners:        g.winners.Clone(),
		Options:        g.opts,
		DrawnNumbers:   append([]int{}, g.drawn...),
		Remaining:      len(g.remaining),
		Paused:         g.paused,
	}
}

func (g *Game) interval() time.Duration {
	return g.m.settings.seconds(g.opts.AutoDrawInterval)
}

// scheduleDraw replaces any pending draw so only one loop ever runs.
func (g *Game) scheduleDraw(delay time.Duration) {
	g.stopDraw()
	g.drawing = true
	seq := g.drawSeq
	g.drawTimer = time.AfterFunc(delay, func() { g.onDraw(seq) })
}

func (g *Game) stopDraw() {
	g.drawSeq++
	g.drawing = false
	if g.drawTimer != nil {
		g.drawTimer.Stop()
		g.drawTimer = nil
	}
}

func (g *Game) onDraw(seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.deleted || g.status != models.StatusRunning || g.paused || seq != g.drawSeq {
		return
	}
	g.drawing = false
	g.drawNext()

	if g.status == models.StatusRunning && !g.paused && len(g.remaining) > 0 {
		g.scheduleDraw(g.interval())
	}
}

func (g *Game) drawNext() {
	if len(g.remaining) == 0 {
		return
	}
	idx := g.m.intn(len(g.remaining))
	number := g.remaining[idx]
	last := len(g.remaining) - 1
	g.remaining[idx] = g.remaining[last]
	g.remaining = g.remaining[:last]
	g.drawn = append(g.drawn, number)
	monitoring.NumberDrawn()

	g.broadcast(comm.EventNumberDrawn, comm.NumberDrawn{
		Number:       number,
		DrawnNumbers: append([]int{}, g.drawn...),
		Remaining:    len(g.remaining),
	})
	g.announce(fmt.Sprintf("Number %d", number))

	if len(g.remaining) == 0 {
		g.startGrace()
	}
	g.checkCompletion()
}

// startGrace runs once, when the pool empties. Later claims do not reset it.
func (g *Game) startGrace() {
	if g.graceTimer != nil {
		return
	}
	log.Infof("game %s: all numbers drawn, completing in %s", g.ID, g.m.settings.GracePeriod)
	g.graceTimer = time.AfterFunc(g.m.settings.GracePeriod, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.deleted || g.status != models.StatusRunning {
			return
		}
		g.complete("All numbers have been drawn!")
	})
}

// pause stops drawing for d. An automatic pause (explicit false) never
// shortens a longer pending one; a host pause always replaces it.
func (g *Game) pause(d time.Duration, reason string, explicit bool) {
	resumeAt := g.m.now().Add(d)
	if !explicit && g.paused && g.resumeAt.After(resumeAt) {
		return
	}

	g.stopDraw()
	g.paused = true
	g.resumeAt = resumeAt
	g.resumeSeq++
	seq := g.resumeSeq
	if g.resumeTimer != nil {
		g.resumeTimer.Stop()
	}
	g.resumeTimer = time.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.deleted || g.status != models.StatusRunning || seq != g.resumeSeq {
			return
		}
		g.resume()
	})

	g.broadcast(comm.EventGamePaused, comm.GamePaused{
		Seconds:  int(d / g.m.settings.Second),
		Reason:   reason,
		ResumeAt: resumeAt,
	})
}

func (g *Game) resume() {
	if !g.paused {
		return
	}
	g.paused = false
	g.resumeAt = time.Time{}
	g.resumeSeq++
	if g.resumeTimer != nil {
		g.resumeTimer.Stop()
		g.resumeTimer = nil
	}
	g.broadcast(comm.EventGameResumed, comm.GameResumed{GameId: g.ID})

	if len(g.remaining) > 0 {
		g.scheduleDraw(g.interval())
	}
}

func (g *Game) allPrizesWon() bool {
	w := &g.winners
	if w.TopLine == "" || w.MiddleLine == "" || w.BottomLine == "" || w.Corners == "" {
		return false
	}
	if g.opts.EnableEarly5 && w.Early5 == "" {
		return false
	}
	return len(w.House) >= g.opts.HouseCapacity()
}

func (g *Game) checkCompletion() {
	if g.status != models.StatusRunning {
		return
	}
	switch {
	case len(g.connected()) == 0:
		g.complete("All players have left")
	case g.allPrizesWon():
		g.complete("All prizes have been claimed!")
	}
}

func (g *Game) stopTimers() {
	g.stopDraw()
	g.resumeSeq++
	for _, t := range []*time.Timer{g.resumeTimer, g.graceTimer} {
		if t != nil {
			t.Stop()
		}
	}
}

func (g *Game) complete(reason string) {
	g.status = models.StatusCompleted
	g.endedAt = g.m.now()
	g.paused = false
	g.stopTimers()
	log.Infof("game %s: completed (%s) after %d numbers", g.ID, reason, len(g.drawn))

	g.broadcast(comm.EventGameCompleted, comm.GameCompleted{
		Reason:       reason,
		Winners:      g.winners.Clone(),
		TotalNumbers: len(g.drawn),
	})
	g.announce("Game over. " + reason)
	monitoring.TrackFinished(string(models.StatusCompleted))
	g.archive(reason)

	g.deleteTimer = time.AfterFunc(g.m.settings.DeleteDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.deleted {
			g.destroy()
		}
	})
}

func (g *Game) cancel(reason string) {
	g.status = models.StatusCancelled
	g.endedAt = g.m.now()
	log.Infof("game %s: cancelled (%s)", g.ID, reason)

	g.broadcast(comm.EventGameCancelled, comm.GameCancelled{Reason: reason})
	monitoring.TrackFinished(string(models.StatusCancelled))
	g.archive(reason)
	g.destroy()
}

// destroy evicts the room from the registry along with every member session.
func (g *Game) destroy() {
	g.deleted = true
	g.stopTimers()
	if g.deleteTimer != nil {
		g.deleteTimer.Stop()
	}
	sockets := make([]string, 0, len(g.players))
	for id := range g.players {
		sockets = append(sockets, id)
	}
	g.m.unregister(g, sockets)
}

func (g *Game) archive(reason string) {
	if g.m.archive == nil {
		return
	}
	result := models.GameResult{
		GameID:         g.ID,
		Status:         g.status,
		Reason:         reason,
		PricePerTicket: g.pricePerTicket,
		TicketsSold:    g.ticketsSold,
		PlayerCount:    len(g.players),
		Prizes:         g.prizes,
		Winners:        g.winners.Clone(),
		DrawnNumbers:   append([]int{}, g.drawn...),
		CreatedAt:      g.createdAt,
		EndedAt:        g.endedAt,
	}
	archive := g.m.archive
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := archive.SaveResult(ctx, result); err != nil {
			log.Errorf("game %s: archive result: %v", result.GameID, err)
		}
	}()
}
