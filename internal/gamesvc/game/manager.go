package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"github.com/avvvet/tambola-services/internal/gamesvc/ticket"
	"github.com/avvvet/tambola-services/internal/monitoring"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const (
	codeLength       = 3
	maxCodeAttempts  = 100
	maxTickets       = 6
	defaultHostName  = "Host"
	defaultPauseSecs = 30
)

// TicketSource hands out a batch of non-overlapping tickets.
type TicketSource interface {
	Generate(count int) ([]models.Ticket, error)
}

// Manager is the registry of live rooms. It owns the code -> room map and
// the socket -> room sessions; every room operation goes through it.
//
// Lock order: a room's mutex may be held while taking m.mu, never the
// other way round.
type Manager struct {
	mu       sync.RWMutex
	games    map[string]*Game
	sessions map[string]string // socket id -> game id

	notifier  Notifier
	announcer Announcer
	archive   Archive
	tickets   TicketSource
	settings  Settings
	now       func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	cron *cron.Cron
}

type Option func(*Manager)

func WithAnnouncer(a Announcer) Option { return func(m *Manager) { m.announcer = a } }

func WithArchive(a Archive) Option { return func(m *Manager) { m.archive = a } }

func WithTicketSource(t TicketSource) Option { return func(m *Manager) { m.tickets = t } }

// WithRand fixes the source used for draws and room codes.
func WithRand(src rand.Source) Option { return func(m *Manager) { m.rnd = rand.New(src) } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(notifier Notifier, settings Settings, opts ...Option) *Manager {
	m := &Manager{
		games:    make(map[string]*Game),
		sessions: make(map[string]string),
		notifier: notifier,
		settings: settings,
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tickets == nil {
		m.tickets = ticket.NewGenerator(rand.NewSource(time.Now().UnixNano() + 1))
	}
	return m
}

func (m *Manager) intn(n int) int {
	m.rndMu.Lock()
	defer m.rndMu.Unlock()
	return m.rnd.Intn(n)
}

func normalizeCode(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (m *Manager) newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = byte('A' + m.intn(26))
	}
	return string(b)
}

// register allocates a code for g and makes it visible.
func (m *Manager) register(g *Game, socketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code := m.newCode()
		if _, taken := m.games[code]; taken {
			continue
		}
		g.ID = code
		m.games[code] = g
		m.sessions[socketID] = code
		monitoring.RoomOpened()
		return nil
	}
	return ErrNoRoomCodes
}

func (m *Manager) unregister(g *Game, sockets []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.games[g.ID]; ok && cur == g {
		delete(m.games, g.ID)
		monitoring.RoomClosed()
	}
	for _, s := range sockets {
		if m.sessions[s] == g.ID {
			delete(m.sessions, s)
		}
	}
	log.Infof("game %s: removed", g.ID)
}

func (m *Manager) bindSession(socketID, gameID string) {
	m.mu.Lock()
	m.sessions[socketID] = gameID
	m.mu.Unlock()
}

func (m *Manager) sessionOf(socketID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.sessions[socketID]
	return id, ok
}

// acquire returns the room locked. Callers unlock.
func (m *Manager) acquire(id string) (*Game, error) {
	m.mu.RLock()
	g, ok := m.games[normalizeCode(id)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidGame
	}

	g.mu.Lock()
	if g.deleted {
		g.mu.Unlock()
		return nil, ErrInvalidGame
	}
	return g, nil
}

func (m *Manager) snapshot() []*Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		list = append(list, g)
	}
	return list
}

// leaveCurrent drops any room the socket is bound to other than keep.
func (m *Manager) leaveCurrent(socketID, keep string) {
	if id, ok := m.sessionOf(socketID); ok && id != keep {
		m.Disconnect(socketID)
	}
}

func member(g *Game, socketID string) (*models.Player, error) {
	p, ok := g.players[socketID]
	if !ok {
		return nil, ErrNotInGame
	}
	return p, nil
}

func requireHost(g *Game, socketID string) (*models.Player, error) {
	p, err := member(g, socketID)
	if err != nil {
		return nil, err
	}
	if !p.IsHost {
		return nil, ErrNotHost
	}
	return p, nil
}

func requireRunning(g *Game) error {
	switch g.status {
	case models.StatusLobby:
		return ErrNotStarted
	case models.StatusRunning:
		return nil
	}
	return ErrGameOver
}

func clampTickets(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxTickets {
		return maxTickets
	}
	return n
}

func (m *Manager) CreateGame(socketID string, req comm.CreateGameRequest) (comm.CreateGameResponse, error) {
	m.leaveCurrent(socketID, "")

	name := strings.TrimSpace(req.HostName)
	if name == "" {
		name = defaultHostName
	}
	price := req.PricePerTicket
	if price <= 0 {
		price = m.settings.DefaultPrice
	}

	tickets, err := m.tickets.Generate(clampTickets(req.NumTickets))
	if err != nil {
		log.Errorf("ticket generation failed for new game: %v", err)
		return comm.CreateGameResponse{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	g := newGame(m, "", price, req.GameOptions.Normalize())
	host := models.NewPlayer(name, socketID, tickets, m.now())
	host.IsHost = true
	g.addPlayer(host)

	if err := m.register(g, socketID); err != nil {
		log.Errorf("create game: %v", err)
		return comm.CreateGameResponse{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	log.Infof("game %s: created by %s (%d tickets at %d)", g.ID, name, len(tickets), price)
	g.broadcastPrizes()

	return comm.CreateGameResponse{
		Ack:     comm.OK(),
		GameId:  g.ID,
		Tickets: tickets,
		Players: g.roster(),
	}, nil
}

func (m *Manager) GameDetails(gameID string) (comm.GameDetailsResponse, error) {
	g, err := m.acquire(gameID)
	if err != nil {
		return comm.GameDetailsResponse{}, err
	}
	defer g.mu.Unlock()

	return comm.GameDetailsResponse{
		Ack:              comm.OK(),
		GameId:           g.ID,
		PricePerTicket:   g.pricePerTicket,
		Prizes:           g.prizes,
		PlayerCount:      len(g.connected()),
		TotalTicketsSold: g.ticketsSold,
		TotalRevenue:     g.revenue(),
		Options:          g.opts,
		Status:           g.status,
	}, nil
}

func (m *Manager) JoinGame(socketID string, req comm.JoinGameRequest) (comm.JoinGameResponse, error) {
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return comm.JoinGameResponse{}, ErrNameRequired
	}
	m.leaveCurrent(socketID, normalizeCode(req.GameId))

	g, err := m.acquire(req.GameId)
	if err != nil {
		return comm.JoinGameResponse{}, err
	}
	defer g.mu.Unlock()

	if p := g.findByName(name); p != nil {
		if p.Connected && p.SocketID != socketID {
			return comm.JoinGameResponse{}, ErrNameTaken
		}
		if p.Connected {
			// repeated join from the same connection
			return comm.JoinGameResponse{
				Ack:     comm.OK(),
				Tickets: p.Tickets,
				Players: g.roster(),
				WasHost: p.IsHost,
			}, nil
		}
		if g.status.Terminal() {
			return comm.JoinGameResponse{}, ErrGameOver
		}
		return m.reconnect(g, p, socketID), nil
	}

	switch {
	case g.status == models.StatusRunning:
		return comm.JoinGameResponse{}, ErrAlreadyStarted
	case g.status.Terminal():
		return comm.JoinGameResponse{}, ErrGameOver
	}

	tickets, err := m.tickets.Generate(clampTickets(req.NumTickets))
	if err != nil {
		log.Errorf("game %s: ticket generation failed: %v", g.ID, err)
		return comm.JoinGameResponse{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	p := models.NewPlayer(name, socketID, tickets, m.now())
	g.addPlayer(p)
	m.bindSession(socketID, g.ID)
	log.Infof("game %s: %s joined with %d tickets", g.ID, name, len(tickets))

	g.broadcastPrizes()
	g.broadcastRoster()

	return comm.JoinGameResponse{
		Ack:     comm.OK(),
		Tickets: tickets,
		Players: g.roster(),
	}, nil
}

func (m *Manager) reconnect(g *Game, p *models.Player, socketID string) comm.JoinGameResponse {
	if p.SocketID != socketID {
		delete(g.players, p.SocketID)
		p.SocketID = socketID
		g.players[socketID] = p
	}
	p.Connected = true
	p.DisconnectedAt = time.Time{}
	g.emptySince = time.Time{}
	m.bindSession(socketID, g.ID)
	log.Infof("game %s: %s reconnected (host=%t)", g.ID, p.Name, p.IsHost)

	event := comm.EventPlayerReconnected
	if p.IsHost {
		event = comm.EventHostReconnected
	}
	g.broadcast(event, comm.PlayerPresence{PlayerId: socketID, PlayerName: p.Name})
	g.broadcastRoster()

	if p.IsHost && g.status == models.StatusRunning && !g.paused && !g.drawing && len(g.remaining) > 0 {
		g.scheduleDraw(g.interval())
	}

	return comm.JoinGameResponse{
		Ack:         comm.OK(),
		Tickets:     p.Tickets,
		Players:     g.roster(),
		Reconnected: true,
		WasHost:     p.IsHost,
	}
}

// GameInfo sends the room snapshot to the caller as a game_info event.
func (m *Manager) GameInfo(socketID, gameID string) error {
	g, err := m.acquire(gameID)
	if err != nil {
		return err
	}
	defer g.mu.Unlock()

	g.send(socketID, comm.EventGameInfo, g.info())
	return nil
}

func (m *Manager) StartGame(socketID, gameID string) error {
	g, err := m.acquire(gameID)
	if err != nil {
		return err
	}
	defer g.mu.Unlock()

	if _, err := requireHost(g, socketID); err != nil {
		return err
	}
	if g.status != models.StatusLobby {
		if g.status.Terminal() {
			return ErrGameOver
		}
		return ErrAlreadyStarted
	}

	g.status = models.StatusRunning
	log.Infof("game %s: started with %d players, %d tickets", g.ID, len(g.players), g.ticketsSold)
	g.broadcast(comm.EventGameStarted, comm.GameStarted{
		GameId:       g.ID,
		StartsInMs:   m.settings.StartDelay.Milliseconds(),
		DrawInterval: g.opts.AutoDrawInterval,
	})
	g.announce("The game is starting")
	g.scheduleDraw(m.settings.StartDelay)
	return nil
}

func (m *Manager) CancelGame(socketID, gameID string) error {
	g, err := m.acquire(gameID)
	if err != nil {
		return err
	}
	defer g.mu.Unlock()

	if _, err := requireHost(g, socketID); err != nil {
		return err
	}
	if g.status.Terminal() {
		return ErrGameOver
	}
	g.cancel("Game cancelled by host")
	return nil
}

func (m *Manager) Claim(socketID string, req comm.ClaimRequest) (comm.ClaimResponse, error) {
	g, err := m.acquire(req.GameId)
	if err != nil {
		return comm.ClaimResponse{}, err
	}
	defer g.mu.Unlock()

	if err := requireRunning(g); err != nil {
		return comm.ClaimResponse{}, err
	}
	p, err := member(g, socketID)
	if err != nil {
		return comm.ClaimResponse{}, err
	}

	now := m.now()
	if now.Before(p.PenaltyUntil) {
		left := int(p.PenaltyUntil.Sub(now)/m.settings.Second) + 1
		reason := fmt.Sprintf("Bogey penalty active, wait %d more seconds", left)
		g.send(socketID, comm.EventClaimFailed, comm.ClaimFailed{ClaimType: req.ClaimType, Reason: reason})
		return comm.ClaimResponse{Ack: comm.OK(), Reason: reason}, nil
	}

	for i, nums := range req.MarkedNumbers {
		p.Mark(i, nums)
	}

	res := claimEvaluate(p, req, g)
	monitoring.TrackClaim(string(res.Category), res.Valid)

	if !res.Valid {
		g.rejectClaim(p, req, res)
		return comm.ClaimResponse{Ack: comm.OK(), Reason: res.Reason, LineType: res.Category}, nil
	}

	amount := g.awardClaim(p, req, res)
	ticketIndex := res.TicketIndex
	return comm.ClaimResponse{
		Ack:           comm.OK(),
		Valid:         true,
		LineType:      res.Category,
		TicketIndex:   &ticketIndex,
		HousePosition: res.HousePosition,
		PrizeAmount:   amount,
	}, nil
}

func (m *Manager) RequestPause(socketID, gameID string) error {
	g, err := m.acquire(gameID)
	if err != nil {
		return err
	}
	defer g.mu.Unlock()

	if err := requireRunning(g); err != nil {
		return err
	}
	p, err := member(g, socketID)
	if err != nil {
		return err
	}
	if p.IsHost {
		return ErrHostCanPause
	}
	host := g.host()
	if host == nil || !host.Connected {
		return ErrHostUnavailable
	}

	g.send(host.SocketID, comm.EventPauseRequested, comm.PauseRequested{PlayerName: p.Name})
	return nil
}

func (m *Manager) PauseGame(socketID string, req comm.PauseRequest) error {
	g, err := m.acquire(req.GameId)
	if err != nil {
		return err
	}
	defer g.mu.Unlock()

	if _, err := requireHost(g, socketID); err != nil {
		return err
	}
	if err := requireRunning(g); err != nil {
		return err
	}

	secs := req.Seconds
	if secs <= 0 {
		secs = defaultPauseSecs
	}
	if max := m.settings.MaxPauseSeconds; max > 0 && secs > max {
		secs = max
	}
	g.pause(m.settings.seconds(secs), "Paused by host", true)
	return nil
}

func (m *Manager) ResumeGame(socketID, gameID string) error {
	g, err := m.acquire(gameID)
	if err != nil {
		return err
	}
	defer g.mu.Unlock()

	if _, err := requireHost(g, socketID); err != nil {
		return err
	}
	if err := requireRunning(g); err != nil {
		return err
	}
	if !g.paused {
		return ErrNotPaused
	}
	g.resume()
	return nil
}

// Disconnect is called when a connection goes away. The player keeps their
// tickets and can come back under the same name.
func (m *Manager) Disconnect(socketID string) {
	gameID, ok := m.sessionOf(socketID)
	if !ok {
		return
	}
	m.mu.Lock()
	delete(m.sessions, socketID)
	m.mu.Unlock()

	g, err := m.acquire(gameID)
	if err != nil {
		return
	}
	defer g.mu.Unlock()

	p, ok := g.players[socketID]
	if !ok || !p.Connected {
		return
	}
	now := m.now()
	p.Connected = false
	p.DisconnectedAt = now
	if len(g.connected()) == 0 {
		g.emptySince = now
	}
	presence := comm.PlayerPresence{PlayerId: socketID, PlayerName: p.Name}

	switch g.status {
	case models.StatusLobby:
		if p.IsHost {
			g.cancel("Host left the game")
			return
		}
		log.Infof("game %s: %s left the lobby", g.ID, p.Name)
		g.broadcast(comm.EventPlayerLeft, presence)
		g.broadcastRoster()

	case models.StatusRunning:
		log.Infof("game %s: %s disconnected (host=%t)", g.ID, p.Name, p.IsHost)
		event := comm.EventPlayerDisconnected
		if p.IsHost {
			event = comm.EventHostDisconnected
		}
		g.broadcast(event, presence)
		g.broadcastRoster()
		g.checkCompletion()
	}
}

// Sweep drops players that stayed away past PlayerGrace and deletes rooms
// nobody has been connected to for AbandonWindow.
func (m *Manager) Sweep(now time.Time) {
	for _, g := range m.snapshot() {
		g.mu.Lock()
		if !g.deleted {
			g.sweep(now)
		}
		g.mu.Unlock()
	}
}

func (g *Game) sweep(now time.Time) {
	s := g.m.settings
	for id, p := range g.players {
		if !p.Connected && !p.DisconnectedAt.IsZero() && now.Sub(p.DisconnectedAt) > s.PlayerGrace {
			log.Infof("game %s: dropping %s after %s away", g.ID, p.Name, now.Sub(p.DisconnectedAt).Round(time.Second))
			delete(g.players, id)
		}
	}

	abandoned := !g.emptySince.IsZero() && len(g.connected()) == 0 && now.Sub(g.emptySince) > s.AbandonWindow
	stale := g.status.Terminal() && !g.endedAt.IsZero() && now.Sub(g.endedAt) > s.AbandonWindow
	if abandoned || stale {
		log.Infof("game %s: abandoned, deleting", g.ID)
		g.destroy()
	}
}

// StartSweeper runs Sweep on the configured cron schedule until Close.
func (m *Manager) StartSweeper() error {
	c := cron.New()
	if _, err := c.AddFunc(m.settings.SweepSchedule, func() { m.Sweep(m.now()) }); err != nil {
		return fmt.Errorf("sweep schedule %q: %w", m.settings.SweepSchedule, err)
	}
	c.Start()
	m.cron = c
	return nil
}

// Close stops the sweeper and tears down every room.
func (m *Manager) Close() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	for _, g := range m.snapshot() {
		g.mu.Lock()
		if !g.deleted {
			g.destroy()
		}
		g.mu.Unlock()
	}
}

// GameSummary is the admin listing entry for a room.
type GameSummary struct {
	GameId      string            `json:"gameId"`
	Status      models.GameStatus `json:"status"`
	Players     int               `json:"players"`
	Connected   int               `json:"connected"`
	TicketsSold int               `json:"ticketsSold"`
	Drawn       int               `json:"drawn"`
	Paused      bool              `json:"paused"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (m *Manager) Games() []GameSummary {
	list := []GameSummary{}
	for _, g := range m.snapshot() {
		g.mu.Lock()
		if !g.deleted {
			list = append(list, GameSummary{
				GameId:      g.ID,
				Status:      g.status,
				Players:     len(g.players),
				Connected:   len(g.connected()),
				TicketsSold: g.ticketsSold,
				Drawn:       len(g.drawn),
				Paused:      g.paused,
				CreatedAt:   g.createdAt,
			})
		}
		g.mu.Unlock()
	}
	return list
}
