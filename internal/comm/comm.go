package comm

import "encoding/json"

// WSMessage is the envelope for every hop: client <-> socket service <-> game service.
type WSMessage struct {
	Type     string          `json:"type"` // request or event name, e.g. "join_game", "number_drawn"
	Data     json.RawMessage `json:"data,omitempty"`
	SocketId string          `json:"socketid,omitempty"`
	Ref      string          `json:"ref,omitempty"`     // client correlation id echoed on the ack
	Targets  []string        `json:"targets,omitempty"` // socket ids an event is addressed to
}

// NATS subjects
const (
	SubjectRequests = "socket.service" // socket service -> game service
	SubjectEvents   = "game.service"   // game service -> socket service
	SubjectAnnounce = "game.announce"  // game service -> caller service
)

// request names
const (
	CreateGame     = "create_game"
	GetGameDetails = "get_game_details"
	JoinGame       = "join_game"
	GetGameInfo    = "get_game_info"
	StartGame      = "start_game"
	CancelGame     = "cancel_game"
	Claim          = "claim"
	RequestPause   = "request_pause"
	PauseGame      = "pause_game"
	ResumeGame     = "resume_game"
	Disconnect     = "disconnect"
)

// event names
const (
	EventPlayersUpdated     = "players_updated"
	EventPrizesUpdated      = "prizes_updated"
	EventGameStarted        = "game_started"
	EventGameInfo           = "game_info"
	EventNumberDrawn        = "number_drawn"
	EventClaimSuccess       = "claim_success"
	EventClaimFailed        = "claim_failed"
	EventBogeyCalled        = "bogey_called"
	EventPenaltyStarted     = "penalty_started"
	EventGamePaused         = "game_paused"
	EventGameResumed        = "game_resumed"
	EventPauseRequested     = "pause_requested"
	EventGameCompleted      = "game_completed"
	EventGameCancelled      = "game_cancelled"
	EventPlayerLeft         = "player_left"
	EventPlayerDisconnected = "player_disconnected"
	EventPlayerReconnected  = "player_reconnected"
	EventHostDisconnected   = "host_disconnected"
	EventHostReconnected    = "host_reconnected"
	EventError              = "error"
	EventConnected          = "connected"
)

// ResponseType is the ack envelope type for a request.
func ResponseType(request string) string {
	return request + "-response"
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Ack is embedded in every acknowledgement.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func OK() Ack { return Ack{Status: StatusOK} }

func Fail(err error) Ack { return Ack{Status: StatusError, Message: err.Error()} }
