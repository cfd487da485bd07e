package game

import "errors"

// Errors returned to the single caller of an operation. Messages are shown
// to players verbatim.
var (
	ErrInvalidGame     = errors.New("invalid game ID")
	ErrAlreadyStarted  = errors.New("game already started")
	ErrNotStarted      = errors.New("game not started")
	ErrGameOver        = errors.New("game is over")
	ErrNotHost         = errors.New("only the host can do that")
	ErrNotInGame       = errors.New("player not in game")
	ErrNameRequired    = errors.New("player name is required")
	ErrNameTaken       = errors.New("player name already taken")
	ErrNotPaused       = errors.New("game is not paused")
	ErrHostCanPause    = errors.New("host can pause the game directly")
	ErrHostUnavailable = errors.New("host is not connected")
	ErrNoRoomCodes     = errors.New("no free game codes")
	ErrInternal        = errors.New("internal error")
)
