package game

import (
	"context"

	"github.com/avvvet/tambola-services/internal/gamesvc/models"
)

// Notifier delivers room events to connections. Implementations must not
// block and must not call back into the Manager.
type Notifier interface {
	Notify(targets []string, event string, payload any)
}

// Announcer receives voice announcements. Fire-and-forget: it never gates
// game progress.
type Announcer interface {
	Announce(gameID, text string)
}

// Archive stores the summary of finished rooms.
type Archive interface {
	SaveResult(ctx context.Context, result models.GameResult) error
}
