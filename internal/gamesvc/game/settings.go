package game

import "time"

// Settings are the process-wide timings every room runs with.
type Settings struct {
	DefaultPrice  int64
	StartDelay    time.Duration // lets clients render the board before the first draw
	ClaimPause    time.Duration // auto-pause after a successful claim
	GracePeriod   time.Duration // wait after the last number before completing
	DeleteDelay   time.Duration // keep a finished room so clients can render the summary
	PlayerGrace   time.Duration // disconnected players are dropped from the roster after this
	AbandonWindow time.Duration // rooms with nobody connected are deleted after this
	SweepSchedule string

	// Second is the wall length of one second in option values (draw
	// interval, pause and penalty seconds). Tests shrink it.
	Second          time.Duration
	MaxPauseSeconds int
}

func DefaultSettings() Settings {
	return Settings{
		DefaultPrice:    50,
		StartDelay:      3 * time.Second,
		ClaimPause:      5 * time.Second,
		GracePeriod:     10 * time.Second,
		DeleteDelay:     5 * time.Second,
		PlayerGrace:     5 * time.Minute,
		AbandonWindow:   30 * time.Minute,
		SweepSchedule:   "@every 1m",
		Second:          time.Second,
		MaxPauseSeconds: 300,
	}
}

func (s Settings) seconds(n int) time.Duration {
	return time.Duration(n) * s.Second
}
