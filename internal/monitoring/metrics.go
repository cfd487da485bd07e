package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tambola_rooms_active",
			Help: "Rooms currently held in memory",
		},
	)

	numbersDrawn = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tambola_numbers_drawn_total",
			Help: "Numbers drawn across all rooms",
		},
	)

	claims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tambola_claims_total",
			Help: "Claims evaluated per category and result",
		},
		[]string{"category", "result"},
	)

	gamesFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tambola_games_finished_total",
			Help: "Rooms that reached a terminal state",
		},
		[]string{"outcome"},
	)

	requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tambola_requests_total",
			Help: "Client requests handled per type and status",
		},
		[]string{"type", "status"},
	)

	speech = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tambola_tts_requests_total",
			Help: "Speech syntheses by source (cache, api, error)",
		},
		[]string{"source"},
	)
)

func RoomOpened() { roomsActive.Inc() }

func RoomClosed() { roomsActive.Dec() }

func NumberDrawn() { numbersDrawn.Inc() }

func TrackClaim(category string, valid bool) {
	result := "rejected"
	if valid {
		result = "won"
	}
	claims.WithLabelValues(category, result).Inc()
}

func TrackFinished(outcome string) {
	gamesFinished.WithLabelValues(outcome).Inc()
}

func TrackRequest(kind, status string) {
	requests.WithLabelValues(kind, status).Inc()
}

func TrackSpeech(source string) {
	speech.WithLabelValues(source).Inc()
}
