package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avvvet/tambola-services/internal/tts"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Speaker interface {
	Enabled() bool
	Speech(ctx context.Context, text string) ([]byte, error)
}

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	speaker   Speaker
}

func NewHandler(speaker Speaker, tokenAuth *jwtauth.JWTAuth) *Handler {
	return &Handler{speaker: speaker, tokenAuth: tokenAuth}
}

type Response struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SpeechRequest struct {
	Text string `json:"text"`
}

func writeJSON(w http.ResponseWriter, code int, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	msg := "caller service is running"
	if !h.speaker.Enabled() {
		msg += " (tts disabled)"
	}
	writeJSON(w, http.StatusOK, Response{Message: msg})
}

func (h *Handler) Speech(w http.ResponseWriter, r *http.Request) {
	if !h.speaker.Enabled() {
		writeJSON(w, http.StatusNotImplemented, Response{Error: tts.ErrNotConfigured.Error()})
		return
	}

	var req SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	audio, err := h.speaker.Speech(r.Context(), req.Text)
	switch {
	case errors.Is(err, tts.ErrEmptyText), errors.Is(err, tts.ErrTextTooLong):
		writeJSON(w, http.StatusBadRequest, Response{Error: err.Error()})
		return
	case err != nil:
		log.Errorf("tts: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{Error: "TTS generation failed"})
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

func (h *Handler) SetRoutes(r chi.Router) {
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/tts/speech", h.Speech)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)
		})
	})
}
