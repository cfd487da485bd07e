package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/avvvet/tambola-services/internal/gamesvc/game"
	"github.com/avvvet/tambola-services/internal/gamesvc/store"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

const maxResults = 100

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	manager   *game.Manager
	results   store.ResultStore // nil when archiving is off
}

func NewHandler(manager *game.Manager, results store.ResultStore, tokenAuth *jwtauth.JWTAuth) *Handler {
	return &Handler{
		tokenAuth: tokenAuth,
		manager:   manager,
		results:   results,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "game service is running at port " + os.Getenv("GAME_SERVICE_PORT"),
		Code:    http.StatusOK,
		Data:    map[string]int{"games": len(h.manager.Games())},
	})
}

// GameDetails is the lobby preview shown before joining.
func (h *Handler) GameDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.manager.GameDetails(chi.URLParam(r, "id"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, game.ErrInvalidGame) {
			code = http.StatusNotFound
		}
		h.CreateResponse(w, Response{Code: code, Error: err.Error()})
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: details})
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: h.manager.Games()})
}

func (h *Handler) RecentResults(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "archive disabled"})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid limit"})
			return
		}
		limit = min(n, maxResults)
	}

	results, err := h.results.Recent(r.Context(), limit)
	if err != nil {
		log.Errorf("recent results: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "unable to load results"})
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: results})
}
