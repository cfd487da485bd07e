package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/gamesvc/game"
	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"github.com/avvvet/tambola-services/internal/gamesvc/store"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopNotifier struct{}

func (nopNotifier) Notify([]string, string, any) {}

type resultsStub struct {
	results []models.GameResult
	err     error
	limit   int
}

func (s *resultsStub) SaveResult(context.Context, models.GameResult) error { return nil }

func (s *resultsStub) Recent(_ context.Context, limit int) ([]models.GameResult, error) {
	s.limit = limit
	return s.results, s.err
}

type testServer struct {
	*httptest.Server
	manager *game.Manager
	token   string
}

func newTestServer(t *testing.T, results *resultsStub) *testServer {
	t.Helper()
	settings := game.DefaultSettings()
	settings.StartDelay = time.Hour
	manager := game.NewManager(nopNotifier{}, settings)
	t.Cleanup(manager.Close)

	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, token, err := tokenAuth.Encode(map[string]interface{}{"user_id": 1})
	require.NoError(t, err)

	var archive store.ResultStore
	if results != nil {
		archive = results
	}

	r := chi.NewRouter()
	NewHandler(manager, archive, tokenAuth).SetRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, manager: manager, token: token}
}

func (s *testServer) get(t *testing.T, path string, auth bool) (int, Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
	require.NoError(t, err)
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var rsp Response
	if res.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&rsp))
	}
	return res.StatusCode, rsp
}

func TestGameDetails(t *testing.T) {
	s := newTestServer(t, nil)
	created, err := s.manager.CreateGame("host-socket", comm.CreateGameRequest{
		HostName:       "asha",
		PricePerTicket: 20,
		NumTickets:     2,
	})
	require.NoError(t, err)

	code, rsp := s.get(t, "/v1/games/"+created.GameId, false)
	require.Equal(t, http.StatusOK, code)
	data := rsp.Data.(map[string]interface{})
	assert.Equal(t, created.GameId, data["gameId"])
	assert.EqualValues(t, 20, data["pricePerTicket"])
	assert.EqualValues(t, 2, data["totalTicketsSold"])
	assert.EqualValues(t, 40, data["totalRevenue"])

	code, rsp = s.get(t, "/v1/games/ZZZ", false)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, rsp.Error)
}

func TestSecureRoutesNeedToken(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/v1/health", "/v1/admin/games", "/v1/admin/results"} {
		code, _ := s.get(t, path, false)
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}

	code, rsp := s.get(t, "/v1/health", true)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, rsp.Message, "game service is running")
}

func TestListGames(t *testing.T) {
	s := newTestServer(t, nil)
	_, err := s.manager.CreateGame("host-socket", comm.CreateGameRequest{HostName: "asha", NumTickets: 1})
	require.NoError(t, err)

	code, rsp := s.get(t, "/v1/admin/games", true)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, rsp.Data, 1)
}

func TestRecentResults(t *testing.T) {
	t.Run("archive disabled", func(t *testing.T) {
		s := newTestServer(t, nil)
		code, rsp := s.get(t, "/v1/admin/results", true)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "archive disabled", rsp.Error)
	})

	t.Run("limit is capped", func(t *testing.T) {
		stub := &resultsStub{results: []models.GameResult{{GameID: "ABC", Status: models.StatusCompleted}}}
		s := newTestServer(t, stub)

		code, rsp := s.get(t, "/v1/admin/results?limit=1000", true)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, maxResults, stub.limit)
		assert.Len(t, rsp.Data, 1)
	})

	t.Run("bad limit", func(t *testing.T) {
		s := newTestServer(t, &resultsStub{})
		code, _ := s.get(t, "/v1/admin/results?limit=abc", true)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("store failure", func(t *testing.T) {
		s := newTestServer(t, &resultsStub{err: errors.New("db down")})
		code, rsp := s.get(t, "/v1/admin/results", true)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "unable to load results", rsp.Error)
	})
}

func TestMetricsExposed(t *testing.T) {
	s := newTestServer(t, nil)
	res, err := http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
