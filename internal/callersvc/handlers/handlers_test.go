package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avvvet/tambola-services/internal/tts"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type speakerStub struct {
	enabled bool
	err     error
}

func (s speakerStub) Enabled() bool { return s.enabled }

func (s speakerStub) Speech(_ context.Context, text string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if strings.TrimSpace(text) == "" {
		return nil, tts.ErrEmptyText
	}
	return []byte("mp3:" + text), nil
}

func serve(t *testing.T, s Speaker) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(s, jwtauth.New("HS256", []byte("test-secret"), nil)).SetRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body string) (*http.Response, string) {
	t.Helper()
	res, err := http.Post(srv.URL+"/v1/tts/speech", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(data)
}

func TestSpeech(t *testing.T) {
	srv := serve(t, speakerStub{enabled: true})

	res, body := post(t, srv, `{"text":"Number 42"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "audio/mpeg", res.Header.Get("Content-Type"))
	assert.Equal(t, "mp3:Number 42", body)

	res, body = post(t, srv, `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body, "text missing")

	res, _ = post(t, srv, `{bad`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSpeech_NotConfigured(t *testing.T) {
	srv := serve(t, speakerStub{})
	res, body := post(t, srv, `{"text":"Number 1"}`)
	assert.Equal(t, http.StatusNotImplemented, res.StatusCode)
	assert.Contains(t, body, "TTS not configured")
}

func TestSpeech_ProviderFailure(t *testing.T) {
	srv := serve(t, speakerStub{enabled: true, err: errors.New("boom")})
	res, body := post(t, srv, `{"text":"Number 1"}`)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, body, "TTS generation failed")
}

func TestHealthNeedsToken(t *testing.T) {
	srv := serve(t, speakerStub{})
	res, err := http.Get(srv.URL + "/v1/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
