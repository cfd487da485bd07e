package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1/text-to-speech/"+DefaultVoiceID, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))

		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.ModelID)

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSpeech_CachesAudio(t *testing.T) {
	srv, calls := newProvider(t, http.StatusOK, "ID3-audio")
	dir := t.TempDir()
	c, err := New(Config{BaseURL: srv.URL, APIKey: "test-key", CacheDir: dir})
	require.NoError(t, err)

	audio, err := c.Speech(context.Background(), "Number 42")
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio", string(audio))

	_, err = os.Stat(c.cachePath("Number 42"))
	require.NoError(t, err)

	audio, err = c.Speech(context.Background(), "  Number 42 ")
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio", string(audio))
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestSpeech_ProviderError(t *testing.T) {
	srv, _ := newProvider(t, http.StatusUnauthorized,
		`{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`)
	c, err := New(Config{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)

	_, err = c.Speech(context.Background(), "Number 7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestSpeech_Validation(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	_, err = c.Speech(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err = New(Config{APIKey: "k"})
	require.NoError(t, err)
	_, err = c.Speech(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	long := make([]byte, maxTextLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = c.Speech(context.Background(), string(long))
	assert.ErrorIs(t, err, ErrTextTooLong)
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, "quota exceeded", errorDetail([]byte(`{"detail":"quota exceeded"}`)))
	assert.Equal(t, "bad voice", errorDetail([]byte(`{"detail":{"message":"bad voice"}}`)))
	assert.Equal(t, "gateway timeout", errorDetail([]byte("gateway timeout\n")))
}
