// Package tts synthesizes caller announcements through an ElevenLabs
// compatible text-to-speech API and keeps the audio in a disk cache.
package tts

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avvvet/tambola-services/internal/monitoring"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	DefaultModel   = "eleven_monolingual_v1"

	maxTextLength = 500
)

var (
	ErrNotConfigured = errors.New("TTS not configured")
	ErrEmptyText     = errors.New("text missing")
	ErrTextTooLong   = fmt.Errorf("text longer than %d characters", maxTextLength)
)

type Config struct {
	BaseURL  string
	APIKey   string
	VoiceID  string
	CacheDir string
	Timeout  time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	voiceID    string
	cacheDir   string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		voiceID:  cfg.VoiceID,
		cacheDir: cfg.CacheDir,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.voiceID == "" {
		c.voiceID = DefaultVoiceID
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = 15 * time.Second
	}
	if c.cacheDir != "" {
		if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return c, nil
}

// Enabled reports whether an API key was supplied.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

func (c *Client) cachePath(text string) string {
	sum := sha1.Sum([]byte(text))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:])+".mp3")
}

type speechRequest struct {
	ModelID       string        `json:"model_id"`
	Text          string        `json:"text"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Speech returns mp3 audio for text, from the cache when present.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) > maxTextLength {
		return nil, ErrTextTooLong
	}

	if c.cacheDir != "" {
		if audio, err := os.ReadFile(c.cachePath(text)); err == nil {
			monitoring.TrackSpeech("cache")
			return audio, nil
		}
	}

	audio, err := c.synthesize(ctx, text)
	if err != nil {
		monitoring.TrackSpeech("error")
		return nil, err
	}
	monitoring.TrackSpeech("api")

	if c.cacheDir != "" {
		if err := os.WriteFile(c.cachePath(text), audio, 0o644); err != nil {
			log.Warnf("tts: failed to write cache: %v", err)
		}
	}
	return audio, nil
}

func (c *Client) synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(speechRequest{
		ModelID:       DefaultModel,
		Text:          text,
		VoiceSettings: voiceSettings{Stability: 0.35, SimilarityBoost: 0.85},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts provider: %s - %s", resp.Status, errorDetail(respBody))
	}
	return respBody, nil
}

// errorDetail pulls the human readable message out of a provider error body.
// ElevenLabs answers with either {"detail": "..."} or
// {"detail": {"status": "...", "message": "..."}}.
func errorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, path := range []string{"detail.message", "detail", "error", "message"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	return strings.TrimSpace(string(body))
}
