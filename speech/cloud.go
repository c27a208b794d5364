package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Defaults mirror the wire contract of the cloud synthesis service.
const (
	defaultProvider    = "google"
	defaultAudioFormat = "mp3"
	defaultPitch       = 1.0
	defaultRate        = 1.0

	// maxAudioResponse caps how much synthesized audio we are willing to
	// buffer for one utterance.
	maxAudioResponse = 10 << 20
)

// synthesisRequest is the JSON body the cloud service expects.
type synthesisRequest struct {
	Text         string  `json:"text"`
	Language     string  `json:"language"`
	Voice        string  `json:"voice,omitempty"`
	Provider     string  `json:"provider"`
	AudioFormat  string  `json:"audioFormat"`
	Pitch        float64 `json:"pitch"`
	SpeakingRate float64 `json:"speakingRate"`
}

// CloudClient synthesizes speech through the remote TTS service.
type CloudClient struct {
	endpoint    string
	provider    string
	voice       string
	audioFormat string
	pitch       float64
	rate        float64
	client      *http.Client
}

// CloudOption configures a CloudClient.
type CloudOption func(*CloudClient)

// WithProvider selects the upstream synthesis provider.
func WithProvider(provider string) CloudOption {
	return func(c *CloudClient) { c.provider = provider }
}

// WithVoice selects a specific voice.
func WithVoice(voice string) CloudOption {
	return func(c *CloudClient) { c.voice = voice }
}

// WithAudioFormat selects the response audio format.
func WithAudioFormat(format string) CloudOption {
	return func(c *CloudClient) { c.audioFormat = format }
}

// WithPitch sets the synthesis pitch.
func WithPitch(pitch float64) CloudOption {
	return func(c *CloudClient) { c.pitch = pitch }
}

// WithSpeakingRate sets the synthesis speaking rate.
func WithSpeakingRate(rate float64) CloudOption {
	return func(c *CloudClient) { c.rate = rate }
}

// WithCloudHTTPClient overrides the HTTP client.
func WithCloudHTTPClient(client *http.Client) CloudOption {
	return func(c *CloudClient) { c.client = client }
}

// NewCloudClient creates a client for the given synthesis endpoint.
func NewCloudClient(endpoint string, opts ...CloudOption) *CloudClient {
	c := &CloudClient{
		endpoint:    endpoint,
		provider:    defaultProvider,
		audioFormat: defaultAudioFormat,
		pitch:       defaultPitch,
		rate:        defaultRate,
		client:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize sends one utterance to the cloud service and returns the audio
// bytes and their content type.
func (c *CloudClient) Synthesize(ctx context.Context, text, language string) ([]byte, string, error) {
	body, err := json.Marshal(synthesisRequest{
		Text:         text,
		Language:     language,
		Voice:        c.voice,
		Provider:     c.provider,
		AudioFormat:  c.audioFormat,
		Pitch:        c.pitch,
		SpeakingRate: c.rate,
	})
	if err != nil {
		return nil, "", fmt.Errorf("encoding synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("building synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("cloud synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: cloud synthesis returned status %d", ErrChannelUnavailable, resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioResponse))
	if err != nil {
		return nil, "", fmt.Errorf("reading synthesized audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("%w: cloud synthesis returned no audio", ErrChannelUnavailable)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return audio, contentType, nil
}
