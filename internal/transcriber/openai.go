// Package transcriber provides a speech-to-text client for the OpenAI
// audio transcriptions REST API (Whisper). Like the embedder clients, it
// talks plain HTTP — no additional SDK dependency is required.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DefaultModel is the transcription model used when none is configured.
const DefaultModel = "whisper-1"

// Config holds the settings for constructing an OpenAITranscriber.
type Config struct {
	// BaseURL is the API base (default: https://api.openai.com/v1).
	BaseURL string
	// APIKey is the Bearer token.
	APIKey string
	// Model is the transcription model name (default: whisper-1).
	Model string
	// Timeout bounds each transcription request (default: 300s — long
	// recordings take a while).
	Timeout time.Duration
}

// OpenAITranscriber converts audio bytes to text via the transcriptions
// endpoint. It is safe for concurrent use.
type OpenAITranscriber struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New constructs an OpenAITranscriber from the given config.
func New(cfg *Config) *OpenAITranscriber {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	return &OpenAITranscriber{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// transcriptionResponse is the JSON body returned by the endpoint.
type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Transcribe runs the speech-to-text model over the full audio file and
// returns its transcript. filename's extension tells the API which audio
// container to expect.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("transcriber: create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("transcriber: write form file: %w", err)
	}
	_ = mw.WriteField("model", t.model)
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("transcriber: close multipart body: %w", err)
	}

	url := t.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("transcriber: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcriber: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("transcriber: read response: %w", err)
	}

	var result transcriptionResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("transcriber: decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != nil {
			msg = result.Error.Message
		} else if s := strings.TrimSpace(string(raw)); s != "" {
			msg = s
		}
		return "", fmt.Errorf("transcriber: %s", msg)
	}

	return result.Text, nil
}
