// Package ocr provides an HTTP client for an OCR.space-compatible optical
// character recognition service. The service accepts whole documents (PDF or
// image bytes), rasterises pages server-side, and returns the recognised
// text per page — which is exactly what the scanned-PDF fallback needs.
package ocr

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

// Config holds the settings for constructing a Client.
type Config struct {
	// Endpoint is the parse endpoint (default: https://api.ocr.space/parse/image).
	Endpoint string
	// APIKey is the service API key, sent in the "apikey" header.
	APIKey string
	// Language is the OCR language hint (default: "eng").
	Language string
	// Timeout bounds each recognition request (default: 120s — OCR of a
	// multi-page scan is slow).
	Timeout time.Duration
}

// Client recognises text in scanned documents via the remote OCR service.
// It is safe for concurrent use.
type Client struct {
	endpoint string
	apiKey   string
	language string
	client   *http.Client
}

// New constructs a Client from the given config.
func New(cfg *Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.ocr.space/parse/image"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// parseResponse is the JSON body returned by the parse endpoint.
type parseResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool     `json:"IsErroredOnProcessing"`
	ErrorMessage          messages `json:"ErrorMessage"`
}

// messages tolerates the service returning either a string or a string array
// in its error field.
type messages []string

// UnmarshalJSON accepts both `"msg"` and `["msg", ...]` encodings.
func (m *messages) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*m = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*m = []string{single}
	return nil
}

// Recognize sends data to the OCR service and returns the concatenated
// per-page text, pages separated by a newline.
func (c *Client) Recognize(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("ocr: create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("ocr: write form file: %w", err)
	}
	_ = mw.WriteField("language", c.language)
	_ = mw.WriteField("isOverlayRequired", "false")
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("ocr: close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("ocr: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ocr: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ocr: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result parseResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("ocr: decode response: %w", err)
	}
	if result.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr: processing failed: %s", strings.Join(result.ErrorMessage, "; "))
	}

	pages := make([]string, 0, len(result.ParsedResults))
	for _, r := range result.ParsedResults {
		pages = append(pages, r.ParsedText)
	}
	return strings.Join(pages, "\n"), nil
}
