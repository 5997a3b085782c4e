// Package objectstore provides a client for a Supabase-storage-style object
// store: authenticated uploads into buckets plus batch creation of
// time-limited signed download URLs.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/askdocs/askdocs-go/internal/errs"
)

// contentTypes maps known upload extensions to their MIME types. Anything
// else is stored as application/octet-stream.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".txt":  "text/plain",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// ContentTypeFor returns the MIME type for the given filename based on its
// extension, defaulting to application/octet-stream.
func ContentTypeFor(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Config holds the settings for constructing a Client.
type Config struct {
	// BaseURL is the storage API base, e.g. "https://<project>.supabase.co".
	BaseURL string

	// APIKey is the service key sent as Bearer token and apikey header.
	APIKey string

	// Bucket is the bucket all operations target.
	Bucket string

	// Timeout bounds each HTTP request. Zero selects 60s.
	Timeout time.Duration
}

// Client talks to one bucket of a Supabase-storage-compatible service.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

// New constructs a Client from the given config.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		bucket:  cfg.Bucket,
		client:  &http.Client{Timeout: timeout},
	}
}

// Bucket returns the bucket this client targets.
func (c *Client) Bucket() string { return c.bucket }

// Upload stores data under the given key, overwriting any existing object.
// The content type is derived from the key's extension.
func (c *Client) Upload(ctx context.Context, key string, data []byte) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("objectstore: create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", ContentTypeFor(key))
	req.Header.Set("x-upsert", "true")

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.NewProvider("object storage", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errs.NewProvider("object storage",
			fmt.Errorf("upload %q: HTTP %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	return nil
}

// signRequest is the JSON body for the batch signing endpoint.
type signRequest struct {
	ExpiresIn int      `json:"expiresIn"`
	Paths     []string `json:"paths"`
}

// signResult is one entry of the batch signing response.
type signResult struct {
	Path      string `json:"path"`
	SignedURL string `json:"signedURL"`
	Error     string `json:"error,omitempty"`
}

// SignURLs creates one time-limited download URL per key via the batch
// signing endpoint. URLs come back in input order; a per-key signing error
// fails the whole call.
func (c *Client) SignURLs(ctx context.Context, keys []string, ttlSeconds int) ([]string, error) {
	payload, err := json.Marshal(signRequest{ExpiresIn: ttlSeconds, Paths: keys})
	if err != nil {
		return nil, fmt.Errorf("objectstore: marshal sign request: %w", err)
	}

	url := fmt.Sprintf("%s/storage/v1/object/sign/%s", c.baseURL, c.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("objectstore: create sign request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.NewProvider("object storage", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errs.NewProvider("object storage",
			fmt.Errorf("sign urls: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var results []signResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, errs.NewProvider("object storage", fmt.Errorf("decode sign response: %w", err))
	}
	if len(results) != len(keys) {
		return nil, errs.NewProvider("object storage",
			fmt.Errorf("sign urls: requested %d, got %d", len(keys), len(results)))
	}

	urls := make([]string, len(results))
	for i, r := range results {
		if r.Error != "" {
			return nil, errs.NewProvider("object storage",
				fmt.Errorf("sign %q: %s", r.Path, r.Error))
		}
		urls[i] = c.baseURL + "/storage/v1" + r.SignedURL
	}

	return urls, nil
}
