package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/askdocs/askdocs-go/internal/ingestion"
	"github.com/askdocs/askdocs-go/internal/rag"
	"github.com/askdocs/askdocs-go/internal/registry"
	"github.com/askdocs/askdocs-go/internal/retrieval"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// MaxUploadBytes caps the in-memory size of one multipart upload request.
	// Defaults to 64 MiB if zero.
	MaxUploadBytes int64
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Registry is the Prometheus registry metrics are registered against.
	// If nil, a fresh registry is created.
	Registry *prometheus.Registry
}

// ingester is the interface the upload handlers call.
// *ingestion.Pipeline satisfies it; tests inject a fake.
type ingester interface {
	IngestFiles(ctx context.Context, indexName string, files []ingestion.File) []ingestion.FileResult
	IngestCaption(ctx context.Context, indexName, filename string, data []byte, caption string) ingestion.FileResult
}

// querier is the interface handleQuery calls.
// *retrieval.Pipeline satisfies it; tests inject a fake.
type querier interface {
	Query(ctx context.Context, indexName, query string) (*retrieval.Result, error)
}

// captioner is the interface handleImageCaption calls.
// *caption.Captioner satisfies it; tests inject a fake.
type captioner interface {
	Caption(ctx context.Context, data []byte, filename string) (string, error)
}

// lister is the interface handleRecent calls.
// *registry.SQLiteRegistry satisfies it; tests inject a fake.
type lister interface {
	Recent(ctx context.Context, n int) ([]registry.Entry, error)
}

// Deps bundles the domain components the server exposes over HTTP.
type Deps struct {
	// Ingester runs the document and image ingestion pipelines; required.
	Ingester ingester
	// Querier runs the query pipeline; required.
	Querier querier
	// Captioner generates image captions; optional (503 when nil).
	Captioner captioner
	// Lister serves the ingestion registry; optional (empty list when nil).
	Lister lister
}

// Server is the HTTP server exposing the ingestion and retrieval pipelines.
type Server struct {
	// deps holds the injected domain components.
	deps Deps
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// queryRequest is the JSON body for POST /api/retrieve/query.
type queryRequest struct {
	// Query is the user's question.
	Query string `json:"query"`
	// IndexName selects the knowledge base; required.
	IndexName string `json:"index_name"`
}

// uploadResponse is the JSON response for the upload endpoints.
type uploadResponse struct {
	// Results holds one entry per uploaded file, in input order.
	Results []ingestion.FileResult `json:"results"`
}

// captionResponse is the JSON response for POST /api/images/caption.
type captionResponse struct {
	// Filename echoes the uploaded image's name.
	Filename string `json:"filename"`
	// Caption is the generated description.
	Caption string `json:"caption"`
}

// recentResponse is the JSON response for GET /api/files/recent.
type recentResponse struct {
	// Files holds the most recent ingestion attempts, newest-first.
	Files []registry.Entry `json:"files"`
}

// errorResponse is the JSON body for 4xx/5xx responses.
type errorResponse struct {
	// Error is the human-readable failure description.
	Error string `json:"error"`
}

// hitsOrEmpty keeps the hits field a JSON array even when retrieval found
// nothing.
func hitsOrEmpty(hits []rag.Hit) []rag.Hit {
	if hits == nil {
		return []rag.Hit{}
	}
	return hits
}
