package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs-go/internal/caption"
	"github.com/askdocs/askdocs-go/internal/embedder"
	"github.com/askdocs/askdocs-go/internal/ingestion"
	"github.com/askdocs/askdocs-go/internal/logging"
	"github.com/askdocs/askdocs-go/internal/provider"
	"github.com/askdocs/askdocs-go/internal/rag"
	"github.com/askdocs/askdocs-go/internal/retrieval"
	"github.com/askdocs/askdocs-go/internal/server"
	"github.com/askdocs/askdocs-go/internal/synthesis"
	"github.com/askdocs/askdocs-go/internal/tracing"
)

// NewServeCmd constructs the `askdocs serve` command, which starts the HTTP
// server exposing the ingestion and retrieval API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the AskDocs HTTP server",
		Long: `Start the AskDocs HTTP server on localhost.

The server exposes endpoints for uploading documents and images into named
knowledge bases and for querying them with natural language questions.

Examples:
  askdocs serve
  askdocs serve --port 9090
  MODEL_PROVIDER=azure askdocs serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise embedder: %w", err)
			}
			log.Info("embedder initialised", slog.String("backend", embedder.Backend()))

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}

			synthesizer, err := synthesis.New(chatModel)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			captioner, err := caption.New(chatModel)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			index, err := buildIndex()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = index.Close() }()

			store, err := buildStore()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			ch, tok, err := buildChunker()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			reg, closeRegistry := openRegistry(log)
			defer closeRegistry()

			ingestCfg := &ingestion.Config{
				Uploader:   store,
				Extractor:  buildExtractor(log),
				Chunker:    ch,
				Embedder:   emb,
				Index:      index,
				Dimensions: embedder.DefaultDimensions(embedder.Backend()),
			}
			if reg != nil {
				ingestCfg.Recorder = reg
			}
			ingester, err := ingestion.New(ingestCfg)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			retriever, err := rag.NewRetriever(emb, index, 0, 0)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			querier, err := retrieval.New(
				retriever,
				rag.NewAssembler(tok, 0),
				synthesizer,
				rag.NewLinkResolver(store, 0),
			)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			pingers := []server.Pinger{
				server.NewQdrantPinger(index.Client()),
				server.NewHTTPPinger("storage", os.Getenv("SUPABASE_URL")+"/storage/v1/bucket"),
			}

			deps := server.Deps{
				Ingester:  ingester,
				Querier:   querier,
				Captioner: captioner,
			}
			if reg != nil {
				deps.Lister = reg
			}

			srv, err := server.New(deps, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("ASKDOCS_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", getEnvOrDefault("ASKDOCS_HOST", "127.0.0.1"), "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", getEnvInt("ASKDOCS_PORT", 8080), "TCP port to listen on")

	return cmd
}
