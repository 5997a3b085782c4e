package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs-go/internal/embedder"
	"github.com/askdocs/askdocs-go/internal/ingestion"
	"github.com/askdocs/askdocs-go/internal/logging"
)

// NewIngestCmd constructs the `askdocs ingest` command, which indexes local
// files into a knowledge base without going through the HTTP server.
func NewIngestCmd() *cobra.Command {
	var indexName string

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest local documents into a knowledge base",
		Long: `Read local files, extract their text, and index them into the named
knowledge base. Each file is processed independently — one bad file never
blocks the rest of the batch.

Supported formats: pdf, docx, doc, txt, mp3, wav, m4a. Images are ingested
through the HTTP API, which pairs each image with its caption.

Required environment variables:
  QDRANT_HOST      Qdrant server hostname (default: localhost)
  QDRANT_PORT      Qdrant gRPC port (default: 6334)
  SUPABASE_URL     Object storage base URL
  SUPABASE_KEY     Object storage service key
  EMBEDDING_*      Embedding backend settings (see README)

Examples:
  askdocs ingest report.pdf notes.docx
  askdocs ingest --index contracts nda.pdf msa.pdf
  askdocs ingest --index meetings standup.mp3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}

			index, err := buildIndex()
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer func() { _ = index.Close() }()

			store, err := buildStore()
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			ch, _, err := buildChunker()
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			reg, closeRegistry := openRegistry(log)
			defer closeRegistry()

			cfg := &ingestion.Config{
				Uploader:   store,
				Extractor:  buildExtractor(log),
				Chunker:    ch,
				Embedder:   emb,
				Index:      index,
				Dimensions: embedder.DefaultDimensions(embedder.Backend()),
			}
			if reg != nil {
				cfg.Recorder = reg
			}
			pipeline, err := ingestion.New(cfg)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			files := make([]ingestion.File, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("ingest: read %s: %w", path, err)
				}
				files = append(files, ingestion.File{
					Name: filepath.Base(path),
					Data: data,
				})
			}

			results := pipeline.IngestFiles(ctx, indexName, files)

			failed := 0
			for _, r := range results {
				switch r.Status {
				case ingestion.StatusIndexed:
					fmt.Printf("%-30s %s (%d chunks)\n", r.Filename, r.Status, r.ChunksIndexed)
				default:
					failed++
					fmt.Printf("%-30s %s: %s\n", r.Filename, r.Status, r.Error)
				}
			}
			if failed > 0 {
				return fmt.Errorf("ingest: %d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&indexName, "index", "i", ingestion.DefaultIndexName, "Knowledge base to ingest into")

	return cmd
}
