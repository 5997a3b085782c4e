package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/askdocs/askdocs-go/internal/chunker"
	"github.com/askdocs/askdocs-go/internal/extractor"
	"github.com/askdocs/askdocs-go/internal/objectstore"
	"github.com/askdocs/askdocs-go/internal/ocr"
	"github.com/askdocs/askdocs-go/internal/rag"
	"github.com/askdocs/askdocs-go/internal/registry"
	"github.com/askdocs/askdocs-go/internal/tokenizer"
	"github.com/askdocs/askdocs-go/internal/transcriber"
)

// buildIndex connects to Qdrant using QDRANT_* environment variables.
// No collections are created until the first ingestion.
func buildIndex() (*rag.QdrantIndex, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)

	index, err := rag.NewQdrantIndex(&rag.QdrantConfig{
		Host:   host,
		Port:   port,
		APIKey: os.Getenv("QDRANT_API_KEY"),
		UseTLS: os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}
	return index, nil
}

// buildStore constructs the object store client from SUPABASE_* environment
// variables. The store holds original uploads and signs download links.
func buildStore() (*objectstore.Client, error) {
	url := os.Getenv("SUPABASE_URL")
	key := os.Getenv("SUPABASE_KEY")
	if url == "" || key == "" {
		return nil, fmt.Errorf("object storage requires SUPABASE_URL and SUPABASE_KEY")
	}
	return objectstore.New(&objectstore.Config{
		BaseURL: url,
		APIKey:  key,
		Bucket:  getEnvOrDefault("SUPABASE_BUCKET", "documents"),
	}), nil
}

// buildExtractor constructs the text extractor with its optional OCR and
// transcription fallbacks. Either fallback is omitted when its credentials
// are absent; affected formats then fail per-file at ingestion time.
func buildExtractor(log *slog.Logger) *extractor.Extractor {
	var ocrClient extractor.OCRClient
	if key := os.Getenv("OCR_API_KEY"); key != "" {
		ocrClient = ocr.New(&ocr.Config{
			Endpoint: os.Getenv("OCR_ENDPOINT"),
			APIKey:   key,
			Language: os.Getenv("OCR_LANGUAGE"),
		})
	} else {
		log.Info("ocr disabled", slog.String("reason", "OCR_API_KEY not set"))
	}

	var trans extractor.Transcriber
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		trans = transcriber.New(&transcriber.Config{
			APIKey: key,
			Model:  os.Getenv("TRANSCRIBE_MODEL"),
		})
	} else {
		log.Info("transcription disabled", slog.String("reason", "OPENAI_API_KEY not set"))
	}

	return extractor.New(ocrClient, trans)
}

// buildChunker constructs the token chunker using the vocabulary of the
// configured embedding model.
func buildChunker() (*chunker.Chunker, *tokenizer.BPETokenizer, error) {
	tok, err := tokenizer.ForModel(os.Getenv("EMBEDDING_MODEL"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	ch, err := chunker.New(tok, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	return ch, tok, nil
}

// openRegistry opens the ingestion registry. ASKDOCS_REGISTRY_DB overrides
// the default path (~/.askdocs/registry.db). Set to "disabled" to disable.
// A registry failure never blocks ingestion — it degrades to nil with a warning.
func openRegistry(log *slog.Logger) (*registry.SQLiteRegistry, func()) {
	dbPath := os.Getenv("ASKDOCS_REGISTRY_DB")
	if dbPath == "disabled" {
		log.Info("registry: disabled via ASKDOCS_REGISTRY_DB=disabled")
		return nil, func() {}
	}
	if dbPath == "" {
		var err error
		dbPath, err = registry.DefaultDBPath()
		if err != nil {
			log.Warn("registry: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
	}
	reg, err := registry.Open(dbPath)
	if err != nil {
		log.Warn("registry: failed to open, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("registry: opened", slog.String("path", dbPath))
	return reg, func() { _ = reg.Close() }
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
