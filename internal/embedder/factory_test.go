package embedder

import (
	"log/slog"
	"os"
	"testing"
)

// clearEmbeddingEnv unsets every env var the factory consults so each test
// starts from a clean slate. t.Setenv registers restoration automatically.
func clearEmbeddingEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS",
		"EMBEDDING_API_KEY", "EMBEDDING_ENDPOINT",
		"OPENAI_API_KEY", "AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT",
		"AZURE_OPENAI_API_VERSION", "OLLAMA_HOST",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestNewFromEnv_DefaultsToOpenAI(t *testing.T) {
	clearEmbeddingEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	e, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if _, ok := e.(*OpenAIEmbedder); !ok {
		t.Errorf("embedder type %T, want *OpenAIEmbedder", e)
	}
}

func TestNewFromEnv_OpenAIRequiresKey(t *testing.T) {
	clearEmbeddingEnv(t)

	if _, err := NewFromEnv(); err == nil {
		t.Error("want error without an API key, got nil")
	}
}

func TestNewFromEnv_AzureRequiresEndpoint(t *testing.T) {
	clearEmbeddingEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "azure")
	t.Setenv("AZURE_OPENAI_API_KEY", "azure-key")

	if _, err := NewFromEnv(); err == nil {
		t.Error("want error without an Azure endpoint, got nil")
	}
}

func TestNewFromEnv_Ollama(t *testing.T) {
	clearEmbeddingEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "ollama")

	e, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if _, ok := e.(*OllamaEmbedder); !ok {
		t.Errorf("embedder type %T, want *OllamaEmbedder", e)
	}
}

func TestNewFromEnv_UnknownBackend(t *testing.T) {
	clearEmbeddingEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "bogus")

	if _, err := NewFromEnv(); err == nil {
		t.Error("want error for unknown backend, got nil")
	}
}

func TestDefaultDimensions(t *testing.T) {
	clearEmbeddingEnv(t)

	if got := DefaultDimensions("openai"); got != 1536 {
		t.Errorf("openai dimensions %d, want 1536", got)
	}
	if got := DefaultDimensions("ollama"); got != 768 {
		t.Errorf("ollama dimensions %d, want 768", got)
	}

	t.Setenv("EMBEDDING_DIMENSIONS", "3072")
	if got := DefaultDimensions("openai"); got != 3072 {
		t.Errorf("dimensions override %d, want 3072", got)
	}
}

func TestValidate_ChatModelWarning(t *testing.T) {
	clearEmbeddingEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_MODEL", "gpt-4o-mini")

	// The misconfigured model is only a warning, not an error — the name
	// heuristic can have false positives.
	if err := Validate(slog.Default()); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if !looksLikeChatModel("gpt-4o-mini") {
		t.Error("gpt-4o-mini must be flagged as a chat model")
	}
	if looksLikeChatModel("text-embedding-3-small") {
		t.Error("text-embedding-3-small must not be flagged")
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	clearEmbeddingEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "azure")

	if err := Validate(slog.Default()); err == nil {
		t.Error("want error for azure without credentials, got nil")
	}
}
