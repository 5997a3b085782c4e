// Package tokenizer wraps the BPE tokenizer used to align chunk boundaries
// with the embedding model's vocabulary. Chunking operates on token IDs, not
// characters, so a chunk never splits inside a token and decoding a chunk
// reproduces exactly the text that was encoded.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultModel is the embedding model whose vocabulary is used when no model
// is specified. Must match the embedder's default.
const DefaultModel = "text-embedding-3-small"

// Tokenizer converts text to and from token IDs. Implementations must be
// safe to call from multiple goroutines.
type Tokenizer interface {
	// Encode converts text into a sequence of token IDs.
	Encode(text string) []int
	// Decode converts a sequence of token IDs back into text.
	Decode(tokens []int) string
	// Count returns the number of tokens in text.
	Count(text string) int
}

// BPETokenizer is a Tokenizer backed by the tiktoken BPE encoding for a
// specific model. The underlying encoder is immutable after construction.
type BPETokenizer struct {
	enc *tiktoken.Tiktoken
}

// ForModel returns a BPETokenizer using the vocabulary of the named model
// (e.g. "text-embedding-3-small").
func ForModel(model string) (*BPETokenizer, error) {
	if model == "" {
		model = DefaultModel
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: no encoding for model %q: %w", model, err)
	}
	return &BPETokenizer{enc: enc}, nil
}

// Encode converts text into token IDs. Special tokens are treated as plain text.
func (t *BPETokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode converts token IDs back into text.
func (t *BPETokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Count returns the number of tokens in text.
func (t *BPETokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
