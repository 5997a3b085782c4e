// Package chunker splits extracted document text into overlapping,
// token-bounded windows ready for embedding. Window boundaries are computed
// on token IDs so chunks never split inside a token; each window is decoded
// back to text before it is handed to the embedder.
package chunker

import (
	"fmt"
	"strings"

	"github.com/askdocs/askdocs-go/internal/tokenizer"
)

const (
	// DefaultChunkSize is the maximum number of tokens per chunk.
	DefaultChunkSize = 500
	// DefaultOverlap is the number of tokens shared between consecutive chunks.
	DefaultOverlap = 50
)

// Chunk is one token-aligned window of a document's text.
type Chunk struct {
	// Index is the ordinal position of this chunk within the document.
	// Ordinals are assigned before blank chunks are dropped, so they stay
	// stable across re-ingestion of the same content.
	Index int
	// Text is the decoded chunk content.
	Text string
	// TokenCount is the number of tokens in this chunk (≤ chunk size).
	TokenCount int
}

// Chunker produces overlapping token windows from text. It is immutable
// after construction and safe for concurrent use.
type Chunker struct {
	tok     tokenizer.Tokenizer
	size    int
	overlap int
}

// New constructs a Chunker. size and overlap default to DefaultChunkSize and
// DefaultOverlap when zero. overlap must be strictly smaller than size —
// otherwise the window start would never advance — so violating configs are
// rejected here rather than trusted at call time.
func New(tok tokenizer.Tokenizer, size, overlap int) (*Chunker, error) {
	if tok == nil {
		return nil, fmt.Errorf("chunker: tokenizer must not be nil")
	}
	if size == 0 {
		size = DefaultChunkSize
	}
	if overlap == 0 {
		overlap = DefaultOverlap
	}
	if size < 0 || overlap < 0 {
		return nil, fmt.Errorf("chunker: size and overlap must be non-negative (size=%d overlap=%d)", size, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunker: overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{tok: tok, size: size, overlap: overlap}, nil
}

// Split breaks text into token windows of at most the configured chunk size,
// each window sharing the configured overlap with its successor. Windows
// that decode to empty or whitespace-only text are dropped.
func (c *Chunker) Split(text string) []Chunk {
	tokens := c.tok.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []Chunk
	stride := c.size - c.overlap
	for start, i := 0, 0; start < len(tokens); start, i = start+stride, i+1 {
		end := start + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		window := tokens[start:end]
		decoded := c.tok.Decode(window)
		if strings.TrimSpace(decoded) != "" {
			chunks = append(chunks, Chunk{
				Index:      i,
				Text:       decoded,
				TokenCount: len(window),
			})
		}
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

// Size returns the configured maximum tokens per chunk.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in tokens.
func (c *Chunker) Overlap() int { return c.overlap }
