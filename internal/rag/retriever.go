package rag

import (
	"context"
	"fmt"
)

// Retrieval defaults.
const (
	// DefaultTopK is the number of candidates requested from the index.
	DefaultTopK = 5

	// DefaultScoreThreshold is the minimum cosine similarity a hit must
	// reach to survive filtering.
	DefaultScoreThreshold = 0.5
)

// Retriever embeds a query and returns the relevant hits from a named
// collection, filtered by a similarity threshold. Hits below the threshold
// are dropped client-side so the cut-off stays consistent across store
// backends.
type Retriever struct {
	embedder  Embedder
	index     Index
	topK      int
	threshold float32
}

// NewRetriever constructs a Retriever. topK=0 and threshold=0 select the
// defaults (5 and 0.5). A deliberately unfiltered retriever can pass a
// negative threshold.
func NewRetriever(embedder Embedder, index Index, topK int, threshold float32) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("rag: index must not be nil")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold == 0 {
		threshold = DefaultScoreThreshold
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		topK:      topK,
		threshold: threshold,
	}, nil
}

// Retrieve embeds the query, fetches the top-k candidates from the named
// collection, and drops everything scoring below the threshold. The store's
// best-first ordering is preserved. No survivors is not an error — the
// caller receives an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, indexName, query string) ([]Hit, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query failed: %w", err)
	}

	candidates, err := r.index.Query(ctx, indexName, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search failed: %w", err)
	}

	hits := make([]Hit, 0, len(candidates))
	for _, h := range candidates {
		if h.Score < r.threshold {
			continue
		}
		hits = append(hits, h)
	}

	return hits, nil
}
