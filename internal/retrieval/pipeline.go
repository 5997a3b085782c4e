// Package retrieval implements the query pipeline: retrieve relevant chunks
// for a question, assemble them into a context block, synthesize a grounded
// answer, and resolve signed links to the source files. Unlike ingestion,
// the query path is all-or-nothing — any stage failure aborts the request.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/askdocs/askdocs-go/internal/logging"
	"github.com/askdocs/askdocs-go/internal/rag"
)

// Retriever fetches scored hits for a query. rag.Retriever satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, indexName, query string) ([]rag.Hit, error)
}

// Assembler builds the context block from hits. rag.Assembler satisfies it.
type Assembler interface {
	Assemble(hits []rag.Hit) string
}

// Synthesizer produces the answer. synthesis.Synthesizer satisfies it.
type Synthesizer interface {
	Answer(ctx context.Context, assembledContext, query string) (string, error)
}

// LinkResolver signs source links for hits. rag.LinkResolver satisfies it.
type LinkResolver interface {
	Resolve(ctx context.Context, hits []rag.Hit) ([]string, error)
}

// Result is the complete answer to one query.
type Result struct {
	// Query echoes the question asked.
	Query string `json:"query"`
	// Answer is the synthesized response, or the model's "I don't know"
	// fallback when the context was insufficient.
	Answer string `json:"answer"`
	// Hits are the retrieved chunks that grounded the answer, best first.
	Hits []rag.Hit `json:"hits"`
	// SignedURLs are time-limited download links for the distinct source
	// files among the hits.
	SignedURLs []string `json:"signed_urls"`
}

// Pipeline wires the query stages together. It is safe for concurrent use.
type Pipeline struct {
	retriever   Retriever
	assembler   Assembler
	synthesizer Synthesizer
	links       LinkResolver
}

// New constructs a Pipeline. All four stages are required.
func New(retriever Retriever, assembler Assembler, synthesizer Synthesizer, links LinkResolver) (*Pipeline, error) {
	if retriever == nil || assembler == nil || synthesizer == nil || links == nil {
		return nil, fmt.Errorf("retrieval: retriever, assembler, synthesizer and link resolver are all required")
	}
	return &Pipeline{
		retriever:   retriever,
		assembler:   assembler,
		synthesizer: synthesizer,
		links:       links,
	}, nil
}

// Query runs the full pipeline against the named knowledge base. An empty
// hit set is not an error — the synthesizer still runs with an empty context
// and returns its fallback answer.
func (p *Pipeline) Query(ctx context.Context, indexName, query string) (*Result, error) {
	hits, err := p.retriever.Retrieve(ctx, indexName, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	assembled := p.assembler.Assemble(hits)

	answer, err := p.synthesizer.Answer(ctx, assembled, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	urls, err := p.links.Resolve(ctx, hits)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	logging.FromContext(ctx).Info("retrieval: query answered",
		slog.String("index", indexName),
		slog.Int("hits", len(hits)),
		slog.Int("sources", len(urls)),
	)

	return &Result{
		Query:      query,
		Answer:     answer,
		Hits:       hits,
		SignedURLs: urls,
	}, nil
}
