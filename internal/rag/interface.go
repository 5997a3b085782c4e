// Package rag defines the interfaces and data types for the
// retrieval-augmented pipeline: vector indexing, retrieval, context assembly,
// and source-link resolution. Concrete backends (Qdrant, object storage)
// satisfy these interfaces so the pipelines never depend on a specific vendor.
package rag

import (
	"context"
)

// Metadata is the payload stored alongside every vector. It carries enough to
// render a hit and to resolve the source file without a second lookup.
type Metadata struct {
	// Filename is the original upload filename.
	Filename string

	// FileKey is the object-storage key of the source file ("{index}/{filename}").
	FileKey string

	// ChunkIndex is the zero-based ordinal of this chunk within its document.
	// Always 0 for caption vectors.
	ChunkIndex int

	// Text is the chunk (or caption) text itself.
	Text string

	// SourceKind distinguishes document chunks ("chunk") from image
	// captions ("caption").
	SourceKind string
}

// Vector is one embedding plus its payload, ready for upsert.
type Vector struct {
	// ID is the deterministic point UUID derived from the natural key.
	ID string

	// Values is the dense embedding.
	Values []float32

	// Meta is the payload stored with the point.
	Meta Metadata
}

// Hit is one retrieval result.
type Hit struct {
	// Score is the cosine similarity assigned by the vector store.
	Score float32

	// Filename, FileKey, ChunkIndex, Text and SourceKind mirror the
	// stored payload.
	Filename   string
	FileKey    string
	ChunkIndex int
	Text       string
	SourceKind string
}

// Embedder converts one text unit into a dense vector. Implementations must
// be safe to call from multiple goroutines.
type Embedder interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is the interface for a named-collection vector store.
// Implementations must be safe to call from multiple goroutines.
type Index interface {
	// Ensure makes sure the named collection exists with the given
	// dimensionality, creating it when missing. A concurrent create by
	// another instance is not an error.
	Ensure(ctx context.Context, name string, dim int) error

	// Upsert writes vectors into the named collection. Writing a vector
	// whose ID already exists replaces the stored point.
	Upsert(ctx context.Context, name string, vectors []Vector) error

	// Query returns the topK nearest points for the embedding, best first.
	Query(ctx context.Context, name string, embedding []float32, topK int) ([]Hit, error)

	// Close releases any resources held by the index.
	Close() error
}

// Signer produces time-limited download URLs for object-storage keys.
type Signer interface {
	// SignURLs returns one signed URL per key, in input order.
	SignURLs(ctx context.Context, keys []string, ttlSeconds int) ([]string, error)
}
