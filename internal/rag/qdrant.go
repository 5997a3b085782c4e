package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// Payload field names used for every stored point.
const (
	payloadFilename   = "filename"
	payloadFileKey    = "filekey"
	payloadChunkIndex = "chunk_index"
	payloadText       = "text"
	payloadSourceKind = "source_kind"
)

// QdrantConfig holds connection parameters for a Qdrant instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantIndex implements Index backed by a Qdrant instance. Unlike a
// single-collection store, collections are named per call so one client
// serves every knowledge base.
type QdrantIndex struct {
	client *qdrant.Client
}

// NewQdrantIndex creates a Qdrant-backed Index. No collections are touched
// until Ensure is called.
func NewQdrantIndex(cfg *QdrantConfig) (*QdrantIndex, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &QdrantIndex{client: client}, nil
}

// Ensure creates the named collection with cosine distance if it does not
// already exist. When two instances race on the create, the loser's
// "already exists" error is treated as success.
func (s *QdrantIndex) Ensure(ctx context.Context, name string, dim int) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return fmt.Errorf("qdrant: failed to create collection %q: %w", name, err)
	}

	return nil
}

// Upsert writes the vectors into the named collection. Point IDs are the
// deterministic UUIDs carried by each Vector, so re-ingesting a file
// overwrites its previous points.
func (s *QdrantIndex) Upsert(ctx context.Context, name string, vectors []Vector) error {
	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for _, v := range vectors {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(v.ID),
			Vectors: qdrant.NewVectors(v.Values...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadFilename:   v.Meta.Filename,
				payloadFileKey:    v.Meta.FileKey,
				payloadChunkIndex: v.Meta.ChunkIndex,
				payloadText:       v.Meta.Text,
				payloadSourceKind: v.Meta.SourceKind,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert into %q failed: %w", name, err)
	}

	return nil
}

// Query performs a cosine similarity search and returns the top-k hits,
// best first, with their payloads.
func (s *QdrantIndex) Query(ctx context.Context, name string, embedding []float32, topK int) ([]Hit, error) {
	limit := uint64(topK)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query against %q failed: %w", name, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hit := Hit{Score: r.Score}
		if p := r.Payload; p != nil {
			if v, ok := p[payloadFilename]; ok {
				hit.Filename = v.GetStringValue()
			}
			if v, ok := p[payloadFileKey]; ok {
				hit.FileKey = v.GetStringValue()
			}
			if v, ok := p[payloadChunkIndex]; ok {
				hit.ChunkIndex = int(v.GetIntegerValue())
			}
			if v, ok := p[payloadText]; ok {
				hit.Text = v.GetStringValue()
			}
			if v, ok := p[payloadSourceKind]; ok {
				hit.SourceKind = v.GetStringValue()
			}
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// Client exposes the underlying Qdrant client for health probes.
func (s *QdrantIndex) Client() *qdrant.Client {
	return s.client
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantIndex) Close() error {
	return s.client.Close()
}
