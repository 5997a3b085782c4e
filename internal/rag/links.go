package rag

import (
	"context"
	"fmt"
)

// DefaultLinkTTLSeconds is how long signed source URLs stay valid.
const DefaultLinkTTLSeconds = 3600

// LinkResolver turns the hits of a query into signed download URLs for their
// source files. Keys are deduplicated first (several chunks of one document
// share a file key) and signed in a single batch request.
type LinkResolver struct {
	signer     Signer
	ttlSeconds int
}

// NewLinkResolver constructs a LinkResolver. ttlSeconds=0 selects the
// one-hour default.
func NewLinkResolver(signer Signer, ttlSeconds int) *LinkResolver {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultLinkTTLSeconds
	}
	return &LinkResolver{signer: signer, ttlSeconds: ttlSeconds}
}

// Resolve returns one signed URL per distinct source file among the hits,
// in first-seen order. No hits yields an empty slice without calling the
// signer.
func (r *LinkResolver) Resolve(ctx context.Context, hits []Hit) ([]string, error) {
	seen := make(map[string]bool, len(hits))
	keys := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.FileKey == "" || seen[h.FileKey] {
			continue
		}
		seen[h.FileKey] = true
		keys = append(keys, h.FileKey)
	}

	if len(keys) == 0 {
		return []string{}, nil
	}

	urls, err := r.signer.SignURLs(ctx, keys, r.ttlSeconds)
	if err != nil {
		return nil, fmt.Errorf("rag: signing source links failed: %w", err)
	}

	return urls, nil
}
