package rag

import (
	"fmt"

	"github.com/google/uuid"
)

// Natural keys identify vectors by their source so that re-ingesting the same
// file overwrites its existing points instead of accumulating duplicates.
// Qdrant requires UUID (or integer) point IDs, so the natural key is hashed
// into a deterministic UUIDv5 and kept readable in the payload metadata.

// ChunkKey returns the natural key for chunk i of the named file.
func ChunkKey(filename string, i int) string {
	return fmt.Sprintf("%s_chunk_%d", filename, i)
}

// CaptionKey returns the natural key for the caption vector of the named image.
func CaptionKey(filename string) string {
	return filename + "_caption"
}

// VectorID maps a natural key to its deterministic point UUID.
func VectorID(naturalKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("askdocs://"+naturalKey)).String()
}
