// Package vector stores segment embeddings partitioned by transcript ID and
// serves nearest-neighbor queries over a single partition.
package vector

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"videoquery/config"
)

// Record is one segment's embedding plus the metadata needed to hydrate a
// result without a second lookup.
type Record struct {
	SegmentID string
	Start     float64
	End       float64
	Text      string
	Vector    []float32
}

// Hit is a ranked nearest-neighbor match. Similarity is cosine, in [-1,1].
type Hit struct {
	SegmentID  string
	Start      float64
	End        float64
	Text       string
	Similarity float64
}

// Store abstracts the vector database. Each transcript owns a disjoint
// partition; upserts are idempotent per (transcriptID, segmentID).
type Store interface {
	Upsert(ctx context.Context, transcriptID string, records []Record) (int, error)
	Query(ctx context.Context, transcriptID string, vector []float32, topK int) ([]Hit, error)
	Count(ctx context.Context, transcriptID string) (int, error)
	Delete(ctx context.Context, transcriptID string) (int, error)
}

// Open builds the store named by the STORE environment variable:
// memory (default), pgvector, or milvus.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch kind := strings.ToLower(strings.TrimSpace(os.Getenv("STORE"))); kind {
	case "", "memory":
		return NewMemory(), nil
	case "pgvector":
		return NewPg(ctx, cfg)
	case "milvus":
		return NewMilvus(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown vector store %q", kind)
	}
}

// Cosine computes cosine similarity between two vectors. Mismatched lengths
// and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
