// Package embed converts text into fixed-dimension vectors.
package embed

import "context"

// Provider generates embeddings from text. The same provider instance must
// back indexing and querying: mismatched models silently degrade relevance.
type Provider interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the embedding model identifier.
	Model() string

	// Dimensions returns the vector width this provider produces. Vector
	// store schemas are sized from it.
	Dimensions() int
}
