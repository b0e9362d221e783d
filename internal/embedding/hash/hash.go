// Package hash provides a deterministic character-bucket embedder. It has no
// semantic power and exists for demos and tests.
package hash

import (
	"context"
	"strings"

	"eduverse/internal/embedding"
)

// DefaultDimension is the bucket count used when none is configured.
const DefaultDimension = 64

// Embedder counts runes of the lowercased text into dimension buckets and
// L2-normalizes the result.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hash embedder; a non-positive dimension selects the default.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hash" }

// Dimension returns the size of produced vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns one unit vector per text.
func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, e.dimension)
		for _, r := range strings.ToLower(text) {
			vec[int(r)%e.dimension]++
		}
		out[i] = embedding.Normalize(vec)
	}
	return out, nil
}
