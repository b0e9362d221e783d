// Package embedding turns text into vectors for evidence retrieval.
// Implementations live in sub-packages (hash, tfidf, openai); this package
// holds the helpers they share.
package embedding

import (
	"context"
	"math"

	"github.com/m-mizutani/goerr/v2"

	"eduverse/internal/domain"
)

var (
	// ErrUnknownEmbedder is returned when configuration names an unsupported type.
	ErrUnknownEmbedder = goerr.New("unknown embedder type")
	// ErrNotPrepared is returned by corpus-fitted embedders used before Prepare.
	ErrNotPrepared = goerr.New("embedder not prepared")
)

// Func adapts an Embedder to the retriever's EmbedFunc contract.
func Func(e domain.Embedder) domain.EmbedFunc {
	return func(ctx context.Context, texts []string) ([][]float64, error) {
		return e.Embed(ctx, texts)
	}
}

// Normalize scales v to unit length in place. The epsilon keeps zero
// vectors at zero instead of NaN.
func Normalize(v []float64) []float64 {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm) + 1e-8
	for i := range v {
		v[i] /= norm
	}
	return v
}
