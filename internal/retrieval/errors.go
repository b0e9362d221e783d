package retrieval

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrDimensionMismatch is returned when a document vector and the query
	// vector differ in length.
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")
	// ErrEmbeddingCount is returned when an embedder yields a different number
	// of vectors than texts it was given.
	ErrEmbeddingCount = goerr.New("embedding count mismatch")
)
