// Package retrieval ranks knowledge-base documents against a query by the
// dot product of their embeddings.
package retrieval

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"eduverse/internal/domain"
)

// DefaultTopK is used when a non-positive topK is requested.
const DefaultTopK = 3

// Retriever embeds documents on every call. Use memory.Storage when the
// knowledge base is stable enough to cache its vectors.
type Retriever struct {
	embed domain.EmbedFunc
}

// New returns a Retriever over the given embedding function.
func New(embed domain.EmbedFunc) *Retriever {
	return &Retriever{embed: embed}
}

// Retrieve implements domain.Retriever.
func (r *Retriever) Retrieve(ctx context.Context, query string, docs []domain.Document, topK int) ([]domain.ScoredDocument, error) {
	return Retrieve(ctx, query, docs, r.embed, topK)
}

// Retrieve returns the topK documents most similar to query, best first.
func Retrieve(ctx context.Context, query string, docs []domain.Document, embed domain.EmbedFunc, topK int) ([]domain.ScoredDocument, error) {
	if len(docs) == 0 {
		return []domain.ScoredDocument{}, nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	docVecs, err := EmbedAll(ctx, embed, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed documents", goerr.V("count", len(docs)))
	}
	queryVec, err := EmbedQuery(ctx, embed, query)
	if err != nil {
		return nil, err
	}
	return Rank(queryVec, docs, docVecs, topK)
}

// EmbedAll calls embed and checks that one vector came back per text.
func EmbedAll(ctx context.Context, embed domain.EmbedFunc, texts []string) ([][]float64, error) {
	vecs, err := embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, goerr.Wrap(ErrEmbeddingCount, "embedder returned wrong number of vectors",
			goerr.V("want", len(texts)), goerr.V("got", len(vecs)))
	}
	return vecs, nil
}

// EmbedQuery embeds a single query string.
func EmbedQuery(ctx context.Context, embed domain.EmbedFunc, query string) ([]float64, error) {
	vecs, err := EmbedAll(ctx, embed, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}
	return vecs[0], nil
}

// Rank scores docs by dot product with queryVec and returns the first topK
// in descending score order. Ties keep knowledge-base order.
func Rank(queryVec []float64, docs []domain.Document, docVecs [][]float64, topK int) ([]domain.ScoredDocument, error) {
	if len(docs) != len(docVecs) {
		return nil, goerr.Wrap(ErrEmbeddingCount, "documents and vectors length mismatch",
			goerr.V("documents", len(docs)), goerr.V("vectors", len(docVecs)))
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	scored := make([]domain.ScoredDocument, len(docs))
	for i, d := range docs {
		score, err := Dot(queryVec, docVecs[i])
		if err != nil {
			return nil, goerr.Wrap(err, "cannot score document", goerr.V("id", d.ID))
		}
		scored[i] = domain.ScoredDocument{Document: d, Score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, goerr.Wrap(ErrDimensionMismatch, "vectors differ in length",
			goerr.V("left", len(a)), goerr.V("right", len(b)))
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}
