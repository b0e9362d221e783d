// Package memory caches knowledge-base document embeddings in process so a
// turn only embeds the query.
package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"eduverse/internal/domain"
	"eduverse/internal/retrieval"
)

// Storage implements domain.Retriever with a vector cache keyed by document
// ID and text. Ranking is identical to retrieval.Retrieve.
type Storage struct {
	mu      sync.RWMutex
	embed   domain.EmbedFunc
	vectors map[cacheKey][]float64
}

type cacheKey struct {
	id   string
	text string
}

// NewStorage returns an empty cache over embed.
func NewStorage(embed domain.EmbedFunc) *Storage {
	return &Storage{embed: embed, vectors: make(map[cacheKey][]float64)}
}

// Load embeds docs not yet cached in a single batch call.
func (s *Storage) Load(ctx context.Context, docs []domain.Document) error {
	s.mu.RLock()
	var missing []domain.Document
	for _, d := range docs {
		if _, ok := s.vectors[keyOf(d)]; !ok {
			missing = append(missing, d)
		}
	}
	s.mu.RUnlock()
	if len(missing) == 0 {
		return nil
	}

	texts := make([]string, len(missing))
	for i, d := range missing {
		texts[i] = d.Text
	}
	vecs, err := retrieval.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		return goerr.Wrap(err, "failed to embed documents", goerr.V("count", len(missing)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range missing {
		s.vectors[keyOf(d)] = vecs[i]
	}
	return nil
}

// Retrieve ranks docs against query, embedding any uncached documents first.
func (s *Storage) Retrieve(ctx context.Context, query string, docs []domain.Document, topK int) ([]domain.ScoredDocument, error) {
	if len(docs) == 0 {
		return []domain.ScoredDocument{}, nil
	}
	if err := s.Load(ctx, docs); err != nil {
		return nil, err
	}
	queryVec, err := retrieval.EmbedQuery(ctx, s.embed, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	docVecs := make([][]float64, len(docs))
	for i, d := range docs {
		docVecs[i] = s.vectors[keyOf(d)]
	}
	s.mu.RUnlock()

	return retrieval.Rank(queryVec, docs, docVecs, topK)
}

// Len reports the number of cached vectors.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func keyOf(d domain.Document) cacheKey { return cacheKey{id: d.ID, text: d.Text} }
