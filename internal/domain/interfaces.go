package domain

import "context"

// Normalizer turns raw text into clean tokens.
type Normalizer interface {
	Normalize(text string) []string
}

// EntityExtractor pulls structured entities out of free text.
// Implementations must not consult previous turns.
type EntityExtractor interface {
	Extract(text string) Entities
}

// IntentClassifier maps text to one of a fixed label set.
type IntentClassifier interface {
	Predict(text string) (IntentPrediction, error)
}

// EmbedFunc maps a batch of texts to one fixed-dimension vector per text.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float64, error)

// Embedder converts free text into numeric vectors.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Preparer is implemented by embedders that must see the corpus before use.
type Preparer interface {
	Prepare(corpus []string) error
}

// Chunker splits raw text into knowledge-base documents.
type Chunker interface {
	Chunk(id, text string, metadata map[string]string) ([]Document, error)
}

// Summarizer produces a brief digest of the knowledge base.
type Summarizer interface {
	Summarize(docs []Document, maxSentences int) (string, error)
}

// KnowledgeSource supplies the current knowledge base.
type KnowledgeSource interface {
	Documents() []Document
}

// Retriever ranks knowledge-base documents against a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, docs []Document, topK int) ([]ScoredDocument, error)
}
