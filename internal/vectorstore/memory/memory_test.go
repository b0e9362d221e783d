package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduverse/internal/domain"
	"eduverse/internal/embedding"
	"eduverse/internal/embedding/hash"
	"eduverse/internal/retrieval"
)

type countingEmbedder struct {
	inner domain.EmbedFunc
	texts int
}

func (c *countingEmbedder) embed(ctx context.Context, texts []string) ([][]float64, error) {
	c.texts += len(texts)
	return c.inner(ctx, texts)
}

var kb = []domain.Document{
	{ID: "gre_overview", Text: "GRE has Verbal, Quantitative, and Analytical Writing sections."},
	{ID: "toefl_requirements", Text: "Most US programs expect TOEFL iBT scores between 90 and 105."},
	{ID: "funding_options", Text: "Funding options include merit scholarships and assistantships."},
}

func TestStorage_CachesDocumentVectors(t *testing.T) {
	counter := &countingEmbedder{inner: embedding.Func(hash.NewEmbedder(0))}
	s := NewStorage(counter.embed)

	_, err := s.Retrieve(context.Background(), "toefl score", kb, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, counter.texts)
	assert.Equal(t, 3, s.Len())

	_, err = s.Retrieve(context.Background(), "gre", kb, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, counter.texts, "second query embeds only the query")
}

func TestStorage_MatchesUncachedRetrieval(t *testing.T) {
	embed := embedding.Func(hash.NewEmbedder(0))
	s := NewStorage(embed)

	want, err := retrieval.Retrieve(context.Background(), "scholarship funding", kb, embed, 3)
	require.NoError(t, err)
	got, err := s.Retrieve(context.Background(), "scholarship funding", kb, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStorage_ChangedTextIsReembedded(t *testing.T) {
	counter := &countingEmbedder{inner: embedding.Func(hash.NewEmbedder(0))}
	s := NewStorage(counter.embed)
	require.NoError(t, s.Load(context.Background(), kb))

	edited := append([]domain.Document(nil), kb...)
	edited[0].Text = "GRE scores are optional at many programs."
	require.NoError(t, s.Load(context.Background(), edited))
	assert.Equal(t, 4, counter.texts)
	assert.Equal(t, 4, s.Len(), "the old text's vector stays cached under its own key")
}

func TestStorage_EmptyDocuments(t *testing.T) {
	s := NewStorage(embedding.Func(hash.NewEmbedder(0)))
	got, err := s.Retrieve(context.Background(), "q", nil, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}
