package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_UnitLengthAndDeterministic(t *testing.T) {
	e := NewEmbedder(0)
	texts := []string{"How do I write a strong SOP?", "GRE prep"}

	a, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, a, 2)
	assert.Equal(t, a, b)
	for _, v := range a {
		require.Len(t, v, DefaultDimension)
		norm := 0.0
		for _, x := range v {
			norm += x * x
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
	}
}

func TestEmbed_CaseInsensitive(t *testing.T) {
	e := NewEmbedder(16)
	out, err := e.Embed(context.Background(), []string{"TOEFL", "toefl"})
	require.NoError(t, err)
	assert.Equal(t, out[0], out[1])
	assert.Equal(t, 16, e.Dimension())
}

func TestEmbed_EmptyText(t *testing.T) {
	e := NewEmbedder(8)
	out, err := e.Embed(context.Background(), []string{""})
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 8), out[0])
}
