// Package summarizer builds a short extractive digest of the knowledge base.
package summarizer

import (
	"math"
	"sort"
	"strings"

	"eduverse/internal/chunker"
	"eduverse/internal/domain"
)

// DefaultMaxSentences is used when a non-positive limit is requested.
const DefaultMaxSentences = 3

// FrequencySummarizer ranks sentences by the normalized frequency of their
// tokens across all documents.
type FrequencySummarizer struct {
	tokenize func(string) []string
}

// NewFrequencySummarizer uses normalizer for tokens; nil falls back to
// lowercased whitespace splitting.
func NewFrequencySummarizer(normalizer domain.Normalizer) *FrequencySummarizer {
	s := &FrequencySummarizer{tokenize: func(text string) []string {
		return strings.Fields(strings.ToLower(text))
	}}
	if normalizer != nil {
		s.tokenize = normalizer.Normalize
	}
	return s
}

// Summarize implements domain.Summarizer. Selected sentences keep their
// knowledge-base order.
func (s *FrequencySummarizer) Summarize(docs []domain.Document, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	var sentences []string
	for _, d := range docs {
		sentences = append(sentences, chunker.SplitSentences(d.Text)...)
	}
	if len(sentences) == 0 {
		return "", nil
	}

	tokens := make([][]string, len(sentences))
	freq := map[string]float64{}
	for i, sent := range sentences {
		tokens[i] = s.tokenize(sent)
		for _, tok := range tokens[i] {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = max(maxF, v)
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i := range sentences {
		score := 0.0
		for _, tok := range tokens[i] {
			score += freq[tok] / maxF
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(tokens[i])); l > 0 {
			score /= math.Sqrt(l)
		}
		scores[i] = pair{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	maxSentences = min(maxSentences, len(scores))

	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}
