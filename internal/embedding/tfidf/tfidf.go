// Package tfidf implements a TF-IDF vectorizer usable both as a retrieval
// embedder and as the feature extractor of the intent classifier.
package tfidf

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"eduverse/internal/embedding"
)

// Tokenizer splits text into terms.
type Tokenizer func(text string) []string

// Options configures an Embedder.
type Options struct {
	// NGrams is the largest n-gram size; 1 means unigrams only.
	NGrams int
	// MaxFeatures caps the vocabulary by document frequency; 0 means no cap.
	MaxFeatures int
	// Tokenizer overrides the built-in word tokenizer.
	Tokenizer Tokenizer
}

// Embedder builds a vocabulary from the corpus and computes smoothed IDF values.
type Embedder struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
	prepared   bool
	nGrams     int
	maxFeat    int
	tokenize   Tokenizer
}

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\d+(?:\.\d+)?`)

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder(opts Options) *Embedder {
	if opts.NGrams <= 0 {
		opts.NGrams = 1
	}
	e := &Embedder{
		vocabulary: make(map[string]int),
		nGrams:     opts.NGrams,
		maxFeat:    opts.MaxFeatures,
		tokenize:   opts.Tokenizer,
	}
	if e.tokenize == nil {
		stop := defaultStopwords()
		e.tokenize = func(text string) []string {
			raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
			out := raw[:0]
			for _, t := range raw {
				if _, isStop := stop[t]; !isStop {
					out = append(out, t)
				}
			}
			return out
		}
	}
	return e
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return goerr.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, term := range e.terms(text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return goerr.New("no tokens found in corpus", goerr.V("documents", len(corpus)))
	}
	// Most frequent first for the feature cap, then alphabetical for a stable layout.
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if e.maxFeat > 0 && len(terms) > e.maxFeat {
		terms = terms[:e.maxFeat]
	}
	sort.Strings(terms)

	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(terms)
	e.prepared = true
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Vector computes the L2-normalized TF-IDF vector of one text. Texts with no
// known terms map to the zero vector.
func (e *Embedder) Vector(text string) ([]float64, error) {
	if !e.prepared {
		return nil, embedding.ErrNotPrepared
	}
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, term := range e.terms(text) {
		if idx, ok := e.vocabulary[term]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// Embed computes TF-IDF vectors for a batch of texts.
func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.Vector(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *Embedder) terms(text string) []string {
	tokens := e.tokenize(text)
	if e.nGrams == 1 {
		return tokens
	}
	out := append([]string(nil), tokens...)
	for n := 2; n <= e.nGrams; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
