// Package intent classifies advisor queries into a fixed set of intents with
// a TF-IDF feature vector and a multinomial logistic regression.
package intent

import (
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"

	"eduverse/internal/domain"
	"eduverse/internal/embedding/tfidf"
	"eduverse/internal/logging"
)

// Options configures training and prediction.
type Options struct {
	Iterations   int
	LearningRate float64
	// L2 is the weight decay applied on every step.
	L2          float64
	MaxFeatures int
	// MinConfidence only affects logging: weaker predictions are reported.
	MinConfidence float64
}

// DefaultOptions returns the settings used by the CLI.
func DefaultOptions() Options {
	return Options{
		Iterations:    300,
		LearningRate:  1.0,
		L2:            1e-4,
		MaxFeatures:   5000,
		MinConfidence: 0.4,
	}
}

// Validate reports non-positive training parameters.
func (o Options) Validate() error {
	if o.Iterations <= 0 {
		return goerr.Wrap(ErrInvalidOptions, "iterations must be positive", goerr.V("iterations", o.Iterations))
	}
	if o.LearningRate <= 0 {
		return goerr.Wrap(ErrInvalidOptions, "learning rate must be positive", goerr.V("learning_rate", o.LearningRate))
	}
	if o.L2 < 0 {
		return goerr.Wrap(ErrInvalidOptions, "l2 must not be negative", goerr.V("l2", o.L2))
	}
	return nil
}

// Classifier implements domain.IntentClassifier. It is read-only after Train
// and safe for concurrent use.
type Classifier struct {
	vectorizer    *tfidf.Embedder
	labels        []string
	weights       [][]float64
	bias          []float64
	minConfidence float64
	logger        *zap.Logger
}

// Train fits a classifier on ds. Features are unigrams and bigrams of the
// tokens produced by normalizer; a nil normalizer uses the TF-IDF default.
func Train(ds Dataset, normalizer domain.Normalizer, opts Options, logger *zap.Logger) (*Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if len(ds.Labels) != len(ds.Texts) {
		return nil, goerr.Wrap(ErrLabelCount, "cannot train classifier",
			goerr.V("texts", len(ds.Texts)), goerr.V("labels", len(ds.Labels)))
	}

	var tokenizer tfidf.Tokenizer
	if normalizer != nil {
		tokenizer = normalizer.Normalize
	}
	vectorizer := tfidf.NewEmbedder(tfidf.Options{NGrams: 2, MaxFeatures: opts.MaxFeatures, Tokenizer: tokenizer})
	if err := vectorizer.Prepare(ds.Texts); err != nil {
		return nil, goerr.Wrap(err, "failed to fit intent features")
	}

	labels := distinct(ds.Labels)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	xs := make([][]float64, ds.Len())
	ys := make([]int, ds.Len())
	for i, text := range ds.Texts {
		x, err := vectorizer.Vector(text)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to vectorize example", goerr.V("index", i))
		}
		xs[i] = x
		ys[i] = index[ds.Labels[i]]
	}

	c := &Classifier{
		vectorizer:    vectorizer,
		labels:        labels,
		weights:       make([][]float64, len(labels)),
		bias:          make([]float64, len(labels)),
		minConfidence: opts.MinConfidence,
		logger:        logging.OrNop(logger),
	}
	for k := range c.weights {
		c.weights[k] = make([]float64, vectorizer.Dimension())
	}
	c.fit(xs, ys, opts)

	c.logger.Debug("intent classifier trained",
		zap.Int("examples", ds.Len()),
		zap.Int("features", vectorizer.Dimension()),
		zap.Strings("labels", labels))
	return c, nil
}

// fit runs full-batch gradient descent on the softmax cross-entropy loss.
// Weights start at zero, so training is deterministic.
func (c *Classifier) fit(xs [][]float64, ys []int, opts Options) {
	n := float64(len(xs))
	dim := c.vectorizer.Dimension()
	gradW := make([][]float64, len(c.labels))
	for k := range gradW {
		gradW[k] = make([]float64, dim)
	}
	gradB := make([]float64, len(c.labels))

	for iter := 0; iter < opts.Iterations; iter++ {
		for k := range gradW {
			clear(gradW[k])
		}
		clear(gradB)
		for i, x := range xs {
			p := c.probabilities(x)
			for k := range p {
				diff := p[k]
				if k == ys[i] {
					diff -= 1
				}
				gradB[k] += diff
				for j, v := range x {
					if v != 0 {
						gradW[k][j] += diff * v
					}
				}
			}
		}
		for k := range c.weights {
			for j := range c.weights[k] {
				c.weights[k][j] -= opts.LearningRate * (gradW[k][j]/n + opts.L2*c.weights[k][j])
			}
			c.bias[k] -= opts.LearningRate * gradB[k] / n
		}
	}
}

func (c *Classifier) probabilities(x []float64) []float64 {
	logits := make([]float64, len(c.labels))
	maxLogit := math.Inf(-1)
	for k, w := range c.weights {
		z := c.bias[k]
		for j, v := range x {
			if v != 0 {
				z += w[j] * v
			}
		}
		logits[k] = z
		if z > maxLogit {
			maxLogit = z
		}
	}
	sum := 0.0
	for k, z := range logits {
		logits[k] = math.Exp(z - maxLogit)
		sum += logits[k]
	}
	for k := range logits {
		logits[k] /= sum
	}
	return logits
}

// Labels returns the intents the classifier can predict, sorted.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Predict returns the most probable intent with the full distribution.
// Ties resolve to the alphabetically first label.
func (c *Classifier) Predict(text string) (domain.IntentPrediction, error) {
	x, err := c.vectorizer.Vector(text)
	if err != nil {
		return domain.IntentPrediction{}, goerr.Wrap(err, "failed to vectorize query")
	}
	p := c.probabilities(x)
	best := 0
	for k := range p {
		if p[k] > p[best] {
			best = k
		}
	}
	pred := domain.IntentPrediction{
		Intent:        c.labels[best],
		Confidence:    p[best],
		Probabilities: make(map[string]float64, len(p)),
	}
	for k, label := range c.labels {
		pred.Probabilities[label] = p[k]
	}
	if pred.Confidence < c.minConfidence {
		c.logger.Info("low confidence intent",
			zap.String("intent", pred.Intent),
			zap.Float64("confidence", pred.Confidence),
			zap.Float64("threshold", c.minConfidence))
	}
	return pred, nil
}

func distinct(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	var out []string
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
