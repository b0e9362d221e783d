// Package service runs one advisor turn: normalize, classify, extract, merge
// dialogue state, retrieve evidence and compose the answer.
package service

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"

	"eduverse/internal/dialogue"
	"eduverse/internal/domain"
	"eduverse/internal/logging"
	"eduverse/internal/response"
)

// RetrieverFactory builds a retriever for a knowledge base. It is called
// again whenever the knowledge base changes so corpus-fitted embedders can
// be refitted.
type RetrieverFactory func(docs []domain.Document) (domain.Retriever, error)

// Deps are the components an Advisor wires together.
type Deps struct {
	Normalizer   domain.Normalizer
	Classifier   domain.IntentClassifier
	Extractor    domain.EntityExtractor
	Knowledge    domain.KnowledgeSource
	NewRetriever RetrieverFactory
	TopK         int
	Logger       *zap.Logger
}

// Advisor is safe for concurrent use. Dialogue state is owned by the caller.
type Advisor struct {
	normalizer   domain.Normalizer
	classifier   domain.IntentClassifier
	extractor    domain.EntityExtractor
	knowledge    domain.KnowledgeSource
	newRetriever RetrieverFactory
	topK         int
	logger       *zap.Logger

	mu        sync.RWMutex
	retriever domain.Retriever
}

// NewAdvisor checks deps and builds the retriever for the current knowledge base.
func NewAdvisor(d Deps) (*Advisor, error) {
	if d.Normalizer == nil || d.Classifier == nil || d.Extractor == nil || d.Knowledge == nil || d.NewRetriever == nil {
		return nil, goerr.New("advisor is missing a component")
	}
	a := &Advisor{
		normalizer:   d.Normalizer,
		classifier:   d.Classifier,
		extractor:    d.Extractor,
		knowledge:    d.Knowledge,
		newRetriever: d.NewRetriever,
		topK:         d.TopK,
		logger:       logging.OrNop(d.Logger),
	}
	r, err := a.newRetriever(d.Knowledge.Documents())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build retriever")
	}
	a.retriever = r
	return a, nil
}

// Reindex rebuilds the retriever for docs. On error the previous retriever
// stays in use.
func (a *Advisor) Reindex(docs []domain.Document) error {
	r, err := a.newRetriever(docs)
	if err != nil {
		return goerr.Wrap(err, "failed to rebuild retriever", goerr.V("documents", len(docs)))
	}
	a.mu.Lock()
	a.retriever = r
	a.mu.Unlock()
	a.logger.Debug("retriever rebuilt", zap.Int("documents", len(docs)))
	return nil
}

// Turn answers text given the conversation so far. It returns the turn
// record and the merged state; on error the input state is returned as is.
func (a *Advisor) Turn(ctx context.Context, state domain.DialogueState, text string) (domain.Turn, domain.DialogueState, error) {
	tokens := a.normalizer.Normalize(text)

	pred, err := a.classifier.Predict(text)
	if err != nil {
		return domain.Turn{}, state, goerr.Wrap(err, "intent classification failed")
	}
	ents := a.extractor.Extract(text)

	a.mu.RLock()
	retriever := a.retriever
	a.mu.RUnlock()
	evidence, err := retriever.Retrieve(ctx, text, a.knowledge.Documents(), a.topK)
	if err != nil {
		return domain.Turn{}, state, goerr.Wrap(err, "evidence retrieval failed")
	}

	next := dialogue.Merge(state, pred.Intent, ents)
	answer := response.Compose(response.Inputs{
		Intent:   pred.Intent,
		Entities: ents,
		Context:  dialogue.ContextString(next),
		Passages: response.Passages(evidence),
		Question: text,
	})

	a.logger.Debug("turn answered",
		zap.String("intent", pred.Intent),
		zap.Float64("confidence", pred.Confidence),
		zap.Int("tokens", len(tokens)),
		zap.Int("evidence", len(evidence)))

	return domain.Turn{
		Question:   text,
		Tokens:     tokens,
		Prediction: pred,
		Entities:   ents,
		State:      dialogue.Clone(next),
		Evidence:   evidence,
		Answer:     answer,
	}, next, nil
}
