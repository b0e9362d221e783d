package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduverse/internal/domain"
	"eduverse/internal/embedding"
	"eduverse/internal/embedding/hash"
	"eduverse/internal/intent"
	"eduverse/internal/knowledge"
	"eduverse/internal/ner"
	"eduverse/internal/preprocess"
	"eduverse/internal/response"
	"eduverse/internal/service"
	"eduverse/internal/vectorstore/memory"
)

func hashRetriever(docs []domain.Document) (domain.Retriever, error) {
	return memory.NewStorage(embedding.Func(hash.NewEmbedder(0))), nil
}

func newDeps(t *testing.T) service.Deps {
	t.Helper()
	normalizer, err := preprocess.New(preprocess.DefaultOptions())
	require.NoError(t, err)
	classifier, err := intent.Train(intent.SeedDataset(), normalizer, intent.DefaultOptions(), nil)
	require.NoError(t, err)
	return service.Deps{
		Normalizer:   normalizer,
		Classifier:   classifier,
		Extractor:    ner.MustNew(ner.DefaultRules()),
		Knowledge:    knowledge.NewSource(knowledge.BuiltIn(), nil),
		NewRetriever: hashRetriever,
		TopK:         3,
	}
}

func newAdvisor(t *testing.T) *service.Advisor {
	t.Helper()
	a, err := service.NewAdvisor(newDeps(t))
	require.NoError(t, err)
	return a
}

func TestTurn_AdmissionsQuestion(t *testing.T) {
	a := newAdvisor(t)
	turn, state, err := a.Turn(context.Background(), domain.DialogueState{},
		"What documents are required for MS admissions in the USA?")
	require.NoError(t, err)

	assert.Equal(t, domain.IntentAdmissions, turn.Prediction.Intent)
	assert.Contains(t, turn.Entities.Programs, "ms admissions")
	assert.Equal(t, domain.IntentAdmissions, state.LastIntent)
	assert.Len(t, turn.Evidence, 3)
	assert.Contains(t, turn.Answer, "**Intent detected:** admissions")
	assert.Contains(t, turn.Answer, "**Context:** intent=admissions")
	assert.Contains(t, turn.Answer, response.Disclaimer)
	assert.Contains(t, turn.Tokens, "admissions")
}

func TestTurn_ProfileEntities(t *testing.T) {
	a := newAdvisor(t)
	turn, state, err := a.Turn(context.Background(), domain.DialogueState{},
		"I want MS in Computer Science at USC in CA for Fall 2026. GPA: 3.7 TOEFL 102.")
	require.NoError(t, err)

	assert.Contains(t, turn.Entities.Universities, "usc")
	assert.Contains(t, turn.Entities.Locations, "CA")
	assert.Contains(t, turn.Entities.Tests, "TOEFL")
	assert.Contains(t, turn.Entities.Deadlines, "fall 2026")
	assert.Equal(t, map[string]string{"gpa": "3.7", "toefl": "102"}, turn.Entities.Scores)
	assert.Equal(t, turn.Entities.Scores, state.Scores)
}

func TestTurn_InputStateUntouched(t *testing.T) {
	a := newAdvisor(t)
	in := domain.DialogueState{LastIntent: domain.IntentSOP, Universities: []string{"mit"}}
	_, out, err := a.Turn(context.Background(), in, "Any scholarships at Stanford?")
	require.NoError(t, err)

	assert.Equal(t, []string{"mit"}, in.Universities)
	assert.Equal(t, domain.IntentSOP, in.LastIntent)
	assert.Equal(t, []string{"mit", "stanford"}, out.Universities)
}

type failingClassifier struct{ err error }

func (f failingClassifier) Predict(string) (domain.IntentPrediction, error) {
	return domain.IntentPrediction{}, f.err
}

func TestTurn_ClassifierErrorKeepsState(t *testing.T) {
	boom := errors.New("boom")
	deps := newDeps(t)
	deps.Classifier = failingClassifier{err: boom}
	a, err := service.NewAdvisor(deps)
	require.NoError(t, err)

	in := domain.DialogueState{LastIntent: domain.IntentSOP}
	_, out, err := a.Turn(context.Background(), in, "GRE at USC")
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, in, out)
}

func TestTurn_EmptyKnowledgeBase(t *testing.T) {
	deps := newDeps(t)
	deps.Knowledge = knowledge.NewSource(nil, nil)
	a, err := service.NewAdvisor(deps)
	require.NoError(t, err)

	turn, _, err := a.Turn(context.Background(), domain.DialogueState{}, "")
	require.NoError(t, err)
	assert.Empty(t, turn.Evidence)
	assert.NotContains(t, turn.Answer, "**Relevant Information:**")
}

func TestReindex_KeepsRetrieverOnError(t *testing.T) {
	deps := newDeps(t)
	calls := 0
	deps.NewRetriever = func(docs []domain.Document) (domain.Retriever, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("refit failed")
		}
		return hashRetriever(docs)
	}
	a, err := service.NewAdvisor(deps)
	require.NoError(t, err)

	assert.Error(t, a.Reindex(knowledge.BuiltIn()))
	turn, _, err := a.Turn(context.Background(), domain.DialogueState{}, "TOEFL requirements")
	require.NoError(t, err)
	assert.NotEmpty(t, turn.Evidence)
}

func TestNewAdvisor_MissingComponent(t *testing.T) {
	deps := newDeps(t)
	deps.Extractor = nil
	_, err := service.NewAdvisor(deps)
	assert.Error(t, err)
}
