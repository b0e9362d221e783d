package intent_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"eduverse/internal/domain"
	"eduverse/internal/intent"
	"eduverse/internal/preprocess"
)

func trainSeed(t *testing.T, logger *zap.Logger) *intent.Classifier {
	t.Helper()
	normalizer, err := preprocess.New(preprocess.DefaultOptions())
	require.NoError(t, err)
	c, err := intent.Train(intent.SeedDataset(), normalizer, intent.DefaultOptions(), logger)
	require.NoError(t, err)
	return c
}

func TestPredict_SeedQueries(t *testing.T) {
	c := trainSeed(t, nil)
	cases := map[string]string{
		"What documents are required for MS admissions in the USA?":           domain.IntentAdmissions,
		"I need scholarship options and assistantships for MS in data science": domain.IntentScholarships,
		"Can you review my SOP draft?":                                         domain.IntentSOP,
		"IELTS practice resources":                                             domain.IntentTestPrep,
	}
	for text, want := range cases {
		pred, err := c.Predict(text)
		require.NoError(t, err)
		assert.Equal(t, want, pred.Intent, text)
	}
}

func TestPredict_ProbabilitiesFormDistribution(t *testing.T) {
	c := trainSeed(t, nil)
	pred, err := c.Predict("GRE and TOEFL plan for fall")
	require.NoError(t, err)

	require.Len(t, pred.Probabilities, len(domain.Intents))
	sum := 0.0
	for _, label := range domain.Intents {
		p, ok := pred.Probabilities[label]
		require.True(t, ok, label)
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Equal(t, pred.Probabilities[pred.Intent], pred.Confidence)
}

func TestPredict_Deterministic(t *testing.T) {
	a := trainSeed(t, nil)
	b := trainSeed(t, nil)
	pa, err := a.Predict("funding for international students")
	require.NoError(t, err)
	pb, err := b.Predict("funding for international students")
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestPredict_LowConfidenceIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := trainSeed(t, zap.New(core))

	// No known features: the prediction falls back to the class priors.
	pred, err := c.Predict("zzz qqq")
	require.NoError(t, err)
	assert.Less(t, pred.Confidence, 0.4)
	assert.Equal(t, 1, logs.FilterMessage("low confidence intent").Len())
}

func TestTrain_Errors(t *testing.T) {
	_, err := intent.Train(intent.Dataset{}, nil, intent.DefaultOptions(), nil)
	assert.True(t, errors.Is(err, intent.ErrEmptyDataset))

	_, err = intent.Train(intent.Dataset{Texts: []string{"a b"}, Labels: nil}, nil, intent.DefaultOptions(), nil)
	assert.True(t, errors.Is(err, intent.ErrLabelCount))

	opts := intent.DefaultOptions()
	opts.Iterations = 0
	_, err = intent.Train(intent.SeedDataset(), nil, opts, nil)
	assert.True(t, errors.Is(err, intent.ErrInvalidOptions))
}

func TestEvaluate_SeedDataset(t *testing.T) {
	c := trainSeed(t, nil)
	report, err := c.Evaluate(intent.SeedDataset())
	require.NoError(t, err)

	assert.Equal(t, 8, report.Total)
	assert.Equal(t, 1.0, report.Accuracy())
	assert.Equal(t, []string{"admissions", "scholarships", "sop", "test_prep"}, report.Labels)
	for i := range report.Labels {
		assert.Equal(t, 2, report.Confusion[i][i])
	}
	assert.Contains(t, report.String(), "accuracy: 1.00 (8/8)")
}

func TestEvaluate_UnknownLabelGetsRow(t *testing.T) {
	c := trainSeed(t, nil)
	report, err := c.Evaluate(intent.Dataset{Texts: []string{"visa interview"}, Labels: []string{"visa"}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Correct)
	assert.Contains(t, report.Labels, "visa")
}
