package response

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"eduverse/internal/domain"
)

func TestCompose_FullLayout(t *testing.T) {
	got := Compose(Inputs{
		Intent:   domain.IntentSOP,
		Context:  "intent=sop | universities=[usc]",
		Passages: []string{"A strong SOP covers motivation."},
		Question: "How should I structure my SOP?",
	})
	want := strings.Join([]string{
		"**Intent detected:** sop",
		"**Context:** intent=sop | universities=[usc]",
		"",
		"**Relevant Information:**",
		"• A strong SOP covers motivation.",
		"",
		"**Guidance:**",
		"• If you paste your SOP draft, I can suggest structure improvements and stronger evidence of fit.",
		"",
		"**Note:**",
		"• For official deadlines and fee amounts, always verify on the university/program website.",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestCompose_UnknownIntentFallsBack(t *testing.T) {
	got := Compose(Inputs{Intent: "unknown_intent"})
	assert.Contains(t, got, "**Intent detected:** unknown_intent")
	assert.Contains(t, got, FallbackGuidance)
	assert.Contains(t, got, Disclaimer)
}

func TestCompose_OmitsEmptySections(t *testing.T) {
	got := Compose(Inputs{Intent: domain.IntentAdmissions})
	assert.NotContains(t, got, "**Context:**")
	assert.NotContains(t, got, "**Relevant Information:**")
	assert.Contains(t, got, "intake term")
}

func TestCompose_AtMostThreePassages(t *testing.T) {
	got := Compose(Inputs{
		Intent:   domain.IntentTestPrep,
		Passages: []string{"p1", "p2", "p3", "p4"},
	})
	assert.Contains(t, got, "• p1\n• p2\n• p3")
	assert.NotContains(t, got, "p4")
	// three passages, one guidance, one note
	assert.Equal(t, 5, strings.Count(got, bullet))
}

func TestCompose_Pure(t *testing.T) {
	in := Inputs{Intent: domain.IntentScholarships, Context: "c", Passages: []string{"x", "y"}}
	assert.Equal(t, Compose(in), Compose(in))
}

func TestGuidance(t *testing.T) {
	for _, i := range domain.Intents {
		g, ok := Guidance(i)
		assert.True(t, ok, i)
		assert.NotEmpty(t, g)
	}
	g, ok := Guidance("visa")
	assert.False(t, ok)
	assert.Equal(t, FallbackGuidance, g)
	assert.Len(t, Guardrails, 4)
}

func TestPassages(t *testing.T) {
	ev := []domain.ScoredDocument{
		{Document: domain.Document{ID: "b", Text: "second"}, Score: 0.9},
		{Document: domain.Document{ID: "a", Text: "first"}, Score: 0.1},
	}
	assert.Equal(t, []string{"second", "first"}, Passages(ev))
}
