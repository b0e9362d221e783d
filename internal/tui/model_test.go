package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduverse/internal/domain"
)

type fakeAdvisor struct {
	asked  []string
	resets int
	err    error
}

func (f *fakeAdvisor) Ask(_ context.Context, text string) (domain.Turn, error) {
	f.asked = append(f.asked, text)
	if f.err != nil {
		return domain.Turn{}, f.err
	}
	return domain.Turn{
		Question:   text,
		Tokens:     []string{"toefl"},
		Prediction: domain.IntentPrediction{Intent: domain.IntentTestPrep, Confidence: 0.8},
		State:      domain.DialogueState{LastIntent: domain.IntentTestPrep, Tests: []string{"TOEFL"}},
		Evidence: []domain.ScoredDocument{{Document: domain.Document{
			ID: "toefl", Text: "TOEFL iBT scores range 0-120. Most universities require 80-100.",
		}}},
		Answer: "**Intent detected:** test_prep\n• TOEFL iBT scores range 0-120. Most universities require 80-100.",
	}, nil
}

func (f *fakeAdvisor) Reset() { f.resets++ }

func sized(t *testing.T, adv AdvisorPort) Model {
	t.Helper()
	next, _ := New(context.Background(), adv, "digest").Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	next, _ = next.(Model).Update(cmd())
	return next.(Model)
}

func TestModel_AskAppendsExchange(t *testing.T) {
	adv := &fakeAdvisor{}
	m := submit(t, sized(t, adv), "  TOEFL cutoff?  ")

	assert.Equal(t, []string{"TOEFL cutoff?"}, adv.asked)
	require.Len(t, m.history, 1)
	assert.Contains(t, m.status, "intent=test_prep")
	assert.Contains(t, m.status, "tests=[TOEFL]")
	assert.Contains(t, m.renderTranscript(), "You: TOEFL cutoff?")
	assert.Contains(t, m.View(), "EduVerse Advisor")
	assert.Empty(t, m.input.Value())
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	adv := &fakeAdvisor{}
	m := sized(t, adv)
	m.input.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, adv.asked)
}

func TestModel_ErrorShownInStatus(t *testing.T) {
	adv := &fakeAdvisor{err: errors.New("embedder down")}
	m := submit(t, sized(t, adv), "hello")
	assert.Equal(t, "Error: embedder down", m.status)
	assert.Contains(t, m.renderTranscript(), "embedder down")
}

func TestModel_ResetClearsHistory(t *testing.T) {
	adv := &fakeAdvisor{}
	m := submit(t, sized(t, adv), "TOEFL?")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	assert.Equal(t, 1, adv.resets)
	assert.Empty(t, m.history)
	assert.Equal(t, "No questions yet.", m.renderTranscript())
}

func TestHighlightBestSentence(t *testing.T) {
	text := "TOEFL iBT scores range 0-120. Most universities require 80-100."
	got := highlightBestSentence(text, []string{"universities", "require"})
	assert.Contains(t, got, "TOEFL iBT scores range 0-120.")
	assert.Contains(t, got, highlightStyle.Render("Most universities require 80-100."))

	assert.Equal(t, text, highlightBestSentence(text, []string{"visa"}))
}
