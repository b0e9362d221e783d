package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduverse/internal/service"
)

func TestSession_CarriesContextAcrossTurns(t *testing.T) {
	s := service.NewSession(newAdvisor(t))
	_, err := uuid.Parse(s.ID())
	require.NoError(t, err)

	first, err := s.Ask(context.Background(), "I am applying to USC with GPA 3.7")
	require.NoError(t, err)
	assert.Equal(t, []string{"usc"}, first.Entities.Universities)
	assert.Equal(t, map[string]string{"gpa": "3.7"}, first.Entities.Scores)

	second, err := s.Ask(context.Background(), "What GRE score do I need?")
	require.NoError(t, err)
	assert.Equal(t, []string{"GRE"}, second.Entities.Tests)
	assert.Empty(t, second.Entities.Universities)

	state := s.State()
	assert.Equal(t, []string{"usc"}, state.Universities)
	assert.Equal(t, map[string]string{"gpa": "3.7"}, state.Scores)
	assert.Equal(t, []string{"GRE"}, state.Tests)
	assert.Equal(t, second.Prediction.Intent, state.LastIntent)
	assert.Equal(t, 2, s.Turns())
	assert.Contains(t, second.Answer, "universities=[usc]")
}

func TestSession_Reset(t *testing.T) {
	s := service.NewSession(newAdvisor(t))
	_, err := s.Ask(context.Background(), "Stanford deadlines for Fall 2026")
	require.NoError(t, err)

	s.Reset()
	assert.True(t, s.State().IsEmpty())
	assert.Equal(t, 0, s.Turns())
}

func TestSession_StateIsACopy(t *testing.T) {
	s := service.NewSession(newAdvisor(t))
	_, err := s.Ask(context.Background(), "MIT or Yale?")
	require.NoError(t, err)

	st := s.State()
	st.Universities[0] = "changed"
	assert.NotEqual(t, "changed", s.State().Universities[0])
}
