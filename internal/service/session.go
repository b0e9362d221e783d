package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eduverse/internal/dialogue"
	"eduverse/internal/domain"
)

// Session is one conversation. Turns are serialized so the dialogue state
// has a single writer.
type Session struct {
	id      string
	advisor *Advisor
	logger  *zap.Logger

	mu    sync.Mutex
	state domain.DialogueState
	turns int
}

// NewSession starts a conversation with an empty state.
func NewSession(advisor *Advisor) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		advisor: advisor,
		logger:  advisor.logger.With(zap.String("session", id)),
		state:   dialogue.New(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Ask runs one turn and keeps the merged state.
func (s *Session) Ask(ctx context.Context, text string) (domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn, next, err := s.advisor.Turn(ctx, s.state, text)
	if err != nil {
		s.logger.Warn("turn failed", zap.Error(err))
		return domain.Turn{}, err
	}
	s.state = next
	s.turns++
	s.logger.Info("turn completed",
		zap.Int("turn", s.turns),
		zap.String("intent", turn.Prediction.Intent))
	return turn, nil
}

// State returns a copy of the current dialogue state.
func (s *Session) State() domain.DialogueState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dialogue.Clone(s.state)
}

// Turns returns the number of completed turns.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// Reset forgets the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = dialogue.New()
	s.turns = 0
	s.logger.Info("session reset")
}
