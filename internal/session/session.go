// Package session drives one intake conversation: it feeds utterances to the
// state machine and keeps the transcript.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spigell/talent-scout/internal/intake"
	"github.com/spigell/talent-scout/internal/logger"
	"go.uber.org/zap"
)

type machine interface {
	Handle(ctx context.Context, utterance string) (intake.Turn, error)
	Stage() intake.Stage
	Profile() *intake.Profile
}

type Session struct {
	ID string

	machine    machine
	transcript *Transcript
	logger     *zap.Logger
	ended      bool
}

func New(m machine, log *zap.Logger) *Session {
	id := uuid.NewString()

	return &Session{
		ID:         id,
		machine:    m,
		transcript: &Transcript{},
		logger:     logger.WithSession(log, id),
	}
}

func (s *Session) Transcript() *Transcript {
	return s.transcript
}

func (s *Session) Ended() bool {
	return s.ended
}

// Submit handles one utterance and appends the candidate echo and the reply to
// the transcript. Once the session has ended it does nothing and returns
// intake.ErrSessionEnded.
func (s *Session) Submit(ctx context.Context, utterance string) (intake.Turn, error) {
	if s.ended {
		return intake.Turn{Stage: intake.Ended, Ended: true}, intake.ErrSessionEnded
	}

	from := s.machine.Stage()

	turn, err := s.machine.Handle(ctx, utterance)
	if err != nil {
		s.ended = true
		return turn, err
	}

	echo := utterance
	if from == intake.AwaitYears && turn.Stage == intake.AwaitPositions {
		echo = fmt.Sprintf("%s years", utterance)
	}

	s.transcript.Append(RoleCandidate, echo)
	s.transcript.Append(RoleAssistant, turn.Reply)

	if turn.Err != nil {
		s.logger.Warn("reply is a generation fallback", zap.Stringer("stage", from), zap.Error(turn.Err))
	}

	if turn.Ended {
		s.ended = true
		s.logEnd()
	}

	return turn, nil
}

func (s *Session) logEnd() {
	s.logger.Info("session ended", zap.Int("transcript_entries", s.transcript.Len()))

	fields, err := s.machine.Profile().Fields()
	if err != nil {
		s.logger.Warn("flattening profile", zap.Error(err))
		return
	}
	s.logger.Debug("collected profile", zap.Any("profile", fields))
}
