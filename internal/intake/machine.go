// Package intake collects a candidate profile one answer at a time and hands
// the technical-question and closing-summary prompts to a generation gateway.
package intake

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spigell/talent-scout/internal/ai"
	"go.uber.org/zap"
)

// ErrSessionEnded is returned by Handle once the closing summary was produced.
var ErrSessionEnded = errors.New("session has ended")

// Generator is the part of ai.Gateway the machine needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) ai.Result
}

// Turn is the outcome of one utterance.
type Turn struct {
	Reply string
	// Stage is the stage after the utterance was handled.
	Stage Stage
	Ended bool
	// Invalid is set when the answer was rejected and the question repeated.
	Invalid bool
	// Err is set when Reply is a generation fallback text.
	Err error
}

// Machine is the intake state machine. It is not safe for concurrent use.
type Machine struct {
	generator Generator
	profile   *Profile
	stage     Stage
	logger    *zap.Logger
}

func NewMachine(generator Generator, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Machine{
		generator: generator,
		profile:   NewProfile(),
		stage:     AwaitName,
		logger:    logger,
	}
}

func (m *Machine) Stage() Stage {
	return m.stage
}

func (m *Machine) Profile() *Profile {
	return m.profile
}

// Prompt returns the fixed question for the current stage.
func (m *Machine) Prompt() string {
	return stagePrompts[m.stage]
}

// Greeting asks the generator for an opening message.
func (m *Machine) Greeting(ctx context.Context) ai.Result {
	return m.generator.Generate(ctx, buildGreetingPrompt())
}

// Handle applies one utterance. "exit" ends the session from any stage.
func (m *Machine) Handle(ctx context.Context, utterance string) (Turn, error) {
	if m.stage == Ended {
		return Turn{Stage: Ended, Ended: true}, ErrSessionEnded
	}

	from := m.stage

	var turn Turn
	switch {
	case strings.EqualFold(utterance, exitCommand):
		turn = m.close(ctx)
	case m.stage == AwaitName:
		turn = m.takeName(utterance)
	case m.stage == AwaitEmail:
		turn = m.takeEmail(utterance)
	case m.stage == AwaitPhone:
		turn = m.takePhone(utterance)
	case m.stage == AwaitYears:
		turn = m.takeYears(utterance)
	case m.stage == AwaitPositions:
		turn = m.takePositions(utterance)
	case m.stage == AwaitLocation:
		turn = m.takeLocation(utterance)
	case m.stage == AwaitTechStack:
		turn = m.takeTechStack(ctx, utterance)
	case m.stage == CollectingAnswers:
		turn = m.takeAnswer(ctx, utterance)
	}

	m.logger.Debug("handled utterance",
		zap.Stringer("from", from),
		zap.Stringer("to", turn.Stage),
		zap.Bool("invalid", turn.Invalid),
	)

	return turn, nil
}

func (m *Machine) takeName(utterance string) Turn {
	m.profile.Name = utterance
	return m.advance(AwaitEmail)
}

func (m *Machine) takeEmail(utterance string) Turn {
	m.profile.Email = utterance
	return m.advance(AwaitPhone)
}

func (m *Machine) takePhone(utterance string) Turn {
	m.profile.Phone = utterance
	return m.advance(AwaitYears)
}

func (m *Machine) takeYears(utterance string) Turn {
	years, err := strconv.Atoi(strings.TrimSpace(utterance))
	if err != nil || years < 0 {
		return Turn{Reply: InvalidYearsMessage, Stage: m.stage, Invalid: true}
	}

	m.profile.YearsExperience = years
	return m.advance(AwaitPositions)
}

func (m *Machine) takePositions(utterance string) Turn {
	m.profile.DesiredPositions = splitList(utterance)
	return m.advance(AwaitLocation)
}

func (m *Machine) takeLocation(utterance string) Turn {
	m.profile.Location = utterance
	return m.advance(AwaitTechStack)
}

func (m *Machine) takeTechStack(ctx context.Context, utterance string) Turn {
	m.profile.TechStack = splitList(utterance)

	res := m.generator.Generate(ctx, buildQuestionsPrompt(m.profile))
	m.profile.TechnicalResponses.Set(questionsKey, res.Text)
	m.stage = CollectingAnswers

	return Turn{Reply: questionsReply(res.Text), Stage: m.stage, Err: res.Err}
}

func (m *Machine) takeAnswer(ctx context.Context, utterance string) Turn {
	if strings.EqualFold(utterance, doneCommand) {
		return m.close(ctx)
	}

	// The count includes the "questions" entry, so the first answer is q1.
	m.profile.TechnicalResponses.Set(answerKey(m.profile.TechnicalResponses.Len()), utterance)
	return Turn{Reply: AnswerAck, Stage: m.stage}
}

func (m *Machine) close(ctx context.Context) Turn {
	res := m.generator.Generate(ctx, buildClosingPrompt(m.profile))
	m.stage = Ended

	return Turn{Reply: res.Text, Stage: Ended, Ended: true, Err: res.Err}
}

func (m *Machine) advance(next Stage) Turn {
	m.stage = next
	return Turn{Reply: stagePrompts[next], Stage: next}
}
