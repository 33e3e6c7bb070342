package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/talent-scout/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	replies []ai.Result
	prompts []string
}

func (r *recordingGenerator) Generate(_ context.Context, prompt string) ai.Result {
	r.prompts = append(r.prompts, prompt)
	if len(r.replies) == 0 {
		return ai.Result{Text: "generated"}
	}
	res := r.replies[0]
	r.replies = r.replies[1:]
	return res
}

func feed(t *testing.T, m *Machine, utterances ...string) []Turn {
	t.Helper()

	turns := make([]Turn, 0, len(utterances))
	for _, u := range utterances {
		turn, err := m.Handle(context.Background(), u)
		require.NoError(t, err)
		turns = append(turns, turn)
	}
	return turns
}

func TestMachineCollectsFieldsInOrder(t *testing.T) {
	gen := &recordingGenerator{}
	m := NewMachine(gen, nil)

	require.Equal(t, AwaitName, m.Stage())
	require.Equal(t, NamePrompt, m.Prompt())

	steps := []struct {
		input string
		reply string
		stage Stage
	}{
		{"Ann", EmailPrompt, AwaitEmail},
		{"ann@x.com", PhonePrompt, AwaitPhone},
		{"555-0100", YearsPrompt, AwaitYears},
		{"3", PositionsPrompt, AwaitPositions},
		{"Backend Engineer", LocationPrompt, AwaitLocation},
		{"Berlin", TechStackPrompt, AwaitTechStack},
	}

	for _, step := range steps {
		turn, err := m.Handle(context.Background(), step.input)
		require.NoError(t, err)
		assert.Equal(t, step.reply, turn.Reply, "reply after %q", step.input)
		assert.Equal(t, step.stage, turn.Stage)
		assert.Equal(t, step.stage, m.Stage())
		assert.Equal(t, step.reply, m.Prompt())
		assert.False(t, turn.Ended)
	}

	p := m.Profile()
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, "ann@x.com", p.Email)
	assert.Equal(t, "555-0100", p.Phone)
	assert.Equal(t, 3, p.YearsExperience)
	assert.Equal(t, []string{"Backend Engineer"}, p.DesiredPositions)
	assert.Equal(t, "Berlin", p.Location)
	assert.Empty(t, p.TechStack)
	assert.Empty(t, gen.prompts)
}

func TestMachineRejectsInvalidYears(t *testing.T) {
	m := NewMachine(&recordingGenerator{}, nil)
	feed(t, m, "Ann", "ann@x.com", "555-0100")

	for _, input := range []string{"three", "", "3.5", "-2"} {
		turn, err := m.Handle(context.Background(), input)
		require.NoError(t, err)
		assert.True(t, turn.Invalid, "input %q", input)
		assert.Equal(t, InvalidYearsMessage, turn.Reply)
		assert.Equal(t, AwaitYears, m.Stage())
	}

	p := m.Profile()
	assert.Equal(t, 0, p.YearsExperience)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, "ann@x.com", p.Email)
	assert.Equal(t, "555-0100", p.Phone)

	turn, err := m.Handle(context.Background(), " 7 ")
	require.NoError(t, err)
	assert.False(t, turn.Invalid)
	assert.Equal(t, 7, m.Profile().YearsExperience)
	assert.Equal(t, AwaitPositions, m.Stage())
}

func TestMachineAcceptsZeroYearsAndEmptyAnswers(t *testing.T) {
	m := NewMachine(&recordingGenerator{}, nil)
	feed(t, m, "", "", "", "0", "", "")

	assert.Equal(t, AwaitTechStack, m.Stage())
	assert.Equal(t, 0, m.Profile().YearsExperience)
	assert.Equal(t, []string{""}, m.Profile().DesiredPositions)
}

func TestMachineSplitsListsWithoutTrimming(t *testing.T) {
	m := NewMachine(&recordingGenerator{}, nil)
	feed(t, m, "Ann", "a@x", "1", "2", "Backend, Data,", "Berlin", "Go, SQL")

	assert.Equal(t, []string{"Backend", " Data", ""}, m.Profile().DesiredPositions)
	assert.Equal(t, []string{"Go", " SQL"}, m.Profile().TechStack)
}

func TestMachineGeneratesTechnicalQuestions(t *testing.T) {
	gen := &recordingGenerator{replies: []ai.Result{{Text: "1. What is a channel?"}}}
	m := NewMachine(gen, nil)

	turns := feed(t, m, "Ann", "ann@x.com", "555-0100", "4", "Backend Engineer", "Berlin", "Go, Kubernetes")
	last := turns[len(turns)-1]

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Go,  Kubernetes")
	assert.Contains(t, gen.prompts[0], "(4 years)")
	assert.Contains(t, gen.prompts[0], "3-5 technical questions")

	assert.Equal(t, "Here are your technical questions:\n1. What is a channel?\n\nPlease answer these questions when you're ready.", last.Reply)
	assert.Equal(t, CollectingAnswers, last.Stage)
	assert.NoError(t, last.Err)

	stored, ok := m.Profile().TechnicalResponses.Get("questions")
	require.True(t, ok)
	assert.Equal(t, "1. What is a channel?", stored)
}

func TestMachineStoresAnswersWithoutGenerating(t *testing.T) {
	gen := &recordingGenerator{}
	m := NewMachine(gen, nil)
	feed(t, m, "Ann", "ann@x.com", "555-0100", "3", "Backend Engineer", "Berlin", "Go")
	require.Len(t, gen.prompts, 1)

	turns := feed(t, m, "Goroutines are green threads", "Done soon")
	for _, turn := range turns {
		assert.Equal(t, AnswerAck, turn.Reply)
		assert.Equal(t, CollectingAnswers, turn.Stage)
	}

	responses := m.Profile().TechnicalResponses
	assert.Equal(t, []string{"questions", "q1", "q2"}, responses.Keys())

	first, _ := responses.Get("q1")
	assert.Equal(t, "Goroutines are green threads", first)
	assert.Len(t, gen.prompts, 1)
}

func TestMachineDoneTriggersClosing(t *testing.T) {
	gen := &recordingGenerator{replies: []ai.Result{{Text: "questions"}, {Text: "Thanks, Ann!"}}}
	m := NewMachine(gen, nil)
	feed(t, m, "Ann", "ann@x.com", "555-0100", "3", "Backend Engineer", "Berlin", "Go, SQL", "an answer")

	turn, err := m.Handle(context.Background(), "DONE")
	require.NoError(t, err)

	assert.True(t, turn.Ended)
	assert.Equal(t, Ended, m.Stage())
	assert.Equal(t, "Thanks, Ann!", turn.Reply)

	require.Len(t, gen.prompts, 2)
	closing := gen.prompts[1]
	assert.Contains(t, closing, "Name: Ann")
	assert.Contains(t, closing, "Position: Backend Engineer")
	assert.Contains(t, closing, "Experience: 3 years")
	assert.Contains(t, closing, "Tech Stack: Go,  SQL")
}

func TestMachineDoneIsAnAnswerBeforeQuestions(t *testing.T) {
	m := NewMachine(&recordingGenerator{}, nil)

	turn, err := m.Handle(context.Background(), "done")
	require.NoError(t, err)
	assert.Equal(t, "done", m.Profile().Name)
	assert.Equal(t, AwaitEmail, turn.Stage)
}

func TestMachineExitFromAnyStage(t *testing.T) {
	prefixes := [][]string{
		{},
		{"Ann"},
		{"Ann", "ann@x.com", "555-0100"},
		{"Ann", "ann@x.com", "555-0100", "3", "Backend Engineer", "Berlin"},
		{"Ann", "ann@x.com", "555-0100", "3", "Backend Engineer", "Berlin", "Go"},
	}

	for _, prefix := range prefixes {
		gen := &recordingGenerator{}
		m := NewMachine(gen, nil)
		feed(t, m, prefix...)

		callsBefore := len(gen.prompts)
		before := *m.Profile()
		keysBefore := m.Profile().TechnicalResponses.Keys()

		turn, err := m.Handle(context.Background(), "Exit")
		require.NoError(t, err)

		assert.True(t, turn.Ended)
		assert.Equal(t, Ended, m.Stage())
		assert.Len(t, gen.prompts, callsBefore+1)
		assert.Contains(t, gen.prompts[len(gen.prompts)-1], "professional closing message")

		after := m.Profile()
		assert.Equal(t, before.Name, after.Name)
		assert.Equal(t, before.Email, after.Email)
		assert.Equal(t, before.Phone, after.Phone)
		assert.Equal(t, before.YearsExperience, after.YearsExperience)
		assert.Equal(t, before.DesiredPositions, after.DesiredPositions)
		assert.Equal(t, before.Location, after.Location)
		assert.Equal(t, before.TechStack, after.TechStack)
		assert.Equal(t, keysBefore, after.TechnicalResponses.Keys())
	}
}

func TestMachineEndedIsNoop(t *testing.T) {
	gen := &recordingGenerator{}
	m := NewMachine(gen, nil)
	feed(t, m, "exit")

	turn, err := m.Handle(context.Background(), "Ann")
	assert.True(t, errors.Is(err, ErrSessionEnded))
	assert.True(t, turn.Ended)
	assert.Empty(t, turn.Reply)
	assert.Empty(t, m.Profile().Name)
	assert.Len(t, gen.prompts, 1)
}

func TestMachinePropagatesGenerationFailure(t *testing.T) {
	genErr := &ai.GenerationError{Kind: ai.KindTransport, Err: errors.New("bad status")}
	gen := &recordingGenerator{replies: []ai.Result{{Text: ai.TransportFallbackText, Err: genErr}}}
	m := NewMachine(gen, nil)

	turns := feed(t, m, "Ann", "ann@x.com", "555-0100", "3", "Backend Engineer", "Berlin", "Go")
	last := turns[len(turns)-1]

	assert.ErrorIs(t, last.Err, genErr)
	assert.Contains(t, last.Reply, ai.TransportFallbackText)
	assert.Equal(t, CollectingAnswers, m.Stage())
}

func TestMachineGreeting(t *testing.T) {
	gen := &recordingGenerator{replies: []ai.Result{{Text: "Welcome!"}}}
	m := NewMachine(gen, nil)

	res := m.Greeting(context.Background())
	assert.Equal(t, "Welcome!", res.Text)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "TalentScout Hiring Assistant")
	assert.Equal(t, AwaitName, m.Stage())
}

func TestPromptRenderingIsSinglePass(t *testing.T) {
	p := NewProfile()
	p.Name = "{{YEARS}}"
	p.YearsExperience = 5

	prompt := buildClosingPrompt(p)
	assert.Contains(t, prompt, "Name: {{YEARS}}")
	assert.Contains(t, prompt, "Experience: 5 years")
}
