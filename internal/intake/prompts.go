package intake

import (
	"strconv"
	"strings"

	_ "embed"

	"github.com/spigell/talent-scout/internal/utils"
)

const (
	NamePrompt      = "Hi! I'm the TalentScout hiring assistant. What's your full name?"
	EmailPrompt     = "What's your email address?"
	PhonePrompt     = "What's your phone number?"
	YearsPrompt     = "How many years of experience do you have?"
	PositionsPrompt = "What positions are you interested in? (e.g., Software Engineer, Data Scientist)"
	LocationPrompt  = "Where are you currently located?"
	TechStackPrompt = "Please list your tech stack (programming languages, frameworks, tools):"

	InvalidYearsMessage = "Please enter a valid number for years of experience."
	AnswerAck           = "Thank you! Please continue with the next question or type 'done' if finished."

	questionsIntro   = "Here are your technical questions:"
	questionsOutro   = "Please answer these questions when you're ready."
	exitCommand      = "exit"
	doneCommand      = "done"
	answerKeyPrefix  = "q"
	placeholderOpen  = "{{"
	placeholderClose = "}}"
)

var stagePrompts = map[Stage]string{
	AwaitName:         NamePrompt,
	AwaitEmail:        EmailPrompt,
	AwaitPhone:        PhonePrompt,
	AwaitYears:        YearsPrompt,
	AwaitPositions:    PositionsPrompt,
	AwaitLocation:     LocationPrompt,
	AwaitTechStack:    TechStackPrompt,
	CollectingAnswers: AnswerAck,
}

//go:embed prompts/questions.md
var questionsTemplate string

//go:embed prompts/closing.md
var closingTemplate string

//go:embed prompts/greeting.md
var greetingTemplate string

func buildQuestionsPrompt(p *Profile) string {
	return render(questionsTemplate, map[string]string{
		"TECH_STACK": utils.JoinTokens(p.TechStack),
		"YEARS":      strconv.Itoa(p.YearsExperience),
	})
}

func buildClosingPrompt(p *Profile) string {
	return render(closingTemplate, map[string]string{
		"NAME":       p.Name,
		"POSITIONS":  utils.JoinTokens(p.DesiredPositions),
		"YEARS":      strconv.Itoa(p.YearsExperience),
		"TECH_STACK": utils.JoinTokens(p.TechStack),
	})
}

func buildGreetingPrompt() string {
	return strings.TrimSpace(greetingTemplate)
}

func questionsReply(questions string) string {
	return questionsIntro + "\n" + questions + "\n\n" + questionsOutro
}

func answerKey(n int) string {
	return answerKeyPrefix + strconv.Itoa(n)
}

// render substitutes {{KEY}} placeholders in a single pass, so candidate
// answers that contain placeholder text are left alone.
func render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, placeholderOpen+key+placeholderClose, value)
	}
	return strings.NewReplacer(pairs...).Replace(strings.TrimSpace(template))
}
