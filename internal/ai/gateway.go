package ai

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spigell/talent-scout/internal/utils"
	"go.uber.org/zap"
)

const (
	StatusGenerating = "Generating content..."

	NoContentText          = "Error: No content generated"
	TransportFallbackText  = "Error generating content. Please check the API key and try again."
	UnexpectedFallbackText = "Error generating content. Please try again later."

	defaultMaxLogLength = 200
)

// Notifier receives transient status messages meant for display only.
type Notifier func(status string)

// Gateway turns a Generator into a call that never fails: every outcome,
// including backend errors and panics, becomes displayable text.
type Gateway struct {
	generator Generator
	logger    *zap.Logger
	notify    Notifier
	maxLogLen int
}

func NewGateway(generator Generator, logger *zap.Logger, maxLogLength int) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Gateway{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// OnStatus registers the receiver of the "generating" notification.
func (g *Gateway) OnStatus(n Notifier) {
	g.notify = n
}

// Generate sends the prompt to the backend once.
func (g *Gateway) Generate(ctx context.Context, prompt string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("generator panic: %v", r)
			g.logger.Error("generation failed", zap.Error(err))
			result = Result{Text: UnexpectedFallbackText, Err: &GenerationError{Kind: KindUnexpected, Err: err}}
		}
	}()

	if g.notify != nil {
		g.notify(StatusGenerating)
	}

	if g.generator == nil {
		err := errors.New("generator is not configured")
		return Result{Text: UnexpectedFallbackText, Err: &GenerationError{Kind: KindUnexpected, Err: err}}
	}

	g.logger.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	text, err := g.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrNoContent) {
			g.logger.Warn("generation returned no candidates")
			return Result{Text: NoContentText}
		}

		genErr := classify(err)
		g.logger.Warn("generation failed",
			zap.String("kind", string(genErr.Kind)),
			zap.Error(err),
		)

		if genErr.Kind == KindTransport {
			return Result{Text: TransportFallbackText, Err: genErr}
		}
		return Result{Text: UnexpectedFallbackText, Err: genErr}
	}

	g.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", utils.TruncateForLog(text, g.maxLogLen)),
	)

	return Result{Text: text}
}
