package ai

import (
	"context"
)

// Generator is a text-generation backend. Implementations return the first
// textual part of the first candidate.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Result is what callers of the Gateway receive. Text is always populated;
// Err is set only when Text is a fallback message describing a failure.
type Result struct {
	Text string
	Err  error
}

// Failed reports whether the result carries a fallback text.
func (r Result) Failed() bool {
	return r.Err != nil
}
