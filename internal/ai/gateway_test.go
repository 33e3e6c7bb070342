package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response string
	err      error
	panics   bool
	prompts  []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.panics {
		panic("boom")
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestGatewayReturnsGeneratedText(t *testing.T) {
	stub := &stubGenerator{response: "1. What is a goroutine?"}
	gw := NewGateway(stub, zap.NewNop(), 0)

	var statuses []string
	gw.OnStatus(func(s string) { statuses = append(statuses, s) })

	res := gw.Generate(context.Background(), "questions please")
	if res.Failed() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Text != "1. What is a goroutine?" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if len(stub.prompts) != 1 || stub.prompts[0] != "questions please" {
		t.Fatalf("unexpected prompts: %+v", stub.prompts)
	}
	if len(statuses) != 1 || statuses[0] != StatusGenerating {
		t.Fatalf("expected a single generating status, got %+v", statuses)
	}
}

func TestGatewayNoContentSentinel(t *testing.T) {
	stub := &stubGenerator{err: ErrNoContent}
	gw := NewGateway(stub, zap.NewNop(), 0)

	res := gw.Generate(context.Background(), "prompt")
	if res.Text != NoContentText {
		t.Fatalf("expected sentinel text, got %q", res.Text)
	}
	if res.Err != nil {
		t.Fatalf("expected no error for empty candidates, got %v", res.Err)
	}
}

func TestGatewayFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		text string
		kind Kind
	}{
		{
			name: "transport",
			err:  &TransportError{Op: "post", StatusCode: http.StatusUnauthorized, Err: errors.New("bad status: 401 Unauthorized")},
			text: TransportFallbackText,
			kind: KindTransport,
		},
		{
			name: "wrapped transport",
			err:  errors.Join(errors.New("context"), &TransportError{Op: "decode", Err: errors.New("invalid character")}),
			text: TransportFallbackText,
			kind: KindTransport,
		},
		{
			name: "unexpected",
			err:  errors.New("first candidate has no parts"),
			text: UnexpectedFallbackText,
			kind: KindUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := NewGateway(&stubGenerator{err: tt.err}, zap.NewNop(), 0)

			res := gw.Generate(context.Background(), "prompt")
			if res.Text != tt.text {
				t.Fatalf("expected %q, got %q", tt.text, res.Text)
			}

			var genErr *GenerationError
			if !errors.As(res.Err, &genErr) {
				t.Fatalf("expected GenerationError, got %v", res.Err)
			}
			if genErr.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, genErr.Kind)
			}
			if !errors.Is(res.Err, tt.err) {
				t.Fatalf("expected original error to be wrapped")
			}
		})
	}
}

func TestGatewayRecoversFromPanic(t *testing.T) {
	gw := NewGateway(&stubGenerator{panics: true}, zap.NewNop(), 0)

	res := gw.Generate(context.Background(), "prompt")
	if res.Text != UnexpectedFallbackText {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if !res.Failed() {
		t.Fatalf("expected failure to be reported")
	}
}

func TestGatewayNilGenerator(t *testing.T) {
	gw := NewGateway(nil, nil, 0)

	res := gw.Generate(context.Background(), "prompt")
	if res.Text != UnexpectedFallbackText || !res.Failed() {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGatewayLogsTruncatedPreview(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	gw := NewGateway(&stubGenerator{response: "ok"}, zap.New(core), 5)

	gw.Generate(context.Background(), "a rather long prompt")

	entries := observed.FilterMessage("generate content request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["prompt_preview"] != "a rat..." {
		t.Fatalf("unexpected preview: %q", ctx["prompt_preview"])
	}
	if ctx["prompt_length"] != int64(20) {
		t.Fatalf("unexpected prompt length: %v", ctx["prompt_length"])
	}
}
