package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/talent-scout/internal/ai"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-pro"
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// SDKClient wraps the Google GenAI client with the same contract as RESTClient.
type SDKClient struct {
	models    contentModels
	modelName string
}

// NewSDKClient creates a client configured for the Gemini API backend.
func NewSDKClient(ctx context.Context, apiKey, model string) (*SDKClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &SDKClient{models: client.Models, modelName: model}, nil
}

// GenerateContent sends the prompt to Gemini and returns the first part of the first candidate.
func (c *SDKClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.models == nil {
		return "", errors.New("gemini client is not initialized")
	}

	resp, err := c.models.GenerateContent(ctx, c.modelName, genai.Text(prompt), nil)
	if err != nil {
		transport := &ai.TransportError{Op: "generate content", Err: err}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			transport.StatusCode = apiErr.Code
		}
		return "", transport
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", ai.ErrNoContent
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 || candidate.Content.Parts[0] == nil {
		return "", ErrMalformedResponse
	}

	return candidate.Content.Parts[0].Text, nil
}

func (c *SDKClient) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}
