package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spigell/talent-scout/internal/ai"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"

	contentType = "application/json"
	userAgent   = "spigell/talent-scout"
)

// ErrMalformedResponse is returned when the response cannot be walked down to
// the text of the first candidate.
var ErrMalformedResponse = errors.New("malformed generation response")

// RESTClient posts prompts to a generateContent endpoint with a bearer token.
type RESTClient struct {
	apiKey     string
	endpoint   string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

type requestPart struct {
	Text string `json:"text"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

// Response fields are pointers so a missing key can be told apart from an empty one.
type responsePart struct {
	Text *string `json:"text"`
}

type responseContent struct {
	Parts []responsePart `json:"parts"`
}

type responseCandidate struct {
	Content *responseContent `json:"content"`
}


func NewRESTClient(apiKey, endpoint string, logger *zap.Logger) (*RESTClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	if endpoint = strings.TrimSpace(endpoint); endpoint == "" {
		endpoint = DefaultEndpoint
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &RESTClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		logger:   logger,
		// No timeout: a generation runs until it completes or the context is cancelled.
		HTTPClient: &http.Client{},
		UserAgent:  userAgent,
	}, nil
}

// GenerateContent sends the prompt as the only content part and returns the
// text of the first part of the first candidate.
func (c *RESTClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ai.TransportError{Op: "build request", Err: err}
	}

	req = c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return "", &ai.TransportError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &ai.TransportError{
			Op:         "post",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("bad status: %s", resp.Status),
		}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", &ai.TransportError{Op: "decode response", Err: err}
	}

	return firstText(raw)
}

// Model returns the model name embedded in the endpoint path.
func (c *RESTClient) Model() string {
	if c == nil {
		return ""
	}
	return modelFromEndpoint(c.endpoint)
}

func (c *RESTClient) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *RESTClient) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}

// firstText extracts candidates[0].content.parts[0].text. A body without a
// candidates key (including a top-level array or string) or with an empty
// candidates list has no content. Anything that cannot be walked, such as a
// null body or null candidates, is malformed.
func firstText(raw json.RawMessage) (string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		switch leadingByte(raw) {
		case '[', '"':
			return "", ai.ErrNoContent
		}
		return "", ErrMalformedResponse
	}

	field, ok := top["candidates"]
	if !ok {
		return "", ai.ErrNoContent
	}

	var candidates []responseCandidate
	if err := json.Unmarshal(field, &candidates); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if candidates == nil {
		return "", ErrMalformedResponse
	}
	if len(candidates) == 0 {
		return "", ai.ErrNoContent
	}

	content := candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return "", ErrMalformedResponse
	}

	return *content.Parts[0].Text, nil
}

func leadingByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func modelFromEndpoint(endpoint string) string {
	idx := strings.LastIndex(endpoint, "models/")
	if idx == -1 {
		return ""
	}

	model := endpoint[idx+len("models/"):]
	if end := strings.IndexAny(model, ":/?"); end != -1 {
		model = model[:end]
	}
	return model
}
