package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hpungsan/howto/internal/config"
	"github.com/hpungsan/howto/internal/errors"
)

const (
	openAIName           = "openai"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	maxErrorBody         = 1 << 20
)

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	http        *http.Client
}

// NewOpenAI creates a completer for model. The base URL comes from
// WithEndpoint and defaults to the public OpenAI API.
func NewOpenAI(apiKey, model string, temperature float64, opts ...Option) *OpenAI {
	o := newOptions(opts)
	baseURL := defaultOpenAIBaseURL
	if o.endpoint != "" {
		baseURL = o.endpoint
	}
	h := o.httpClient
	if h == nil {
		h = &http.Client{Timeout: o.timeout}
	}
	return &OpenAI{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		http:        h,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends req.Prompt as a single user message and returns the first
// choice's content.
func (c *OpenAI) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.NewMissingCredential(config.EnvOpenAIAPIKey)
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: c.temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", errors.NewInternal(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return "", errors.NewUpstream(openAIName, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return "", errors.NewUpstream(openAIName, err)
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(data, &parsed)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			return "", errors.NewUpstream(openAIName, fmt.Errorf("%s (status=%d)", parsed.Error.Message, res.StatusCode))
		}
		return "", errors.NewUpstream(openAIName, fmt.Errorf("unexpected status %d", res.StatusCode))
	}
	if decodeErr != nil {
		return "", errors.NewUpstream(openAIName, fmt.Errorf("malformed response: %w", decodeErr))
	}
	if len(parsed.Choices) == 0 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", errors.NewUpstream(openAIName, fmt.Errorf("%s", parsed.Error.Message))
		}
		return "", errors.NewUpstream(openAIName, fmt.Errorf("response has no choices"))
	}
	return parsed.Choices[0].Message.Content, nil
}
