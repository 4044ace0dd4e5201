package provider

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/hpungsan/howto/internal/config"
	"github.com/hpungsan/howto/internal/errors"
)

const geminiName = "gemini"

// Gemini produces completions with the Gemini API.
type Gemini struct {
	apiKey      string
	model       string
	temperature float64
	opts        options

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGemini creates a Gemini completer. The client is built on first use.
func NewGemini(apiKey, model string, temperature float64, opts ...Option) *Gemini {
	return &Gemini{apiKey: apiKey, model: model, temperature: temperature, opts: newOptions(opts)}
}

func (g *Gemini) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		cc := &genai.ClientConfig{
			APIKey:     g.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: g.opts.httpClient,
		}
		if g.opts.endpoint != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.opts.endpoint}
		}
		g.client, g.initErr = genai.NewClient(context.WithoutCancel(ctx), cc)
	})
	return g.client, g.initErr
}

// Complete sends req.Prompt as a single user turn and returns the response text.
func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if g.apiKey == "" {
		return "", errors.NewMissingCredential(config.EnvGeminiAPIKey)
	}

	client, err := g.genaiClient(ctx)
	if err != nil {
		return "", errors.NewUpstream(geminiName, fmt.Errorf("failed to create client: %w", err))
	}

	ctx, cancel := withTimeout(ctx, g.opts.timeout)
	defer cancel()

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(g.temperature)),
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", errors.NewUpstream(geminiName, err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.NewUpstream(geminiName, fmt.Errorf("empty response"))
	}
	return text, nil
}
