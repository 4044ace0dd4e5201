package provider

import (
	"fmt"

	"github.com/hpungsan/howto/internal/config"
)

// NewCompleter builds the completer selected by cfg.LLM.Provider.
// A missing API key is not an error here; the completer reports it on use.
func NewCompleter(cfg *config.Config, creds config.Credentials, opts ...Option) (Completer, error) {
	base := []Option{WithTimeout(cfg.HTTPTimeout)}
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return NewGemini(creds.GeminiAPIKey, cfg.LLM.ModelOrDefault(), cfg.LLM.TemperatureOrDefault(), append(base, opts...)...), nil
	case config.ProviderOpenAI, "":
		if cfg.LLM.BaseURL != "" {
			base = append(base, WithEndpoint(cfg.LLM.BaseURL))
		}
		return NewOpenAI(creds.OpenAIAPIKey, cfg.LLM.ModelOrDefault(), cfg.LLM.TemperatureOrDefault(), append(base, opts...)...), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// NewSearchers builds the video and article searchers from config.
func NewSearchers(cfg *config.Config, creds config.Credentials) (*YouTube, *CustomSearch) {
	opts := []Option{WithMaxResults(cfg.Search.MaxResults), WithTimeout(cfg.HTTPTimeout)}
	return NewYouTube(creds.YouTubeAPIKey, opts...),
		NewCustomSearch(creds.GoogleSearchAPIKey, creds.GoogleSearchEngineID, opts...)
}
