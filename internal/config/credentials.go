package config

import (
	"os"
	"strings"

	"github.com/hpungsan/howto/internal/errors"
)

// Environment variable names for provider credentials.
const (
	EnvYouTubeAPIKey        = "YOUTUBE_API_KEY"
	EnvGoogleSearchAPIKey   = "GOOGLE_SEARCH_API_KEY"
	EnvGoogleSearchEngineID = "GOOGLE_SEARCH_ENGINE_ID"
	EnvOpenAIAPIKey         = "OPENAI_API_KEY"
	EnvGeminiAPIKey         = "GEMINI_API_KEY"
	EnvPingMessage          = "PING_MESSAGE"
)

// Credentials holds provider secrets read from the environment.
// Values are read once at startup; providers never consult the environment.
type Credentials struct {
	YouTubeAPIKey        string
	GoogleSearchAPIKey   string
	GoogleSearchEngineID string
	OpenAIAPIKey         string
	GeminiAPIKey         string
	PingMessage          string
}

// LoadCredentials reads credentials using getenv (os.Getenv when nil).
func LoadCredentials(getenv func(string) string) Credentials {
	if getenv == nil {
		getenv = os.Getenv
	}
	get := func(k string) string { return strings.TrimSpace(getenv(k)) }
	return Credentials{
		YouTubeAPIKey:        get(EnvYouTubeAPIKey),
		GoogleSearchAPIKey:   get(EnvGoogleSearchAPIKey),
		GoogleSearchEngineID: get(EnvGoogleSearchEngineID),
		OpenAIAPIKey:         get(EnvOpenAIAPIKey),
		GeminiAPIKey:         get(EnvGeminiAPIKey),
		PingMessage:          getenv(EnvPingMessage),
	}
}

// VideoSearch returns a CONFIGURATION error if the video provider key is absent.
func (c Credentials) VideoSearch() error {
	if c.YouTubeAPIKey == "" {
		return errors.NewMissingCredential(EnvYouTubeAPIKey)
	}
	return nil
}

// ArticleSearch returns a CONFIGURATION error naming the first missing
// web-search credential.
func (c Credentials) ArticleSearch() error {
	if c.GoogleSearchAPIKey == "" {
		return errors.NewMissingCredential(EnvGoogleSearchAPIKey)
	}
	if c.GoogleSearchEngineID == "" {
		return errors.NewMissingCredential(EnvGoogleSearchEngineID)
	}
	return nil
}

// Completion returns a CONFIGURATION error if the selected LLM provider's key
// is absent.
func (c Credentials) Completion(provider string) error {
	if provider == ProviderGemini {
		if c.GeminiAPIKey == "" {
			return errors.NewMissingCredential(EnvGeminiAPIKey)
		}
		return nil
	}
	if c.OpenAIAPIKey == "" {
		return errors.NewMissingCredential(EnvOpenAIAPIKey)
	}
	return nil
}

// Check returns one CONFIGURATION error per missing credential.
// Video and article credentials are soft (the pipeline falls back);
// the completion credential is required for search to succeed.
func (c Credentials) Check(provider string) []error {
	var errs []error
	for _, err := range []error{c.VideoSearch(), c.ArticleSearch(), c.Completion(provider)} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
