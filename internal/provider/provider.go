// Package provider wraps the third-party services a search fans out to:
// a video search API, a web search API and an LLM completion API.
//
// Video and article searchers fail soft: every error is logged and turned
// into an empty result. Completers fail hard and return typed errors.
package provider

import (
	"context"
	"net/http"
	"time"
)

// Unknown marks a video field the provider did not report.
const Unknown = "N/A"

// DefaultMaxResults caps video and article results per query.
const DefaultMaxResults = 5

// Video is a single video search result.
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Duration  string `json:"duration"`
	Views     string `json:"views"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

// Article is a single web search result.
type Article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Website string `json:"website"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// VideoSearcher finds videos for a query. Implementations never fail;
// any error yields an empty slice.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string) []Video
}

// ArticleSearcher finds web articles for a query. Same soft-failure contract
// as VideoSearcher.
type ArticleSearcher interface {
	SearchArticles(ctx context.Context, query string) []Article
}

// CompletionRequest is a single-prompt completion call.
type CompletionRequest struct {
	Prompt    string
	MaxTokens int
}

// Completer produces LLM text for a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Option configures a provider client.
type Option func(*options)

type options struct {
	endpoint   string
	httpClient *http.Client
	maxResults int
	timeout    time.Duration
}

func newOptions(opts []Option) options {
	o := options{maxResults: DefaultMaxResults}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithEndpoint overrides the API base URL (useful for testing).
func WithEndpoint(u string) Option {
	return func(o *options) { o.endpoint = u }
}

// WithHTTPClient sets the HTTP client used for completion calls.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// WithMaxResults caps search results. Values outside 1..10 are ignored.
func WithMaxResults(n int) Option {
	return func(o *options) {
		if n >= 1 && n <= 10 {
			o.maxResults = n
		}
	}
}

// WithTimeout bounds each outbound call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
