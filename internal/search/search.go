// Package search runs the query pipeline: validate, fetch videos and
// articles concurrently, substitute fallback data for empty results, and
// summarize with an LLM.
package search

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/fallback"
	"github.com/hpungsan/howto/internal/i18n"
	"github.com/hpungsan/howto/internal/provider"
	"github.com/hpungsan/howto/internal/query"
)

// Default completion budgets.
const (
	DefaultSummaryMaxTokens  = 1500
	DefaultFollowUpMaxTokens = 800
)

// SearchRequest is the input to Search.
type SearchRequest struct {
	Query    string
	Language string
}

// SearchResponse is the aggregate result. Videos and Articles are never
// empty, and Summary was generated from exactly these slices.
type SearchResponse struct {
	Videos   []provider.Video   `json:"videos"`
	Articles []provider.Article `json:"articles"`
	Summary  string             `json:"summary"`
}

// FollowUpRequest is the input to FollowUp.
type FollowUpRequest struct {
	OriginalQuery string `json:"originalQuery"`
	FollowUpQuery string `json:"followUpQuery"`
	Language      string `json:"language"`
}

// FollowUpResponse holds the answer to a follow-up question.
type FollowUpResponse struct {
	Answer string `json:"answer"`
}

// Orchestrator wires the providers together.
type Orchestrator struct {
	videos    provider.VideoSearcher
	articles  provider.ArticleSearcher
	completer provider.Completer

	summaryMaxTokens  int
	followUpMaxTokens int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxTokens overrides the summary and follow-up completion budgets.
// Zero values keep the defaults.
func WithMaxTokens(summary, followUp int) Option {
	return func(o *Orchestrator) {
		if summary > 0 {
			o.summaryMaxTokens = summary
		}
		if followUp > 0 {
			o.followUpMaxTokens = followUp
		}
	}
}

// New creates an Orchestrator.
func New(videos provider.VideoSearcher, articles provider.ArticleSearcher, completer provider.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		videos:            videos,
		articles:          articles,
		completer:         completer,
		summaryMaxTokens:  DefaultSummaryMaxTokens,
		followUpMaxTokens: DefaultFollowUpMaxTokens,
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// Search validates req.Query, gathers videos and articles, and summarizes
// them in req.Language. Validation errors are INVALID_REQUEST; summary
// failures are UPSTREAM (or CONFIGURATION when the LLM key is absent).
// No partial response is returned on error.
func (o *Orchestrator) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if err := query.Validate(req.Query); err != nil {
		return nil, err
	}
	lang := i18n.Resolve(req.Language)

	var videos []provider.Video
	var articles []provider.Article

	// Both searchers fail soft, so the group never carries an error.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		videos = o.videos.SearchVideos(gctx, req.Query)
		return nil
	})
	g.Go(func() error {
		articles = o.articles.SearchArticles(gctx, req.Query)
		return nil
	})
	_ = g.Wait()

	if len(videos) == 0 {
		slog.Info("using fallback videos", slog.String("query", req.Query))
		videos = fallback.Videos(req.Query)
	}
	if len(articles) == 0 {
		slog.Info("using fallback articles", slog.String("query", req.Query))
		articles = fallback.Articles(req.Query)
	}

	summary, err := o.completer.Complete(ctx, provider.CompletionRequest{
		Prompt:    SummaryPrompt(req.Query, videos, articles, lang),
		MaxTokens: o.summaryMaxTokens,
	})
	if err != nil {
		return nil, asUpstream(err)
	}

	return &SearchResponse{
		Videos:   videos,
		Articles: articles,
		Summary:  summary,
	}, nil
}

// FollowUp answers a question about a previous search.
func (o *Orchestrator) FollowUp(ctx context.Context, req FollowUpRequest) (*FollowUpResponse, error) {
	if err := query.ValidateFollowUp(req.FollowUpQuery); err != nil {
		return nil, err
	}
	lang := i18n.Resolve(req.Language)

	answer, err := o.completer.Complete(ctx, provider.CompletionRequest{
		Prompt:    FollowUpPrompt(req.OriginalQuery, req.FollowUpQuery, lang),
		MaxTokens: o.followUpMaxTokens,
	})
	if err != nil {
		return nil, asUpstream(err)
	}
	return &FollowUpResponse{Answer: answer}, nil
}

// asUpstream keeps typed errors from the completer and wraps anything else.
func asUpstream(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewUpstream("llm", err)
}
