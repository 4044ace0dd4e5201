package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// UnknownWebsite is used when an article link has no parsable host.
const UnknownWebsite = "Unknown"

// CustomSearch searches web articles with the Google Custom Search JSON API.
type CustomSearch struct {
	apiKey   string
	engineID string
	opts     options

	once    sync.Once
	service *customsearch.Service
	initErr error
}

// NewCustomSearch creates an article searcher for the given programmable
// search engine. Missing credentials are allowed; searches then log a
// warning and return no results.
func NewCustomSearch(apiKey, engineID string, opts ...Option) *CustomSearch {
	return &CustomSearch{apiKey: apiKey, engineID: engineID, opts: newOptions(opts)}
}

func (c *CustomSearch) svc(ctx context.Context) (*customsearch.Service, error) {
	c.once.Do(func() {
		clientOpts := []option.ClientOption{option.WithAPIKey(c.apiKey)}
		if c.opts.endpoint != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(c.opts.endpoint))
		}
		c.service, c.initErr = customsearch.NewService(context.WithoutCancel(ctx), clientOpts...)
	})
	return c.service, c.initErr
}

// SearchArticles returns up to the configured number of articles for query.
func (c *CustomSearch) SearchArticles(ctx context.Context, query string) []Article {
	if c.apiKey == "" || c.engineID == "" {
		slog.Warn("article search skipped: Google Custom Search credentials not configured")
		return []Article{}
	}

	svc, err := c.svc(ctx)
	if err != nil {
		slog.Warn("article search: failed to create client", slog.Any("error", err))
		return []Article{}
	}

	ctx, cancel := withTimeout(ctx, c.opts.timeout)
	defer cancel()

	resp, err := svc.Cse.List().
		Q(query).
		Cx(c.engineID).
		Num(int64(c.opts.maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		slog.Warn("article search failed", slog.String("query", query), slog.Any("error", err))
		return []Article{}
	}
	return articlesFromResponse(resp)
}

func articlesFromResponse(resp *customsearch.Search) []Article {
	articles := make([]Article, 0, len(resp.Items))
	for i, item := range resp.Items {
		if item == nil {
			continue
		}
		articles = append(articles, Article{
			ID:      fmt.Sprintf("article-%d", i),
			Title:   item.Title,
			Website: Hostname(item.Link),
			Snippet: item.Snippet,
			URL:     item.Link,
		})
	}
	return articles
}

// Hostname returns the host of link without port, or UnknownWebsite.
func Hostname(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return UnknownWebsite
	}
	return u.Hostname()
}
