package cache

import (
	"context"

	"github.com/hpungsan/howto/internal/provider"
	"github.com/hpungsan/howto/internal/query"
)

// Videos wraps inner so non-empty results are cached by normalized query.
// Empty results are never cached, so a transient provider failure does not
// pin the fallback data.
func Videos(inner provider.VideoSearcher, c *Tiered) provider.VideoSearcher {
	return &videoSearcher{inner: inner, c: c}
}

// Articles wraps inner with the same policy as Videos.
func Articles(inner provider.ArticleSearcher, c *Tiered) provider.ArticleSearcher {
	return &articleSearcher{inner: inner, c: c}
}

type videoSearcher struct {
	inner provider.VideoSearcher
	c     *Tiered
}

func (s *videoSearcher) SearchVideos(ctx context.Context, q string) []provider.Video {
	key := Key("videos", query.Normalize(q))
	if v, ok := GetJSON[[]provider.Video](ctx, s.c, key); ok && len(v) > 0 {
		return v
	}
	videos := s.inner.SearchVideos(ctx, q)
	if len(videos) > 0 {
		SetJSON(ctx, s.c, key, videos)
	}
	return videos
}

type articleSearcher struct {
	inner provider.ArticleSearcher
	c     *Tiered
}

func (s *articleSearcher) SearchArticles(ctx context.Context, q string) []provider.Article {
	key := Key("articles", query.Normalize(q))
	if a, ok := GetJSON[[]provider.Article](ctx, s.c, key); ok && len(a) > 0 {
		return a
	}
	articles := s.inner.SearchArticles(ctx, q)
	if len(articles) > 0 {
		SetJSON(ctx, s.c, key, articles)
	}
	return articles
}
