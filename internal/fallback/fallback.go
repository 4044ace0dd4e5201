// Package fallback produces deterministic placeholder results for a query.
// They are substituted only when a provider returns nothing.
package fallback

import (
	"fmt"
	"net/url"

	"github.com/hpungsan/howto/internal/provider"
)

// IDPrefixes mark fallback records so callers can tell them apart from
// provider results.
const (
	VideoIDPrefix   = "fallback-video-"
	ArticleIDPrefix = "fallback-article-"
)

type videoTemplate struct {
	title, channel, duration, views string
}

var videoTemplates = []videoTemplate{
	{"How to %s - Complete Beginner's Guide", "HowTo Academy", "12:34", "1.2M"},
	{"%s: Step by Step Tutorial", "DIY Simplified", "8:15", "845K"},
	{"Easy Way to %s (Tips & Tricks)", "Quick Skills", "5:42", "2.1M"},
	{"%s - Common Mistakes to Avoid", "Expert Explains", "10:03", "530K"},
	{"Learn to %s in Under 10 Minutes", "Fast Learning", "9:51", "376K"},
}

type articleTemplate struct {
	title, website, snippet, base string
}

var articleTemplates = []articleTemplate{
	{"How to %s: A Complete Guide", "www.wikihow.com", "Learn how to %s with this easy step-by-step guide, including the tools you need and tips from experts.", "https://www.wikihow.com/wikiHowTo?search="},
	{"The Beginner's Guide to %s", "www.instructables.com", "Everything a beginner needs to know to %s, with photos for each step.", "https://www.instructables.com/search/?q="},
	{"%s: Tips, Tools and Techniques", "www.reddit.com", "Community answers and personal experience on how to %s.", "https://www.reddit.com/search/?q="},
	{"%s Explained Simply", "www.britannica.com", "A clear explanation of what it takes to %s and why each step matters.", "https://www.britannica.com/search?query="},
	{"10 Things to Know Before You %s", "medium.com", "Practical advice collected from people who learned to %s the hard way.", "https://medium.com/search?q="},
}

// Videos returns 5 placeholder videos for query. The output depends only
// on query.
func Videos(query string) []provider.Video {
	esc := url.QueryEscape(query)
	videos := make([]provider.Video, len(videoTemplates))
	for i, t := range videoTemplates {
		n := i + 1
		videos[i] = provider.Video{
			ID:        fmt.Sprintf("%s%d", VideoIDPrefix, n),
			Title:     fmt.Sprintf(t.title, query),
			Channel:   t.channel,
			Duration:  t.duration,
			Views:     t.views,
			Thumbnail: provider.PlaceholderThumbnail,
			URL:       "https://www.youtube.com/results?search_query=" + esc,
		}
	}
	return videos
}

// Articles returns 5 placeholder articles for query. The output depends only
// on query.
func Articles(query string) []provider.Article {
	esc := url.QueryEscape(query)
	articles := make([]provider.Article, len(articleTemplates))
	for i, t := range articleTemplates {
		n := i + 1
		articles[i] = provider.Article{
			ID:      fmt.Sprintf("%s%d", ArticleIDPrefix, n),
			Title:   fmt.Sprintf(t.title, query),
			Website: t.website,
			Snippet: fmt.Sprintf(t.snippet, query),
			URL:     t.base + esc,
		}
	}
	return articles
}
