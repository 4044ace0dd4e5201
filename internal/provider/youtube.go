package provider

import (
	"context"
	"html"
	"log/slog"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// PlaceholderThumbnail is used when a video has no default thumbnail.
const PlaceholderThumbnail = "https://via.placeholder.com/120x90"

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// YouTube searches videos with the YouTube Data API v3 using an API key.
type YouTube struct {
	apiKey string
	opts   options

	once    sync.Once
	service *youtube.Service
	initErr error
}

// NewYouTube creates a YouTube video searcher. An empty apiKey is allowed;
// searches then log a warning and return no results.
func NewYouTube(apiKey string, opts ...Option) *YouTube {
	return &YouTube{apiKey: apiKey, opts: newOptions(opts)}
}

func (y *YouTube) svc(ctx context.Context) (*youtube.Service, error) {
	y.once.Do(func() {
		clientOpts := []option.ClientOption{option.WithAPIKey(y.apiKey)}
		if y.opts.endpoint != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(y.opts.endpoint))
		}
		y.service, y.initErr = youtube.NewService(context.WithoutCancel(ctx), clientOpts...)
	})
	return y.service, y.initErr
}

// SearchVideos returns up to the configured number of videos for query.
func (y *YouTube) SearchVideos(ctx context.Context, query string) []Video {
	if y.apiKey == "" {
		slog.Warn("video search skipped: YOUTUBE_API_KEY not configured")
		return []Video{}
	}

	svc, err := y.svc(ctx)
	if err != nil {
		slog.Warn("video search: failed to create client", slog.Any("error", err))
		return []Video{}
	}

	ctx, cancel := withTimeout(ctx, y.opts.timeout)
	defer cancel()

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(y.opts.maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		slog.Warn("video search failed", slog.String("query", query), slog.Any("error", err))
		return []Video{}
	}
	return videosFromResponse(resp)
}

func videosFromResponse(resp *youtube.SearchListResponse) []Video {
	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := Video{
			ID:        item.Id.VideoId,
			Duration:  Unknown,
			Views:     Unknown,
			Thumbnail: PlaceholderThumbnail,
			URL:       youtubeWatchURL + item.Id.VideoId,
		}
		if s := item.Snippet; s != nil {
			v.Title = html.UnescapeString(s.Title)
			v.Channel = html.UnescapeString(s.ChannelTitle)
			if s.Thumbnails != nil && s.Thumbnails.Default != nil && s.Thumbnails.Default.Url != "" {
				v.Thumbnail = s.Thumbnails.Default.Url
			}
		}
		videos = append(videos, v)
	}
	return videos
}
