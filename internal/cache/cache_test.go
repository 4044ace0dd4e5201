package cache

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hpungsan/howto/internal/provider"
)

func newTestCache(t *testing.T, ttl time.Duration, maxEntries int) *Tiered {
	t.Helper()
	c := New(context.Background(), "", ttl, maxEntries)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestKey(t *testing.T) {
	if Key("videos", "tie a tie") != Key("videos", "tie a tie") {
		t.Error("Key not deterministic")
	}
	if Key("videos", "a") == Key("articles", "a") {
		t.Error("different parts produced same key")
	}
	if !strings.HasPrefix(Key("x"), "howto:") {
		t.Errorf("Key() = %q, want howto: prefix", Key("x"))
	}
}

func TestGetSet(t *testing.T) {
	c := newTestCache(t, time.Minute, 100)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss on empty cache")
	}
	c.Set(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d/%d, want 1/1", hits, misses)
	}
}

func TestExpiration(t *testing.T) {
	c := newTestCache(t, time.Millisecond, 100)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss after TTL")
	}
}

func TestEviction(t *testing.T) {
	c := newTestCache(t, time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"))
		time.Sleep(time.Millisecond)
	}
	if c.Len() > 3 {
		t.Errorf("Len() = %d, want <= 3", c.Len())
	}
	if _, ok := c.Get(ctx, "k4"); !ok {
		t.Error("newest entry was evicted")
	}
	if _, ok := c.Get(ctx, "k0"); ok {
		t.Error("oldest entry survived eviction")
	}
}

func TestInvalidRedisURLDisablesL2(t *testing.T) {
	c := New(context.Background(), "://bad", time.Minute, 10)
	defer c.Close()
	if c.rdb != nil {
		t.Error("rdb should be nil for invalid URL")
	}
	c.Set(context.Background(), "k", []byte("v"))
	if _, ok := c.Get(context.Background(), "k"); !ok {
		t.Error("L1 should work without L2")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := newTestCache(t, time.Minute, 10)
	ctx := context.Background()

	SetJSON(ctx, c, "v", []provider.Video{{ID: "a"}})
	got, ok := GetJSON[[]provider.Video](ctx, c, "v")
	if !ok || len(got) != 1 || got[0].ID != "a" {
		t.Errorf("GetJSON() = %v, %v", got, ok)
	}

	c.Set(ctx, "bad", []byte("{"))
	if _, ok := GetJSON[[]provider.Video](ctx, c, "bad"); ok {
		t.Error("GetJSON() should miss on corrupt data")
	}
}

type countingVideos struct {
	calls  int
	result []provider.Video
}

func (f *countingVideos) SearchVideos(context.Context, string) []provider.Video {
	f.calls++
	return f.result
}

type countingArticles struct {
	calls  int
	result []provider.Article
}

func (f *countingArticles) SearchArticles(context.Context, string) []provider.Article {
	f.calls++
	return f.result
}

func TestVideos_CachesNonEmptyByNormalizedQuery(t *testing.T) {
	c := newTestCache(t, time.Minute, 10)
	inner := &countingVideos{result: []provider.Video{{ID: "v1"}}}
	s := Videos(inner, c)
	ctx := context.Background()

	s.SearchVideos(ctx, "Tie a Tie")
	got := s.SearchVideos(ctx, "  tie a   tie ")
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if len(got) != 1 || got[0].ID != "v1" {
		t.Errorf("cached result = %v", got)
	}
}

func TestArticles_DoesNotCacheEmpty(t *testing.T) {
	c := newTestCache(t, time.Minute, 10)
	inner := &countingArticles{result: []provider.Article{}}
	s := Articles(inner, c)
	ctx := context.Background()

	s.SearchArticles(ctx, "cook rice")
	s.SearchArticles(ctx, "cook rice")
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}
