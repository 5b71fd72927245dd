package pipeline

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Science News</title>
<item>
<title> First Story </title>
<link>https://example.com/story?utm_source=rss&amp;utm_medium=feed</link>
<pubDate>Tue, 25 Aug 2026 09:00:00 GMT</pubDate>
</item>
<item>
<title>Second Story</title>
<link>https://example.com/second</link>
</item>
</channel>
</rss>`

func TestFirstHeadline(t *testing.T) {
	feed, err := gofeed.NewParser().ParseString(sampleRSS)
	if err != nil {
		t.Fatalf("parsing sample feed: %v", err)
	}

	h, err := firstHeadline(feed)
	if err != nil {
		t.Fatal(err)
	}
	if h.Title != "First Story" {
		t.Errorf("Title = %q (expected trimmed first item)", h.Title)
	}
	if h.Source != "Science News" {
		t.Errorf("Source = %q", h.Source)
	}
	if h.URL != "https://example.com/story" {
		t.Errorf("URL = %q (expected tracking params stripped)", h.URL)
	}
	if h.PublishedAt == "" {
		t.Error("Expected PublishedAt to be set from pubDate")
	}
}

func TestFirstHeadlineEmptyFeed(t *testing.T) {
	feed := &gofeed.Feed{Title: "Empty"}
	if _, err := firstHeadline(feed); err == nil {
		t.Error("Expected error for empty feed")
	}
}

func TestFirstHeadlineEmptyTitle(t *testing.T) {
	feed := &gofeed.Feed{
		Title: "Feed",
		Items: []*gofeed.Item{{Title: "   ", Link: "https://example.com"}},
	}
	if _, err := firstHeadline(feed); err == nil {
		t.Error("Expected error for blank first title")
	}
}

func TestFetchTopHeadline(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		rw.Header().Set("Content-Type", "application/rss+xml")
		rw.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	cfg := DefaultHeadlineConfig()
	h, err := FetchTopHeadline(srv.URL, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if h.Title != "First Story" {
		t.Errorf("Title = %q", h.Title)
	}
	if gotUA != cfg.UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, cfg.UserAgent)
	}
}

func TestFetchTopHeadlineBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := FetchTopHeadline(srv.URL, DefaultHeadlineConfig()); err == nil {
		t.Error("Expected error for non-200 feed response")
	}
}
