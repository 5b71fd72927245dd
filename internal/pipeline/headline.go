// =============================================================================
// headline.go - ニュース見出しの取得
// =============================================================================
//
// このファイルはRSS/Atomフィードから「今日の見出し」を1件取得します。
// gofeed ライブラリを使用してフィードを解析します。
//
// フィードの先頭エントリだけを使う。記事の選別やランキングはせず、
// フィード側（Google Newsのトピックフィードなど）の並びに任せる。
//
// =============================================================================
package pipeline

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

// HeadlineSourceConfig は見出し取得時のHTTP設定を保持
type HeadlineSourceConfig struct {
	UserAgent string        // HTTPリクエスト時のUser-Agentヘッダー
	Timeout   time.Duration // HTTPリクエストのタイムアウト時間
	Client    *http.Client  // 共有HTTPクライアント（コネクションプーリング有効）
}

// DefaultHeadlineConfig はデフォルトの見出し取得設定を返す
func DefaultHeadlineConfig() HeadlineSourceConfig {
	timeout := 30 * time.Second
	return HeadlineSourceConfig{
		UserAgent: "Mozilla/5.0 (compatible; daily-english/1.0; +https://example.invalid)",
		Timeout:   timeout,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchTopHeadline はフィードの先頭エントリを見出しとして返す
//
// フィードが空、または先頭エントリのタイトルが空の場合はエラー。
// 実行全体にとって致命的（見出しがなければ公開するものがない）。
func FetchTopHeadline(feedURL string, cfg HeadlineSourceConfig) (Headline, error) {
	feed, err := fetchRSSFeed(feedURL, cfg)
	if err != nil {
		return Headline{}, err
	}
	return firstHeadline(feed)
}

// firstHeadline はパース済みフィードから先頭の見出しを取り出す
func firstHeadline(feed *gofeed.Feed) (Headline, error) {
	if len(feed.Items) == 0 {
		return Headline{}, fmt.Errorf("no items in feed %q", feed.Title)
	}

	item := feed.Items[0]
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return Headline{}, fmt.Errorf("first entry in feed %q has empty title", feed.Title)
	}

	// URLからトラッキングパラメータを除去
	articleURL := item.Link
	if idx := strings.Index(articleURL, "?utm_"); idx > 0 {
		articleURL = articleURL[:idx]
	}

	// 日付のパース（取得できない場合は空文字列）
	dateStr := ""
	if item.PublishedParsed != nil {
		dateStr = item.PublishedParsed.Format(time.RFC3339)
	} else if item.UpdatedParsed != nil {
		dateStr = item.UpdatedParsed.Format(time.RFC3339)
	}

	return Headline{
		Source:      strings.TrimSpace(feed.Title),
		Title:       title,
		URL:         articleURL,
		PublishedAt: dateStr,
	}, nil
}

// fetchRSSFeed は指定URLからRSS/Atomフィードを取得してパース
func fetchRSSFeed(feedURL string, cfg HeadlineSourceConfig) (*gofeed.Feed, error) {
	req, err := http.NewRequest("GET", feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	fp := gofeed.NewParser()
	feed, err := fp.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("RSS parse failed: %w", err)
	}

	return feed, nil
}

// FetchArticleExcerpt は見出しの記事本文の抜粋を取得する（ベストエフォート）
//
// go-readabilityで本文を抽出し、空白を正規化して600文字に切り詰める。
// 取得できなくても公開は続行するので、失敗時は警告を出して空文字列を返す。
func FetchArticleExcerpt(articleURL string, cfg HeadlineSourceConfig) string {
	if articleURL == "" {
		return ""
	}

	article, err := readability.FromURL(articleURL, cfg.Timeout)
	if err != nil {
		warnf("article excerpt: %v (continuing without it)", err)
		return ""
	}

	text := normalizeWhitespace(article.TextContent)
	return truncateString(text, 600)
}
