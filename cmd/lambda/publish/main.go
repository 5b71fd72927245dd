// =============================================================================
// Lambda: publish-daily
// =============================================================================
//
// 1日分のワークシートを生成・公開するLambda関数。
// EventBridgeのスケジュールルール（例: cron(0 21 * * ? *) UTC = KST朝6時）
// から起動される想定。
//
// 環境変数:
//   - GEMINI_API_KEY:     Gemini APIキー (必須)
//   - FEED_URL:           入力RSSフィード (デフォルト: Google News サイエンス)
//   - SITE_TITLE:         サイト名 (デフォルト: "Daily English News (Age 7)")
//   - DOCS_DIR:           出力ディレクトリ (デフォルト: /tmp/docs)
//                         /tmpはコールドスタートで消えるため、archive.jsonを
//                         持続させるにはEFSマウント先を指定するか、実行の
//                         前後でS3等と同期すること
//   - TIMEZONE:           タイムゾーン (デフォルト: Asia/Seoul)
//   - SITE_URL:           公開先ベースURL (任意)
//   - NOTION_TOKEN:       Notion API Token (任意)
//   - NOTION_DATABASE_ID: NotionデータベースID (任意)
//   - EMAIL_FROM:         通知メール送信元 (任意)
//   - EMAIL_PASSWORD:     Gmailアプリパスワード (任意)
//   - EMAIL_TO:           通知メール送信先 (任意)
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"daily-english/internal/pipeline"
)

// LambdaConfig は環境変数から読み込む設定
type LambdaConfig struct {
	FeedURL          string
	SiteTitle        string
	DocsDir          string
	Timezone         string
	SiteURL          string
	GeminiAPIKey     string
	NotionToken      string
	NotionDatabaseID string
	EmailFrom        string // 通知用（任意）
	EmailPassword    string // 通知用（任意）
	EmailTo          string // 通知用（任意）
}

// Response はLambdaレスポンス
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Date       string `json:"date,omitempty"`
	Title      string `json:"title,omitempty"`
	Fallback   bool   `json:"fallback,omitempty"`
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event interface{}) (Response, error) {
	log.Println("Starting publish-daily Lambda...")

	// 1. 環境変数から設定を読み込む
	cfg := loadConfig()

	if cfg.GeminiAPIKey == "" {
		return Response{StatusCode: 400, Message: "GEMINI_API_KEY is required"},
			fmt.Errorf("GEMINI_API_KEY is required")
	}

	log.Printf("Config: feed=%s, docs=%s, timezone=%s", cfg.FeedURL, cfg.DocsDir, cfg.Timezone)

	// 2. パイプライン設定を組み立てて公開
	pcfg := &pipeline.PipelineConfig{
		Site: pipeline.SiteConfig{
			Title:    cfg.SiteTitle,
			Timezone: cfg.Timezone,
			TTSRate:  0.77,
		},
		Feed: pipeline.FeedConfig{
			URL:          cfg.FeedURL,
			FetchExcerpt: true,
		},
		Gemini: pipeline.GeminiConfig{
			APIKey:          cfg.GeminiAPIKey,
			Model:           "gemini-2.5-flash",
			Temperature:     0.4,
			MaxOutputTokens: 1500,
			Timeout:         120 * time.Second,
		},
		Output: pipeline.OutputConfig{
			DocsDir: cfg.DocsDir,
		},
	}

	res, err := pipeline.RunPublish(pcfg)
	if err != nil {
		log.Printf("Error publishing: %v", err)
		sendErrorNotification(cfg, err)
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	log.Printf("Published %s: %s (fallback=%t)", res.Date, res.Title, res.UsedFallback)

	pageURL := ""
	if cfg.SiteURL != "" {
		pageURL = strings.TrimRight(cfg.SiteURL, "/") + "/" + pipeline.DayFileName(res.Date)
	}

	// 3. Notionに記録（設定されている場合のみ）
	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		clipper, err := pipeline.NewNotionClipper(cfg.NotionToken, cfg.NotionDatabaseID)
		if err != nil {
			log.Printf("Warning: creating Notion clipper: %v", err)
		} else if err := clipper.ClipPublishedDay(ctx, res, pageURL); err != nil {
			log.Printf("Warning: failed to clip to Notion: %v", err)
		} else {
			log.Printf("Clipped %s to Notion", res.Date)
		}
	}

	// 4. 公開レポートをメール送信（設定されている場合のみ）
	if cfg.EmailFrom != "" && cfg.EmailPassword != "" && cfg.EmailTo != "" {
		sender, err := pipeline.NewEmailSender(cfg.EmailFrom, cfg.EmailPassword, cfg.EmailTo)
		if err != nil {
			log.Printf("Warning: creating email sender: %v", err)
		} else if err := sender.SendPublishReport(res, cfg.SiteURL); err != nil {
			log.Printf("Warning: failed to send publish report: %v", err)
		}
	}

	return Response{
		StatusCode: 200,
		Message:    fmt.Sprintf("Published %s: %s", res.Date, res.Title),
		Date:       res.Date,
		Title:      res.Title,
		Fallback:   res.UsedFallback,
	}, nil
}

// loadConfig は環境変数から設定を読み込む
func loadConfig() LambdaConfig {
	feedURL := os.Getenv("FEED_URL")
	if feedURL == "" {
		feedURL = pipeline.DefaultFeedURL
	}

	siteTitle := os.Getenv("SITE_TITLE")
	if siteTitle == "" {
		siteTitle = "Daily English News (Age 7)"
	}

	docsDir := os.Getenv("DOCS_DIR")
	if docsDir == "" {
		// Lambdaで書き込めるのは/tmpのみ。コールドスタートで消えるため、
		// 公開履歴を保つ運用ではDOCS_DIRにEFSマウント先を指定する
		docsDir = "/tmp/docs"
	}

	timezone := os.Getenv("TIMEZONE")
	if timezone == "" {
		timezone = "Asia/Seoul"
	}

	return LambdaConfig{
		FeedURL:          feedURL,
		SiteTitle:        siteTitle,
		DocsDir:          docsDir,
		Timezone:         timezone,
		SiteURL:          os.Getenv("SITE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		EmailFrom:        os.Getenv("EMAIL_FROM"),
		EmailPassword:    os.Getenv("EMAIL_PASSWORD"),
		EmailTo:          os.Getenv("EMAIL_TO"),
	}
}

// sendErrorNotification は公開失敗の通知メールを送信する
// EMAIL_FROM, EMAIL_PASSWORD, EMAIL_TO が設定されている場合のみ送信
func sendErrorNotification(cfg LambdaConfig, publishErr error) {
	if cfg.EmailFrom == "" || cfg.EmailPassword == "" || cfg.EmailTo == "" {
		log.Println("Email env vars not set, skipping error notification email")
		return
	}

	sender, err := pipeline.NewEmailSender(cfg.EmailFrom, cfg.EmailPassword, cfg.EmailTo)
	if err != nil {
		log.Printf("Failed to create email sender: %v", err)
		return
	}

	subject := fmt.Sprintf("[Daily English] publish failed - %s",
		time.Now().Format("2006-01-02 15:04"))

	var body strings.Builder
	body.WriteString("Daily English publish run failed:\n\n")
	body.WriteString("  " + publishErr.Error() + "\n")
	body.WriteString(fmt.Sprintf("\nTimestamp: %s\n", time.Now().Format(time.RFC3339)))

	msg := sender.BuildEmailMessage(subject, body.String())
	if err := sender.SendWithRetry(msg); err != nil {
		log.Printf("Failed to send error notification email: %v", err)
	} else {
		log.Println("Error notification email sent")
	}
}

func main() {
	lambda.Start(Handler)
}
