// =============================================================================
// main.go - Daily English パイプラインのエントリーポイント
// =============================================================================
//
// このプログラムは、子供向け英語ワークシートの毎日公開を自動化するCLIツールです。
//
// =============================================================================
// 【処理フロー】
// =============================================================================
//
//   ┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//   │  1. 見出し  │ -> │  2. 生成    │ -> │  3. 公開    │
//   │  RSS取得    │    │  Gemini API │    │  HTML+履歴  │
//   └─────────────┘    └─────────────┘    └─────────────┘
//
// モデルが失敗してもデフォルトワークシートで必ず公開される。
// 詳細は internal/pipeline/publish.go を参照。
//
// =============================================================================
// 【CLIフラグ一覧】
// =============================================================================
//
// ▼ 基本設定
//   -feed            入力RSSフィードURL
//   -docs            静的サイトのルートディレクトリ（デフォルト: docs）
//   -date            公開日の上書き（YYYY-MM-DD、過去ページの再生成用）
//   -timezone        「今日」を決めるタイムゾーン（デフォルト: Asia/Seoul）
//
// ▼ 生成設定
//   -geminiModel     使用するGeminiモデル（デフォルト: gemini-2.5-flash）
//   -temperature     生成温度（デフォルト: 0.4）
//   -maxTokens       最大出力トークン（デフォルト: 1500）
//   -worksheet       ワークシートJSONファイル（指定時はモデルを呼ばない）
//
// ▼ 運用
//   -rebuildArchive  days/*.htmlからarchive.jsonを再構築して終了
//   -notionClip      公開結果をNotionデータベースに記録
//   -sendEmail       公開レポートをメール送信
//
// =============================================================================
// 【必要な環境変数】
// =============================================================================
//
//   GEMINI_API_KEY - Gemini APIキー（-worksheet指定時は不要）
//   NOTION_TOKEN   - Notion APIトークン（-notionClip時のみ）
//   EMAIL_FROM / EMAIL_PASSWORD / EMAIL_TO - メール通知（-sendEmail時のみ）
//   SITE_URL       - 公開先のベースURL（Notionやメールのリンクに使用、任意）
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv" // .env ファイル読み込み

	"daily-english/internal/pipeline"
)

// fatalf はエラーメッセージを出力してプログラムを終了する
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	// .env ファイルから環境変数を読み込み
	// ファイルが存在しない場合はログを出力するが、処理は続行する
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: .env file not loaded: %v (using environment variables only)\n", err)
	}

	// CLIフラグを解析（config.goのParseFlags）
	cfg := pipeline.ParseFlags()

	// --- Early exit for archive rebuild mode ---
	if cfg.Output.RebuildArchive {
		if err := pipeline.RunRebuildArchive(cfg); err != nil {
			fatalf("rebuilding archive: %v", err)
		}
		return
	}

	// Gemini API key check (not needed when rendering from a worksheet file)
	if cfg.Feed.WorksheetFile == "" && cfg.Gemini.APIKey == "" {
		fatalf("set GEMINI_API_KEY in your environment (or use -worksheet to render from a file)")
	}

	// --- 1) Publish today's worksheet ---
	res, err := pipeline.RunPublish(cfg)
	if err != nil {
		fatalf("publish failed: %v", err)
	}

	siteURL := os.Getenv("SITE_URL")
	pageURL := ""
	if siteURL != "" {
		pageURL = strings.TrimRight(siteURL, "/") + "/" + pipeline.DayFileName(res.Date)
	}

	// --- 2) Clip to Notion (if enabled) ---
	if cfg.Notion.Clip {
		notionToken := os.Getenv("NOTION_TOKEN")
		if notionToken == "" {
			fatalf("NOTION_TOKEN environment variable is required for Notion integration")
		}

		clipper, err := pipeline.NewNotionClipper(notionToken, cfg.Notion.DatabaseID)
		if err != nil {
			fatalf("creating Notion clipper: %v", err)
		}

		ctx := context.Background()

		// Create database if needed
		if cfg.Notion.DatabaseID == "" {
			if cfg.Notion.PageID == "" {
				fatalf("-notionPageID is required when creating a new Notion database")
			}
			fmt.Fprintln(os.Stderr, "Creating new Notion database...")
			dbID, err := clipper.CreateDatabase(ctx, cfg.Notion.PageID)
			if err != nil {
				fatalf("creating Notion database: %v", err)
			}
			fmt.Fprintf(os.Stderr, "Please add to .env for future runs:\nNOTION_DATABASE_ID=%s\n", dbID)
		}

		if err := clipper.ClipPublishedDay(ctx, res, pageURL); err != nil {
			fmt.Fprintf(os.Stderr, "WARN: failed to clip to Notion: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "✅ Clipped %s to Notion\n", res.Date)
		}
	}

	// --- 3) Email report (if enabled) ---
	if cfg.Email.Notify {
		sender, err := pipeline.NewEmailSender(
			os.Getenv("EMAIL_FROM"),
			os.Getenv("EMAIL_PASSWORD"),
			os.Getenv("EMAIL_TO"),
		)
		if err != nil {
			fatalf("creating email sender: %v", err)
		}
		if err := sender.SendPublishReport(res, siteURL); err != nil {
			fmt.Fprintf(os.Stderr, "WARN: failed to send publish report: %v\n", err)
		}
	}

	fmt.Fprintln(os.Stderr, "========================================")
	fmt.Fprintf(os.Stderr, "✅ Published %s: %s\n", res.Date, res.Title)
	if res.UsedFallback {
		fmt.Fprintln(os.Stderr, "   (model output unusable, default worksheet used)")
	}
	fmt.Fprintf(os.Stderr, "   Page:    %s\n", res.PagePath)
	fmt.Fprintf(os.Stderr, "   Archive: %d days\n", res.ArchiveSize)
	fmt.Fprintln(os.Stderr, "========================================")
}
