// =============================================================================
// config.go - パイプライン設定
// =============================================================================
//
// このファイルはCLIフラグの解析と設定管理を行います。
//
// 【設定グループ】
//   - SiteConfig:   サイト表示設定
//   - FeedConfig:   入力フィード設定
//   - GeminiConfig: 生成モデル設定
//   - OutputConfig: 出力設定
//   - NotionConfig: Notion公開ログ設定
//   - EmailConfig:  メール通知設定
//
// 環境変数はここ（とmain）でのみ読み、正規化・フィル・アーカイブの
// コアロジックには設定構造体経由で値を渡す。コアは環境に依存しない。
//
// =============================================================================
package pipeline

import (
	"flag"
	"os"
	"time"
)

// =============================================================================
// 設定構造体
// =============================================================================

// PipelineConfig はパイプラインの全設定を保持する
type PipelineConfig struct {
	Site   SiteConfig
	Feed   FeedConfig
	Gemini GeminiConfig
	Output OutputConfig
	Notion NotionConfig
	Email  EmailNotifyConfig
}

// SiteConfig はサイト表示に関する設定
type SiteConfig struct {
	// Title は全ページの<title>に使うサイト名
	Title string

	// Timezone は「今日」を決めるIANAタイムゾーン名
	Timezone string

	// TTSRate は読み上げ速度（子供向けにゆっくりめ）
	TTSRate float64
}

// DefaultFeedURL はデフォルトの入力フィード（Google News サイエンス）
const DefaultFeedURL = "https://news.google.com/rss/headlines/section/topic/SCIENCE?hl=en-US&gl=US&ceid=US:en"

// FeedConfig は入力フィードに関する設定
type FeedConfig struct {
	// URL はRSS/AtomフィードのURL
	URL string

	// FetchExcerpt がtrueの場合、見出しの記事本文を取得してプロンプトを補強する
	FetchExcerpt bool

	// WorksheetFile が指定された場合、モデルを呼ばずにファイルから
	// ワークシートJSONを読み込む（レンダリングの確認用）
	WorksheetFile string
}

// GeminiConfig は生成モデルに関する設定
type GeminiConfig struct {
	// APIKey はGemini APIキー（GEMINI_API_KEY環境変数から）
	APIKey string

	// Model は使用するモデル名
	Model string

	// Endpoint はAPIのベースURL（テスト時に差し替え可能、空でデフォルト）
	Endpoint string

	// Temperature は生成のランダム性（低めで安定した構造を狙う）
	Temperature float64

	// MaxOutputTokens は生成の最大トークン数
	MaxOutputTokens int

	// Timeout はAPI呼び出しのタイムアウト
	Timeout time.Duration
}

// OutputConfig は出力に関する設定
type OutputConfig struct {
	// DocsDir は静的サイトのルートディレクトリ
	DocsDir string

	// Date が指定された場合、その日付（YYYY-MM-DD）のページとして公開する
	// （空の場合はTimezoneでの今日）
	Date string

	// SaveWorksheet が指定された場合、検証済みワークシートJSONを保存する
	SaveWorksheet string

	// RebuildArchive がtrueの場合、days/*.htmlからarchive.jsonを再構築して終了
	RebuildArchive bool
}

// NotionConfig はNotion公開ログに関する設定
type NotionConfig struct {
	// Clip がtrueの場合、公開結果をNotionデータベースに記録する
	Clip bool

	// PageID は新規データベース作成時の親ページID
	PageID string

	// DatabaseID は既存のデータベースID
	DatabaseID string
}

// EmailNotifyConfig はメール通知に関する設定
type EmailNotifyConfig struct {
	// Notify がtrueの場合、公開レポートをメール送信する
	Notify bool
}

// =============================================================================
// フラグ解析
// =============================================================================

// ParseFlags はCLIフラグを解析してPipelineConfigを返す
func ParseFlags() *PipelineConfig {
	cfg := &PipelineConfig{}

	// Site flags
	flag.StringVar(&cfg.Site.Title, "siteTitle", "Daily English News (Age 7)", "site title used in page headers")
	flag.StringVar(&cfg.Site.Timezone, "timezone", "Asia/Seoul", "IANA timezone that decides \"today\"")
	flag.Float64Var(&cfg.Site.TTSRate, "ttsRate", 0.77, "speech synthesis rate for read-aloud buttons")

	// Feed flags
	flag.StringVar(&cfg.Feed.URL, "feed", DefaultFeedURL, "RSS/Atom feed to take the top headline from")
	flag.BoolVar(&cfg.Feed.FetchExcerpt, "fetchExcerpt", true, "fetch article body to enrich the prompt (best effort)")
	flag.StringVar(&cfg.Feed.WorksheetFile, "worksheet", "", "optional: path to worksheet JSON; if set, skip the model call")

	// Gemini flags
	flag.StringVar(&cfg.Gemini.Model, "geminiModel", "gemini-2.5-flash", "Gemini model to use")
	flag.Float64Var(&cfg.Gemini.Temperature, "temperature", 0.4, "generation temperature")
	flag.IntVar(&cfg.Gemini.MaxOutputTokens, "maxTokens", 1500, "max output tokens for generation")

	// Output flags
	flag.StringVar(&cfg.Output.DocsDir, "docs", "docs", "static site root directory")
	flag.StringVar(&cfg.Output.Date, "date", "", "optional: publish as this date (YYYY-MM-DD, default: today)")
	flag.StringVar(&cfg.Output.SaveWorksheet, "saveWorksheet", "", "optional: write validated worksheet JSON to this path")
	flag.BoolVar(&cfg.Output.RebuildArchive, "rebuildArchive", false, "rebuild archive.json from published day pages and exit")

	// Notion flags
	flag.BoolVar(&cfg.Notion.Clip, "notionClip", false, "log published days to a Notion database")
	flag.StringVar(&cfg.Notion.PageID, "notionPageID", "", "parent page ID for creating a new Notion database (required for new DB)")
	flag.StringVar(&cfg.Notion.DatabaseID, "notionDatabaseID", "", "existing Notion database ID (optional, will create new if empty)")

	// Email flags
	flag.BoolVar(&cfg.Email.Notify, "sendEmail", false, "send a publish report via email")

	flag.Parse()

	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Gemini.Timeout = 120 * time.Second

	return cfg
}
