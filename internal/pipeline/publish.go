// =============================================================================
// publish.go - 1日分の公開処理
// =============================================================================
//
// このファイルはパイプライン全体を1回分つなぐオーケストレーションです。
//
// 【処理フロー】
//
//   ┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//   │  1. 見出し  │ -> │  2. 生成    │ -> │  3. 正規化  │
//   │  RSS取得    │    │  Gemini API │    │  JSON抽出   │
//   └─────────────┘    └─────────────┘    └─────────────┘
//          │                  │                  │
//          v                  v                  v
//   先頭エントリ1件     自由テキスト応答    map[string]any
//
//   ┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//   │  4. フィル  │ -> │  5. 描画    │ -> │  6. 履歴    │
//   │  スキーマ化 │    │  HTML書き出し│    │  upsert保存 │
//   └─────────────┘    └─────────────┘    └─────────────┘
//
// 【障害時の挙動】
//   - 見出し取得失敗:       実行ごと失敗（公開するものがない）
//   - Gemini失敗・出力破損:  デフォルトワークシートで公開を続行
//   - archive.json破損:     実行ごと失敗（履歴は黙って捨てない）
//
// モデルがどれだけ壊れた応答を返しても、毎回必ず有効なページが公開される。
// 最悪ケースは「内容が汎用的なだけの正しいページ」で、壊れたページや
// 欠けた日は発生しない。
//
// =============================================================================
package pipeline

import (
	"fmt"
	"path/filepath"
	"time"
)

// PublishResult は1回の公開の結果を保持する
type PublishResult struct {
	Date         string `json:"date"`         // 公開日（YYYY-MM-DD）
	Title        string `json:"title"`        // 公開したワークシートのタイトル
	Headline     string `json:"headline"`     // 元になったニュース見出し
	PagePath     string `json:"pagePath"`     // 書き出した日ページのパス
	UsedFallback bool   `json:"usedFallback"` // モデル出力が使えずデフォルトに落ちたか
	ArchiveSize  int    `json:"archiveSize"`  // 保存後のアーカイブのエントリ数
}

// Today は指定タイムゾーンでの今日の日付（YYYY-MM-DD）を返す
//
// タイムゾーン名が解決できない場合はUTCにフォールバックする。
func Today(tzName string) string {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		warnf("unknown timezone %q, falling back to UTC", tzName)
		loc = time.UTC
	}
	return time.Now().In(loc).Format("2006-01-02")
}

// RunPublish は1日分のワークシートを生成して公開する
func RunPublish(cfg *PipelineConfig) (*PublishResult, error) {
	date := cfg.Output.Date
	if date == "" {
		date = Today(cfg.Site.Timezone)
	}

	// --- 1) 見出し取得 ---
	headlineCfg := DefaultHeadlineConfig()
	h, err := FetchTopHeadline(cfg.Feed.URL, headlineCfg)
	if err != nil {
		return nil, fmt.Errorf("fetching headline: %w", err)
	}
	infof("headline: %s", h.Title)

	// --- 2) ワークシートの用意 ---
	var w Worksheet
	usedFallback := false

	switch {
	case cfg.Feed.WorksheetFile != "":
		// モデルを呼ばずファイルから読む（レンダリング確認用）
		var parsed map[string]any
		if err := readJSONFile(cfg.Feed.WorksheetFile, &parsed); err != nil {
			return nil, fmt.Errorf("reading worksheet file: %w", err)
		}
		w = FillWorksheet(parsed, h.Title)

	default:
		if cfg.Feed.FetchExcerpt {
			h.Excerpt = FetchArticleExcerpt(h.URL, headlineCfg)
		}

		prompt := BuildWorksheetPrompt(h.Title, h.Excerpt)
		parsed := map[string]any{}

		raw, err := GenerateWorksheetText(prompt, cfg.Gemini)
		if err != nil {
			// モデル呼び出しの失敗は公開を止めない
			warnf("gemini: %v (publishing the default worksheet)", err)
			usedFallback = true
		} else {
			parsed = ExtractJSON(raw)
			if len(parsed) == 0 {
				warnf("model response contained no parseable JSON object")
				usedFallback = true
			}
		}

		w = FillWorksheet(parsed, h.Title)
	}

	if cfg.Output.SaveWorksheet != "" {
		if err := writeJSONFile(cfg.Output.SaveWorksheet, w); err != nil {
			warnf("saving worksheet JSON: %v", err)
		}
	}

	// --- 3) 履歴の読み込みとupsert ---
	store := NewArchiveStore(filepath.Join(cfg.Output.DocsDir, ArchiveFileName))
	entries, err := store.Load()
	if err != nil {
		// 履歴の破損は致命的。自動修復はしない。
		return nil, err
	}
	entries = Upsert(entries, ArchiveEntry{
		Date:  date,
		File:  DayFileName(date),
		Title: w.Title,
	})

	// --- 4) ページ書き出し ---
	if err := WriteSite(cfg.Output.DocsDir, cfg.Site, date, h, w, entries); err != nil {
		return nil, err
	}

	// --- 5) 履歴の保存（全体のアトミック書き換え） ---
	if err := store.Save(entries); err != nil {
		return nil, err
	}

	infof("published %s (%s)", date, w.Title)

	return &PublishResult{
		Date:         date,
		Title:        w.Title,
		Headline:     h.Title,
		PagePath:     filepath.Join(cfg.Output.DocsDir, DayFileName(date)),
		UsedFallback: usedFallback,
		ArchiveSize:  len(entries),
	}, nil
}

// RunRebuildArchive はdays/*.htmlからarchive.jsonを作り直す
//
// -rebuildArchiveモードの本体。破損したarchive.jsonの復旧手段。
func RunRebuildArchive(cfg *PipelineConfig) error {
	daysDir := filepath.Join(cfg.Output.DocsDir, "days")
	entries, err := RebuildFromDayPages(daysDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no day pages found under %s", daysDir)
	}

	store := NewArchiveStore(filepath.Join(cfg.Output.DocsDir, ArchiveFileName))
	if err := store.Save(entries); err != nil {
		return err
	}

	infof("rebuilt %s with %d entries", store.Path, len(entries))
	return nil
}
