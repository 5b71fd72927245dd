// =============================================================================
// archive.go - 公開履歴アーカイブ
// =============================================================================
//
// このファイルはdocs/archive.jsonの読み書きを行います。
//
// 【状態遷移】
//   Load → Upsert* → Save
//
// 1回の実行で読み込みは1回、書き込みは1回（全体の書き換え）。追記や
// 部分更新はしない。外部スケジューラが同時実行を1つに制限する前提なので
// ロックは不要。
//
// 【障害時の方針】
//   - モデル出力の破損: normalize.go/fill.goが吸収する（寛容）
//   - archive.jsonの破損: Loadでエラー（厳格）
//
// アーカイブは公開履歴そのものなので、黙って捨てて作り直すことはしない。
// 破損時はオペレーターがファイルを修正するか、-rebuildArchiveで
// 公開済みページから再構築する。
//
// =============================================================================
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ArchiveFileName はdocsディレクトリ内のアーカイブファイル名
const ArchiveFileName = "archive.json"

// DayFileName は日付からその日のページの相対パスを返す
//
// パスは日付から機械的に決まる（days/2026-08-26.html）。
func DayFileName(date string) string {
	return "days/" + date + ".html"
}

// ArchiveStore はアーカイブファイルの読み書きを担当する
type ArchiveStore struct {
	Path string // archive.jsonのパス
}

// NewArchiveStore は新しいArchiveStoreを作成する
func NewArchiveStore(path string) *ArchiveStore {
	return &ArchiveStore{Path: path}
}

// Load は永続化されたアーカイブを読み込む
//
// ファイルがまだ存在しない場合は空のスライスを返す（エラーではない）。
// ファイルが壊れている場合はエラーを返し、自動修復は試みない。
func (s *ArchiveStore) Load() ([]ArchiveEntry, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []ArchiveEntry{}, nil
		}
		return nil, fmt.Errorf("reading archive %s: %w", s.Path, err)
	}

	var entries []ArchiveEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("archive %s is corrupted: %w (fix the file manually or run with -rebuildArchive)", s.Path, err)
	}
	return entries, nil
}

// Upsert は同じ日付の既存エントリを取り除き、新しいエントリを先頭に挿入する
//
// 同じ日付で2回公開しても履歴には1エントリしか残らず、後勝ちになる。
// 元のスライスは変更しない。
func Upsert(entries []ArchiveEntry, entry ArchiveEntry) []ArchiveEntry {
	out := make([]ArchiveEntry, 0, len(entries)+1)
	out = append(out, entry)
	for _, e := range entries {
		if e.Date == entry.Date {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Save はアーカイブ全体をアトミックに書き換える
//
// 一時ファイルに書いてからリネームするため、書き込み途中でプロセスが
// 落ちても既存のarchive.jsonは壊れない。2スペースインデント＋末尾改行の
// フォーマットは固定で、Save(Load())はバイト単位で同一のファイルを作る。
func (s *ArchiveStore) Save(entries []ArchiveEntry) error {
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}
	b = append(b, '\n')

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("replacing archive: %w", err)
	}
	return nil
}

// =============================================================================
// アーカイブ再構築（オペレーター向けツール）
// =============================================================================

// RebuildFromDayPages は公開済みのdays/*.htmlからアーカイブを再構築する
//
// archive.jsonが壊れた場合の復旧手段。ファイル名から日付を、ページの
// <h1>からタイトルを取り出し、日付降順のエントリ列を組み立てる。
// 日付として解釈できないファイル名はスキップする。
func RebuildFromDayPages(daysDir string) ([]ArchiveEntry, error) {
	files, err := filepath.Glob(filepath.Join(daysDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("listing day pages: %w", err)
	}

	entries := make([]ArchiveEntry, 0, len(files))
	for _, f := range files {
		date := strings.TrimSuffix(filepath.Base(f), ".html")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			warnf("rebuild: skipping %s (not a date-named page)", f)
			continue
		}

		title, err := extractDayPageTitle(f)
		if err != nil {
			warnf("rebuild: skipping %s: %v", f, err)
			continue
		}

		entries = append(entries, ArchiveEntry{
			Date:  date,
			File:  DayFileName(date),
			Title: title,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	return entries, nil
}

// extractDayPageTitle は日ページの<h1>からワークシートのタイトルを取り出す
func extractDayPageTitle(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return "", fmt.Errorf("no <h1> title found")
	}
	return title, nil
}
