// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// このファイルはDaily Englishシステム全体で使用するデータ構造（型）を定義します。
//
// 【このファイルで定義している型】
//   - Headline:     RSSフィードから取得したニュース見出し
//   - Worksheet:    1日分のワークシート（検証済みデータ）
//   - WordEntry:    単語カード1枚分
//   - QuizSet:      3種類のクイズ（○× / 三択 / 絵選び）
//   - ArchiveEntry: 公開履歴（archive.json）の1エントリ
//
// 【初心者向けポイント】
//   - Go言語では`type 型名 struct { ... }`で構造体（複数のデータをまとめた型）を定義
//   - `json:"フィールド名"`はJSONに変換する際のキー名を指定するタグ
//   - Worksheetのjsonタグはモデルに指示するスキーマのキー名と一致させている
//     （story, words, read_aloud, quiz, parent_note_ko）
//
// =============================================================================
package pipeline

// -----------------------------------------------------------------------------
// Headline - ニュース見出し
// -----------------------------------------------------------------------------
//
// Google NewsなどのRSSフィードの先頭エントリを表します。
// この見出しを元にプロンプトを組み立て、ワークシートを生成します。
//
type Headline struct {
	Source      string `json:"source"`                // フィードのタイトル
	Title       string `json:"title"`                 // 記事タイトル（プロンプトの元になる重要なフィールド）
	URL         string `json:"url"`                   // 記事URL
	PublishedAt string `json:"publishedAt,omitempty"` // 公開日時（RFC3339形式）
	Excerpt     string `json:"excerpt,omitempty"`     // 記事本文の抜粋（プロンプト補強用、取得失敗時は空）
}

// -----------------------------------------------------------------------------
// Worksheet - 1日分のワークシート
// -----------------------------------------------------------------------------
//
// モデル出力を正規化・検証した後の、レンダラーに渡せる完全なレコードです。
//
// 【不変条件】
//   - FillWorksheet を通過した後は全フィールドが有効値を持つ
//   - 各フィールドは独立にデフォルト値へフォールバックする
//     （1フィールドが壊れていても他のフィールドのモデル出力は保持される）
//
type Worksheet struct {
	Title      string      `json:"title"`          // ワークシートのタイトル
	ImageTopic string      `json:"image_topic"`    // 挿絵の検索トピック（拡張フィールド）
	Story      []string    `json:"story"`          // 3〜4文の短いお話
	Words      []WordEntry `json:"words"`          // 単語カード（最大5枚）
	ReadAloud  string      `json:"read_aloud"`     // 音読用テキスト（" / "区切り）
	Quiz       QuizSet     `json:"quiz"`           // クイズ3問
	ParentNote string      `json:"parent_note_ko"` // 保護者向けメモ（韓国語）
}

// WordEntry は単語カード1枚分
//
// Word が空のエントリはモデル出力の時点で捨てられる（fill.go参照）。
type WordEntry struct {
	Word        string `json:"word"` // 英単語
	Translation string `json:"ko"`   // 韓国語訳（欠落時は空文字列）
	Gloss       string `json:"en"`   // やさしい英語の語釈（欠落時は空文字列）
}

// -----------------------------------------------------------------------------
// QuizSet - クイズ3問
// -----------------------------------------------------------------------------
//
// 【不変条件】
//   - MCQ.AnswerKey / Pic.AnswerKey は必ず "A","B","C" のいずれか
//   - TF.Answer は必ず真偽値（モデルが文字列を返した場合はデフォルトに落ちる）
//
type QuizSet struct {
	TF  TFQuestion     `json:"tf"`  // ○×クイズ
	MCQ ChoiceQuestion `json:"mcq"` // 三択クイズ
	Pic ChoiceQuestion `json:"pic"` // 絵文字選びクイズ
}

// TFQuestion は○×クイズ
type TFQuestion struct {
	Question string `json:"q"`      // 問題文
	Answer   bool   `json:"answer"` // 正解
}

// ChoiceQuestion は選択式クイズ（三択・絵選び共通）
type ChoiceQuestion struct {
	Question  string    `json:"q"`       // 問題文
	Choices   ChoiceSet `json:"choices"` // 選択肢A/B/C
	AnswerKey string    `json:"answer"`  // 正解のキー（"A"|"B"|"C"）
}

// ChoiceSet は選択肢3つ（絵選びクイズでは各値が絵文字）
type ChoiceSet struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
}

// -----------------------------------------------------------------------------
// ArchiveEntry - 公開履歴の1エントリ
// -----------------------------------------------------------------------------
//
// docs/archive.json に保存される公開済みの日の記録です。
//
// 【不変条件】
//   - Date はユニーク（同じ日付の再公開は既存エントリを置き換える）
//   - 配列は日付降順（最新が先頭）
//   - File は Date から機械的に決まる（days/{date}.html）
//
type ArchiveEntry struct {
	Date  string `json:"date"`  // 公開日（YYYY-MM-DD）
	File  string `json:"file"`  // docsディレクトリからの相対パス
	Title string `json:"title"` // その日のワークシートのタイトル
}
