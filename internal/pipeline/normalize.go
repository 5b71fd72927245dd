// =============================================================================
// normalize.go - モデル出力の正規化
// =============================================================================
//
// このファイルは生成モデルの自由テキスト応答からJSONオブジェクトを取り出します。
// モデルは純粋なJSONを返す保証がないため、ここが信頼できない出力を吸収する
// 唯一のチョークポイントになります。以降のコード（fill.go）は常に
// map[string]any を前提にできます。
//
// =============================================================================
// 【抽出の4段階フォールバック】
// =============================================================================
//
// 優先度1: テキスト全体をそのままJSONとしてパース
//     ↓
// 優先度2: 最初の '{' から最後の '}' までの部分文字列をパース
//          （モデルが説明文やコードフェンスで包んでいる場合）
//     ↓
// 優先度3: 部分文字列に修復ルールを順に適用しながら再パース
//          - 全角引用符（“ ” ‘ ’）→ ASCII引用符
//          - '}' や ']' 直前の末尾カンマを除去
//     ↓
// 優先度4: すべて失敗したら空のマップを返す（エラーにはしない）
//
// 修復ルールは独立した純粋関数として定義し、個別にテストできるようにする。
// 「なんでも直す」巨大関数は作らない。
//
// =============================================================================
package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
)

// repairRule はJSON文字列に対する純粋なテキスト変換
type repairRule func(string) string

// repairRules は厳密パース失敗後に順番に試す修復ルール
var repairRules = []repairRule{
	normalizeQuotes,
	stripTrailingCommas,
}

// reTrailingComma は '}' または ']' の直前の末尾カンマにマッチする
var reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)

// normalizeQuotes は全角の引用符をASCIIの引用符に置き換える
//
// モデルが “smart quotes” を使ってJSONを書くことがあり、
// そのままではパースに失敗する。
func normalizeQuotes(s string) string {
	r := strings.NewReplacer(
		"“", `"`, // “
		"”", `"`, // ”
		"‘", "'", // ‘
		"’", "'", // ’
	)
	return r.Replace(s)
}

// stripTrailingCommas は閉じ括弧直前の末尾カンマを除去する
//
// 例: `{"a": 1,}` → `{"a": 1}`
func stripTrailingCommas(s string) string {
	return reTrailingComma.ReplaceAllString(s, "$1")
}

// parseJSONObject は文字列をJSONオブジェクトとしてパースする
//
// オブジェクト以外（配列・null・数値など）は失敗として扱う。
func parseJSONObject(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}
	if m == nil {
		return nil, false
	}
	return m, true
}

// ExtractJSON はモデルの応答テキストからJSONオブジェクトを抽出する
//
// 戻り値は常に非nilのマップで、この関数がエラーやpanicを返すことはない。
// 抽出に失敗した場合は空のマップを返し、フィールド単位のデフォルト
// （fill.go）に処理を委ねる。
func ExtractJSON(raw string) map[string]any {
	// 優先度1: テキスト全体をそのままパース
	if m, ok := parseJSONObject(raw); ok {
		return m
	}

	// 優先度2: オブジェクトらしき部分文字列を切り出してパース
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return map[string]any{}
	}
	sub := raw[start : end+1]
	if m, ok := parseJSONObject(sub); ok {
		return m
	}

	// 優先度3: 修復ルールを累積適用しながら再パース
	repaired := sub
	for _, rule := range repairRules {
		repaired = rule(repaired)
		if m, ok := parseJSONObject(repaired); ok {
			return m
		}
	}

	// 優先度4: 空のマップ（エラーにはしない）
	return map[string]any{}
}
