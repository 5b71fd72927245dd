// =============================================================================
// utils.go - ユーティリティ関数
// =============================================================================
//
// このファイルはシステム全体で使用する汎用的なヘルパー関数を提供します。
//
// 【このファイルで提供する機能】
//   - 文字列操作: 空白正規化、切り詰め
//   - JSON操作: ファイル読み書き
//   - ログ出力: 警告・情報メッセージの出力
//
// 【初心者向けポイント】
//   - Goでは小文字始まりの関数はパッケージ内でのみ使用可能（プライベート）
//   - `...any`は可変長引数（任意の数の引数を受け取れる）
//
// =============================================================================
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// -----------------------------------------------------------------------------
// 文字列操作関数
// -----------------------------------------------------------------------------

// normalizeWhitespace は文字列内の連続する空白を単一スペースに正規化する
//
// 使用例:
//
//	normalizeWhitespace("  hello   world  ")  // "hello world"
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateString は文字列を指定した長さに切り詰める
//
// maxLen文字を超える場合、末尾に"..."を付けて切り詰める。
// 韓国語などのマルチバイト文字も正しく処理する（runeを使用）。
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// -----------------------------------------------------------------------------
// JSON操作関数
// -----------------------------------------------------------------------------

// writeJSONFile は任意のデータをJSON形式でファイルに保存する
//
// 【ファイル権限】0o644 = 所有者は読み書き可、他は読み取りのみ
func writeJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// readJSONFile はJSONファイルを読み込んで指定した型に変換する
//
// 使用例:
//
//	var w Worksheet
//	err := readJSONFile("worksheet.json", &w)
func readJSONFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// -----------------------------------------------------------------------------
// ログ出力関数
// -----------------------------------------------------------------------------

// warnf は警告メッセージを標準エラー出力に書き出す
//
// 【なぜ標準エラー出力を使うか】
//
//	標準出力（stdout）はパイプラインでデータを渡すために使用するため、
//	ログメッセージは標準エラー出力（stderr）に出力する
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "WARN: "+format+"\n", args...)
}

// infof は情報メッセージを標準エラー出力に書き出す
func infof(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
}

// errorf はエラーメッセージを標準エラー出力に書き出す
//
// 【注意】この関数はログ出力のみでプログラムは終了しない
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
}
