// =============================================================================
// gemini.go - Gemini generateContent 統合モジュール
// =============================================================================
//
// このファイルはGemini API（generativelanguage.googleapis.com）を呼び出して、
// 見出しからワークシートの元になるテキストを生成します。
//
// =============================================================================
// 【重要な実装の詳細】
// =============================================================================
//
// 1. モデルには「JSONのみを返せ」と指示するが、守られる保証はない
//    → 説明文やコードフェンスに包まれた応答が普通に返ってくる
//    → この層ではテキストをそのまま返し、抽出はnormalize.goに任せる
//
// 2. candidates が空で返ることがある（セーフティブロックなど）
//    → この場合はエラーとして返し、呼び出し側がデフォルト
//      ワークシートで公開を続行する
//
// 3. ネットワーク・認証エラーとモデル出力の破損は別物
//    → 前者はこの関数のエラー、後者はnormalize.go/fill.goが吸収
//
// =============================================================================
// 【デバッグ方法】
// =============================================================================
//
// 環境変数でデバッグ情報を出力:
//   DEBUG_GEMINI=1      - 応答テキストの先頭を出力
//   DEBUG_GEMINI_FULL=1 - 完全なレスポンスJSONを出力
//
// =============================================================================
package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// defaultGeminiEndpoint はGemini APIのベースURL
const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// =============================================================================
// Gemini API リクエスト/レスポンス構造体
// =============================================================================

// geminiRequest は generateContent のリクエストボディ
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// geminiContent は役割付きのメッセージ
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiPart はメッセージの1パート（テキストのみ使用）
type geminiPart struct {
	Text string `json:"text"`
}

// geminiGenerationConfig は生成パラメータ
type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse は generateContent のレスポンス
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// geminiCandidate は候補1件
//
// 【注意】セーフティブロック時はContentが空のままFinishReasonだけ入る
type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

// =============================================================================
// プロンプト構築
// =============================================================================

// BuildWorksheetPrompt は見出しからワークシート生成プロンプトを組み立てる
//
// スキーマのキー名・型・文数の制約をプロンプトで明示する。excerptは
// 取得できた場合だけ付加する（空なら見出しのみ）。
func BuildWorksheetPrompt(title, excerpt string) string {
	var b strings.Builder
	b.WriteString("Make an easy English worksheet for a 7-year-old about this news: ")
	b.WriteString(title)
	b.WriteString("\n")
	if excerpt != "" {
		b.WriteString("Article summary: ")
		b.WriteString(excerpt)
		b.WriteString("\n")
	}
	b.WriteString(`
Return ONLY one JSON object with exactly these keys:
  "title":       short, happy title (string)
  "image_topic": 1-3 simple words for an illustration (string)
  "story":       3 or 4 very short sentences a 7-year-old can read (array of strings)
  "words":       5 objects {"word": english word, "ko": Korean translation, "en": very simple English meaning}
  "read_aloud":  the story sentences joined with " / " pause marks (string)
  "quiz": {
    "tf":  {"q": true/false question about the story, "answer": true or false (JSON boolean)},
    "mcq": {"q": question, "choices": {"A": ..., "B": ..., "C": ...}, "answer": "A"|"B"|"C"},
    "pic": {"q": question, "choices": {"A": emoji, "B": emoji, "C": emoji}, "answer": "A"|"B"|"C"}
  }
  "parent_note_ko": one short note for the parent in Korean (string)

Keep everything kind, safe and cheerful. No scary or sad content.
Return ONLY the JSON. No explanations, no code fences.`)
	return b.String()
}

// =============================================================================
// メイン関数: Gemini呼び出し
// =============================================================================

// GenerateWorksheetText はGemini APIを呼び出して応答テキストを返す
//
// 【処理の流れ】
//  1. APIキーの確認
//  2. リクエストボディの構築
//  3. HTTPリクエストの送信
//  4. レスポンスのパースとテキスト抽出
//
// 戻り値のテキストは未検証の自由テキスト。JSONの抽出と検証は
// ExtractJSON / FillWorksheet が行う。
func GenerateWorksheetText(prompt string, cfg GeminiConfig) (string, error) {
	if cfg.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	reqURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		endpoint, cfg.Model, url.QueryEscape(cfg.APIKey))

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding gemini request: %w", err)
	}

	req, err := http.NewRequest("POST", reqURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini error: %s\n%s", resp.Status, string(bodyBytes))
	}

	if os.Getenv("DEBUG_GEMINI_FULL") != "" {
		fmt.Fprintf(os.Stderr, "[DEBUG] Full Gemini response:\n%s\n", string(bodyBytes))
	}

	var r geminiResponse
	if err := json.Unmarshal(bodyBytes, &r); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if len(r.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates (blocked or empty response)")
	}

	// 候補1件目の全パートを連結
	var text strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", fmt.Errorf("gemini candidate has no text (finishReason=%s)", r.Candidates[0].FinishReason)
	}

	if os.Getenv("DEBUG_GEMINI") != "" {
		fmt.Fprintf(os.Stderr, "[DEBUG] Gemini text (%d chars): %s\n",
			len(out), truncateString(out, 200))
	}

	return out, nil
}
