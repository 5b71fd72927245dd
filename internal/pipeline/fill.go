// =============================================================================
// fill.go - ワークシートのスキーマフィル
// =============================================================================
//
// このファイルはExtractJSONがパースした「欠けているかもしれない・型が違う
// かもしれない」マップを、完全に埋まったWorksheetに変換します。
//
// =============================================================================
// 【フィールド単位のフォールバック】
// =============================================================================
//
// ドキュメント全体をデフォルトに置き換えるのではなく、フィールドごとに
// 独立して判定する。モデルがタイトルだけ正しく返した場合、タイトルは
// モデルの値を使い、他のフィールドだけデフォルトに落ちる。
//
// 各フィールドの採用条件:
//   - 文字列:   string型で、トリム後に非空
//   - リスト:   空エントリを捨てた後に1件以上
//   - 真偽値:   JSONのtrue/false（文字列の"true"は不可）
//   - 正解キー: 大文字化して A/B/C のいずれか
//
// FillWorksheet(map[string]any{}, seed) は DefaultWorksheet(seed) と
// 完全に一致する。これがレンダラーに不正なレコードが渡らない保証になる。
//
// =============================================================================
package pipeline

import "strings"

const (
	maxStoryLines = 4 // お話の最大文数
	maxWords      = 5 // 単語カードの最大枚数

	// readAloudSeparator は音読テキストの文区切り（ポーズ位置）
	readAloudSeparator = " / "
)

// =============================================================================
// デフォルトドキュメント
// =============================================================================

// DefaultWorksheet はモデルが完全に失敗した場合でも公開できる固定の
// ワークシートを返す
//
// seed（その日の見出し）は保護者向けメモに埋め込まれる。デフォルトに
// 落ちた日でも、どのニュースの日だったかページから追跡できる。
func DefaultWorksheet(seed string) Worksheet {
	story := []string{
		"Look! A little star lives in space.",
		"It likes to fly far away.",
		"The star looks at other stars.",
		"Earth is safe and happy!",
	}

	note := "이야기를 천천히 읽고 단어 5개만 익히면 충분합니다."
	if seed != "" {
		note += " (오늘의 뉴스: " + seed + ")"
	}

	return Worksheet{
		Title:      "A Happy Star",
		ImageTopic: "cute star",
		Story:      story,
		Words: []WordEntry{
			{Word: "star", Translation: "별", Gloss: "a light in the sky"},
			{Word: "space", Translation: "우주", Gloss: "the big sky"},
			{Word: "fly", Translation: "날다", Gloss: "go in the air"},
			{Word: "look", Translation: "보다", Gloss: "see"},
			{Word: "Earth", Translation: "지구", Gloss: "our home"},
		},
		ReadAloud: strings.Join(story, readAloudSeparator),
		Quiz: QuizSet{
			TF: TFQuestion{
				Question: "The star lives on Earth.",
				Answer:   false,
			},
			MCQ: ChoiceQuestion{
				Question:  "What does the star like to do?",
				Choices:   ChoiceSet{A: "Sleep", B: "Fly", C: "Eat"},
				AnswerKey: "B",
			},
			Pic: ChoiceQuestion{
				Question:  "Where does the star live?",
				Choices:   ChoiceSet{A: "🏠", B: "🌳", C: "🚀"},
				AnswerKey: "C",
			},
		},
		ParentNote: note,
	}
}

// =============================================================================
// フィールド取り出しヘルパー
// =============================================================================
//
// map[string]any からの取り出しは「検証済みの値」か「不在」の二択にする。
// 型が違う・空・範囲外はすべて「不在」として扱い、呼び出し側が
// フィールド単位でデフォルトに置き換える。
//

// stringField は非空のトリム済み文字列を取り出す
func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// boolField は真偽値を取り出す（文字列の"true"などは不在扱い）
func boolField(m map[string]any, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// listField は非空のリストを取り出す
func listField(m map[string]any, key string) ([]any, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}
	return items, true
}

// mapField はネストしたオブジェクトを取り出す
func mapField(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	sub, ok := v.(map[string]any)
	if !ok || sub == nil {
		return nil, false
	}
	return sub, true
}

// =============================================================================
// フィールド別フィル
// =============================================================================

// fillStory はお話の文リストを検証する
//
// 空エントリを捨て、先頭4文に切り詰める。1文も残らなければデフォルト。
func fillStory(parsed map[string]any, def []string) []string {
	items, ok := listField(parsed, "story")
	if !ok {
		return def
	}

	out := make([]string, 0, maxStoryLines)
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxStoryLines {
			break
		}
	}

	if len(out) < 1 {
		return def
	}
	return out
}

// fillWords は単語カードを検証する
//
// Wordが空のエントリは捨て、残りを先頭5枚に切り詰める。
// Translation/Glossの欠落はエラーではなく空文字列になる。
func fillWords(parsed map[string]any, def []WordEntry) []WordEntry {
	items, ok := listField(parsed, "words")
	if !ok {
		return def
	}

	out := make([]WordEntry, 0, maxWords)
	for _, it := range items {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		word, ok := stringField(entry, "word")
		if !ok {
			continue
		}
		w := WordEntry{Word: word}
		if ko, ok := stringField(entry, "ko"); ok {
			w.Translation = ko
		}
		if en, ok := stringField(entry, "en"); ok {
			w.Gloss = en
		}
		out = append(out, w)
		if len(out) == maxWords {
			break
		}
	}

	if len(out) == 0 {
		return def
	}
	return out
}

// fillChoiceQuestion は選択式クイズ（三択・絵選び）を検証する
//
// 問題文・選択肢・正解キーはそれぞれ独立に判定する。正解キーが不正でも
// モデルの問題文と選択肢は保持される。
func fillChoiceQuestion(quiz map[string]any, key string, def ChoiceQuestion) ChoiceQuestion {
	out := def
	q, ok := mapField(quiz, key)
	if !ok {
		return out
	}

	if s, ok := stringField(q, "q"); ok {
		out.Question = s
	}

	// 選択肢はA/B/C全部そろって初めて採用（欠けた三択は出題できない）
	if cm, ok := mapField(q, "choices"); ok {
		a, aok := stringField(cm, "A")
		b, bok := stringField(cm, "B")
		c, cok := stringField(cm, "C")
		if aok && bok && cok {
			out.Choices = ChoiceSet{A: a, B: b, C: c}
		}
	}

	if k, ok := stringField(q, "answer"); ok {
		k = strings.ToUpper(k)
		if k == "A" || k == "B" || k == "C" {
			out.AnswerKey = k
		}
	}

	return out
}

// fillQuiz はクイズ3問を検証する
func fillQuiz(parsed map[string]any, def QuizSet) QuizSet {
	out := def
	quiz, ok := mapField(parsed, "quiz")
	if !ok {
		return out
	}

	if tf, ok := mapField(quiz, "tf"); ok {
		if s, ok := stringField(tf, "q"); ok {
			out.TF.Question = s
		}
		if b, ok := boolField(tf, "answer"); ok {
			out.TF.Answer = b
		}
	}

	out.MCQ = fillChoiceQuestion(quiz, "mcq", def.MCQ)
	out.Pic = fillChoiceQuestion(quiz, "pic", def.Pic)
	return out
}

// =============================================================================
// FillWorksheet - メイン関数
// =============================================================================

// FillWorksheet はパース済みマップを完全なWorksheetに変換する
//
// 常に成功し、エラーを返さない。parsedが空マップでも
// DefaultWorksheet(seed)と等しい有効なレコードを返す。
func FillWorksheet(parsed map[string]any, seed string) Worksheet {
	def := DefaultWorksheet(seed)
	w := Worksheet{}

	if s, ok := stringField(parsed, "title"); ok {
		w.Title = s
	} else {
		w.Title = def.Title
	}

	if s, ok := stringField(parsed, "image_topic"); ok {
		w.ImageTopic = s
	} else {
		w.ImageTopic = def.ImageTopic
	}

	w.Story = fillStory(parsed, def.Story)
	w.Words = fillWords(parsed, def.Words)
	w.Quiz = fillQuiz(parsed, def.Quiz)

	// 音読テキストがなければ確定後のお話から導出する。
	// レンダラーは常に非空のread_aloudを必要とする。
	if s, ok := stringField(parsed, "read_aloud"); ok {
		w.ReadAloud = s
	} else {
		w.ReadAloud = strings.Join(w.Story, readAloudSeparator)
	}

	if s, ok := stringField(parsed, "parent_note_ko"); ok {
		w.ParentNote = s
	} else {
		w.ParentNote = def.ParentNote
	}

	return w
}
