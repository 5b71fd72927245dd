// =============================================================================
// render.go - 静的ページのレンダリング
// =============================================================================
//
// このファイルは検証済みのWorksheetから静的HTMLを組み立てます。
//
// 【生成するページ】
//   - docs/days/{date}.html - その日のワークシート
//   - docs/index.html       - アーカイブ一覧（最新が先頭）
//   - docs/latest.html      - 最新の日へのリダイレクト
//   - docs/style.css        - 初回のみ（既存ファイルは上書きしない）
//
// レンダラーはWorksheetの純関数で、FillWorksheetを通過したレコードだけを
// 受け取る前提。ここでは値の検証はせずエスケープだけ行う。
//
// =============================================================================
package pipeline

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// esc はHTMLエスケープの短縮名（テンプレート内で多用するため）
func esc(s string) string {
	return html.EscapeString(s)
}

// imageURLs は挿絵候補のURLリストを返す
//
// 先頭から順にクライアント側でロードを試し、失敗したら次にフォールバック
// する（最後のplaceholdは必ず表示できる）。
func imageURLs(topic string) []string {
	seed := url.QueryEscape(topic)
	return []string{
		"https://picsum.photos/seed/" + seed + "/900/600",
		"https://source.unsplash.com/900x600/?" + seed + ",kids,illustration",
		"https://placehold.co/900x600/png?text=Daily+English+News",
	}
}

// RenderDayPage は1日分のワークシートページを組み立てる
func RenderDayPage(site SiteConfig, date string, h Headline, w Worksheet) string {
	var b strings.Builder

	// --- お話と文ごとの読み上げボタン ---
	storyHTML := make([]string, 0, len(w.Story))
	for _, s := range w.Story {
		storyHTML = append(storyHTML, esc(s))
	}
	var sentenceBtns strings.Builder
	for i, s := range w.Story {
		fmt.Fprintf(&sentenceBtns, `<button class="btn small" data-say="%s">🔊 문장%d</button>`, esc(s), i+1)
	}

	// --- 単語カード ---
	var wordCards strings.Builder
	for _, wd := range w.Words {
		fmt.Fprintf(&wordCards, `<div class="word"><b>%s</b><span>%s</span><small>%s</small></div>`,
			esc(wd.Word), esc(wd.Translation), esc(wd.Gloss))
	}

	// --- 挿絵候補（クライアント側フォールバック用のJSON配列） ---
	imgs, _ := json.Marshal(imageURLs(w.ImageTopic))

	// 読み上げテキストはモデル由来なので、<script>内に埋め込む値は
	// JSONエンコードを通す（"</script>"を含んでいてもスクリプトが壊れない）
	readAloudJS, _ := json.Marshal(w.ReadAloud)

	// --- ヘッダー ---
	fmt.Fprintf(&b, `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="../style.css">
</head>
<body>

<h1>%s</h1>
<p class="date">%s</p>
`, esc(site.Title), esc(w.Title), esc(date))

	// --- 出典（見出し元の記事へのリンク） ---
	if h.URL != "" {
		fmt.Fprintf(&b, `<p class="src">News: <a href="%s">%s</a></p>
`, esc(h.URL), esc(h.Title))
	}

	// --- 本文 ---
	fmt.Fprintf(&b, `
<div id="imgBox"><img id="hero" alt=""></div>

<div id="story">%s</div>
<div>%s</div>

<button id="readAll">🔊 전체 읽기</button>
<button id="doneBtn">🏁 달성</button>

<h2>WORDS</h2>
<div class="words">%s</div>

<h2>QUIZ</h2>

<p>%s</p>
<button data-q="tf" data-a="true">True</button>
<button data-q="tf" data-a="false">False</button>
<div id="fb_tf"></div>

<p>%s</p>
<button data-q="mcq" data-a="A">A: %s</button>
<button data-q="mcq" data-a="B">B: %s</button>
<button data-q="mcq" data-a="C">C: %s</button>
<div id="fb_mcq"></div>

<p>%s</p>
<button data-q="pic" data-a="A">%s</button>
<button data-q="pic" data-a="B">%s</button>
<button data-q="pic" data-a="C">%s</button>
<div id="fb_pic"></div>

<p class="note">%s</p>
`,
		strings.Join(storyHTML, "<br>"),
		sentenceBtns.String(),
		wordCards.String(),
		esc(w.Quiz.TF.Question),
		esc(w.Quiz.MCQ.Question),
		esc(w.Quiz.MCQ.Choices.A), esc(w.Quiz.MCQ.Choices.B), esc(w.Quiz.MCQ.Choices.C),
		esc(w.Quiz.Pic.Question),
		esc(w.Quiz.Pic.Choices.A), esc(w.Quiz.Pic.Choices.B), esc(w.Quiz.Pic.Choices.C),
		esc(w.ParentNote))

	// --- スクリプト（読み上げ・達成トグル・クイズ判定・挿絵フォールバック） ---
	// クイズは不正解でも答えを見せず、もう一度挑戦させる。
	fmt.Fprintf(&b, `
<script>
const RATE=%g;
const DONE_KEY="done_%s";
const answers={tf:%t,mcq:%q,pic:%q};

let imgs=%s,i=0;
const img=document.getElementById("hero");
function loadImg(){ if(i<imgs.length) img.src=imgs[i++]; }
img.onerror=loadImg; loadImg();

function speak(t){
  let u=new SpeechSynthesisUtterance(t);
  u.rate=RATE; speechSynthesis.cancel(); speechSynthesis.speak(u);
}

document.getElementById("readAll").onclick=()=>speak(%s);
document.querySelectorAll("[data-say]").forEach(b=>b.onclick=()=>speak(b.dataset.say));

const doneBtn=document.getElementById("doneBtn");
function refreshDone(){ doneBtn.textContent=localStorage.getItem(DONE_KEY)?"✅ 완료":"🏁 달성"; }
doneBtn.onclick=()=>{ localStorage.getItem(DONE_KEY)?localStorage.removeItem(DONE_KEY):localStorage.setItem(DONE_KEY,1); refreshDone(); };
refreshDone();

document.querySelectorAll("[data-q]").forEach(b=>b.onclick=()=>{
  let q=b.dataset.q, pick=b.dataset.a;
  if(pick==String(answers[q])){ document.getElementById("fb_"+q).innerText="✅ Great!"; }
  else{ document.getElementById("fb_"+q).innerText="❌ Try again!"; }
});
</script>

</body>
</html>
`,
		site.TTSRate,
		date,
		w.Quiz.TF.Answer, w.Quiz.MCQ.AnswerKey, w.Quiz.Pic.AnswerKey,
		string(imgs),
		string(readAloudJS))

	return b.String()
}

// RenderIndexPage はアーカイブ一覧ページを組み立てる
//
// entriesは日付降順を前提とする（アーカイブの不変条件）。
func RenderIndexPage(site SiteConfig, entries []ArchiveEntry) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="style.css">
</head>
<body>

<h1>%s</h1>
<p><a href="latest.html">📖 오늘의 이야기</a></p>

<ul class="archive">
`, esc(site.Title), esc(site.Title))

	for _, e := range entries {
		fmt.Fprintf(&b, `<li><a href="%s">%s — %s</a></li>
`, esc(e.File), esc(e.Date), esc(e.Title))
	}

	b.WriteString(`</ul>

</body>
</html>
`)
	return b.String()
}

// RenderLatestRedirect は最新の日ページへのリダイレクトページを組み立てる
func RenderLatestRedirect(entry ArchiveEntry) string {
	return fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0; url=%s">
</head>
<body>
<a href="%s">%s</a>
</body>
</html>
`, esc(entry.File), esc(entry.File), esc(entry.Title))
}

// defaultStyleCSS は初回公開時に書き出すスタイルシート
const defaultStyleCSS = `body{font-family:sans-serif;max-width:720px;margin:0 auto;padding:16px;background:#fffdf5;color:#333;}
h1{color:#ff8c42;}
h2{border-bottom:3px solid #ffd166;padding-bottom:4px;}
#imgBox img{width:100%;border-radius:12px;}
#story{font-size:1.4em;line-height:1.9;margin:12px 0;}
button{font-size:1em;margin:4px;padding:8px 14px;border:none;border-radius:10px;background:#ffd166;cursor:pointer;}
button:active{background:#ff8c42;}
.words{display:flex;flex-wrap:wrap;gap:8px;}
.word{background:#e0f7fa;border-radius:10px;padding:10px;min-width:100px;text-align:center;}
.word b{display:block;font-size:1.2em;}
.word span{display:block;}
.word small{color:#777;}
.archive{list-style:none;padding:0;}
.archive li{margin:6px 0;}
.date,.src,.note{color:#777;}
`

// WriteSite は1回の公開で必要なファイル一式を書き出す
//
// 日ページ・アーカイブ一覧・最新リダイレクトを書き、style.cssが
// なければデフォルトを作る。archive.jsonの保存は呼び出し側
// （ArchiveStore.Save）が行う。
func WriteSite(docsDir string, site SiteConfig, date string, h Headline, w Worksheet, entries []ArchiveEntry) error {
	daysDir := filepath.Join(docsDir, "days")
	if err := os.MkdirAll(daysDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", daysDir, err)
	}

	dayPath := filepath.Join(daysDir, date+".html")
	if err := os.WriteFile(dayPath, []byte(RenderDayPage(site, date, h, w)), 0o644); err != nil {
		return fmt.Errorf("writing day page: %w", err)
	}

	indexPath := filepath.Join(docsDir, "index.html")
	if err := os.WriteFile(indexPath, []byte(RenderIndexPage(site, entries)), 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	if len(entries) > 0 {
		latestPath := filepath.Join(docsDir, "latest.html")
		if err := os.WriteFile(latestPath, []byte(RenderLatestRedirect(entries[0])), 0o644); err != nil {
			return fmt.Errorf("writing latest redirect: %w", err)
		}
	}

	cssPath := filepath.Join(docsDir, "style.css")
	if _, err := os.Stat(cssPath); os.IsNotExist(err) {
		if err := os.WriteFile(cssPath, []byte(defaultStyleCSS), 0o644); err != nil {
			return fmt.Errorf("writing stylesheet: %w", err)
		}
	}

	return nil
}
