package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	store := NewArchiveStore(filepath.Join(t.TempDir(), "archive.json"))
	entries, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("Expected empty slice, got %v", entries)
	}
}

func TestLoadCorruptedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewArchiveStore(path).Load(); err == nil {
		t.Error("Expected error for corrupted archive")
	}
}

func TestUpsertPrepends(t *testing.T) {
	entries := []ArchiveEntry{
		{Date: "2026-08-25", File: "days/2026-08-25.html", Title: "Old"},
	}
	out := Upsert(entries, ArchiveEntry{Date: "2026-08-26", File: "days/2026-08-26.html", Title: "New"})

	if len(out) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(out))
	}
	if out[0].Date != "2026-08-26" || out[1].Date != "2026-08-25" {
		t.Errorf("Expected new entry first, got %v", out)
	}
	// 元のスライスは変更されない
	if entries[0].Date != "2026-08-25" {
		t.Error("Upsert mutated its input")
	}
}

func TestUpsertReplacesSameDate(t *testing.T) {
	entries := []ArchiveEntry{
		{Date: "2026-08-26", File: "days/2026-08-26.html", Title: "Morning Run"},
		{Date: "2026-08-25", File: "days/2026-08-25.html", Title: "Old"},
	}
	out := Upsert(entries, ArchiveEntry{Date: "2026-08-26", File: "days/2026-08-26.html", Title: "Evening Rerun"})

	if len(out) != 2 {
		t.Fatalf("Expected 2 entries after same-date upsert, got %d", len(out))
	}
	if out[0].Title != "Evening Rerun" {
		t.Errorf("Expected latest title to win, got %q", out[0].Title)
	}
}

func TestSaveLoadRoundTripIsByteStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	store := NewArchiveStore(path)

	entries := []ArchiveEntry{
		{Date: "2026-08-26", File: "days/2026-08-26.html", Title: "Fox Run"},
		{Date: "2026-08-25", File: "days/2026-08-25.html", Title: "A Happy Star"},
	}
	if err := store.Save(entries); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, entries) {
		t.Errorf("Load = %v, want %v", loaded, entries)
	}

	if err := store.Save(loaded); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Save(Load()) changed the file bytes")
	}
}

func TestSaveEndsWithNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	store := NewArchiveStore(path)
	if err := store.Save([]ArchiveEntry{{Date: "2026-08-26", File: "days/2026-08-26.html", Title: "T"}}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 || b[len(b)-1] != '\n' {
		t.Error("Expected trailing newline in archive file")
	}
}

func TestRebuildFromDayPages(t *testing.T) {
	daysDir := t.TempDir()
	site := SiteConfig{Title: "Daily English", Timezone: "Asia/Seoul", TTSRate: 0.8}

	pages := map[string]Worksheet{
		"2026-08-25": func() Worksheet { w := DefaultWorksheet(""); w.Title = "A Happy Star"; return w }(),
		"2026-08-26": func() Worksheet { w := DefaultWorksheet(""); w.Title = "Fox Run"; return w }(),
	}
	for date, w := range pages {
		html := RenderDayPage(site, date, Headline{Title: "seed"}, w)
		if err := os.WriteFile(filepath.Join(daysDir, date+".html"), []byte(html), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// 日付名でないファイルはスキップされる
	if err := os.WriteFile(filepath.Join(daysDir, "notes.html"), []byte("<h1>Notes</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := RebuildFromDayPages(daysDir)
	if err != nil {
		t.Fatal(err)
	}
	want := []ArchiveEntry{
		{Date: "2026-08-26", File: "days/2026-08-26.html", Title: "Fox Run"},
		{Date: "2026-08-25", File: "days/2026-08-25.html", Title: "A Happy Star"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("RebuildFromDayPages = %v, want %v", entries, want)
	}
}
