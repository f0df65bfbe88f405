package tui

import (
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/pictoword/internal/model"
	"github.com/verte-zerg/pictoword/internal/selection"
)

var (
	cat   = model.WordEntry{Slot: model.Subject, Text: "고양이", TextAlt: "cat"}
	pizza = model.WordEntry{Slot: model.Object, Text: "피자", TextAlt: "pizza"}
)

func TestBuildSentenceWordsHighlightsCurrentSlot(t *testing.T) {
	sel := selection.New()
	if err := sel.Select(cat); err != nil {
		t.Fatalf("select: %v", err)
	}

	words := buildSentenceWords(sel, false)
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[0].s != filledStyle.Render("고양이") || words[0].width != 6 {
		t.Fatalf("expected filled subject, got %q width %d", words[0].s, words[0].width)
	}
	if words[1].s != currentWordStyle.Underline(true).Render(selection.MissingWord) {
		t.Fatalf("expected object slot to be current")
	}
	if words[2].s != pendingStyle.Render(selection.MissingWord) {
		t.Fatalf("expected verb slot to be pending")
	}
}

func TestBuildSentenceWordsSecondaryOrder(t *testing.T) {
	sel := selection.New()
	if err := sel.Select(cat); err != nil {
		t.Fatalf("select: %v", err)
	}

	words := buildSentenceWords(sel, true)
	if words[0].s != filledStyle.Render("cat") {
		t.Fatalf("expected secondary subject text")
	}
	if words[1].s != pendingStyle.Render(selection.MissingWord) {
		t.Fatalf("expected verb second and pending")
	}
	if words[2].s != currentWordStyle.Underline(true).Render(selection.MissingWord) {
		t.Fatalf("expected object last and current")
	}
}

func TestWrapStyledWords(t *testing.T) {
	words := []styledWord{{s: "aaa", width: 3}, {s: "bbb", width: 3}, {s: "ccc", width: 3}}

	if got := wrapStyledWords(words, 7); got != "aaa bbb\nccc" {
		t.Fatalf("unexpected wrap %q", got)
	}
	if got := wrapStyledWords(words, 2); got != "aaa\nbbb\nccc" {
		t.Fatalf("unexpected narrow wrap %q", got)
	}
	if got := wrapStyledWords(words, 0); got != "aaa bbb ccc" {
		t.Fatalf("unexpected unwrapped output %q", got)
	}
}

func TestCandidateLabelPadsWideText(t *testing.T) {
	if got := candidateLabel(0, cat, false, 0); got != " 1  고양이 " {
		t.Fatalf("unexpected label %q", got)
	}
	if got := runewidth.StringWidth(candidateLabel(1, pizza, false, 12)); got != 12 {
		t.Fatalf("expected padded width 12, got %d", got)
	}
	if got := runewidth.StringWidth(candidateLabel(0, cat, false, 6)); got > 6 {
		t.Fatalf("expected truncated width <= 6, got %d", got)
	}
	entries := []model.WordEntry{cat, pizza}
	if got := candidateWidth(entries, true); got != runewidth.StringWidth(" 2  pizza ") {
		t.Fatalf("unexpected candidate width %d", got)
	}
}
