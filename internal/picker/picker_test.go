package picker

import (
	"fmt"
	"testing"

	"github.com/verte-zerg/pictoword/internal/model"
)

func words(n int) []model.WordEntry {
	out := make([]model.WordEntry, n)
	for i := range out {
		out[i] = model.WordEntry{ID: fmt.Sprintf("w%d", i), Slot: model.Subject, Text: fmt.Sprintf("word%d", i)}
	}
	return out
}

func TestPickReturnsDistinctSubset(t *testing.T) {
	p := NewSeeded(1)
	in := words(6)

	got := p.Pick(in, DefaultButtons)
	if len(got) != DefaultButtons {
		t.Fatalf("expected %d words, got %d", DefaultButtons, len(got))
	}
	seen := map[string]bool{}
	for _, w := range got {
		if seen[w.ID] {
			t.Fatalf("duplicate pick %s", w.ID)
		}
		seen[w.ID] = true
	}
	for i, w := range in {
		if w.ID != fmt.Sprintf("w%d", i) {
			t.Fatalf("expected input order preserved")
		}
	}
}

func TestPickCapsAtAvailable(t *testing.T) {
	p := NewSeeded(2)
	if got := p.Pick(words(2), 4); len(got) != 2 {
		t.Fatalf("expected 2 words, got %d", len(got))
	}
	if got := p.Pick(nil, 4); got != nil {
		t.Fatalf("expected nil for empty input")
	}
	if got := p.Pick(words(3), 0); got != nil {
		t.Fatalf("expected nil for n=0")
	}
}

func TestPickIsDeterministicForSeed(t *testing.T) {
	a := NewSeeded(42).Pick(words(10), 4)
	b := NewSeeded(42).Pick(words(10), 4)
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("expected identical picks for identical seeds")
		}
	}
}
