package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/pictoword/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "pictoword.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return st
}

func TestReplaceAndListWords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	words := []model.WordEntry{
		{ID: "a", Slot: model.Subject, Text: "고양이", TextAlt: "cat", Icon: "cat"},
		{ID: "b", Slot: model.Verb, Text: "먹어요", TextAlt: "eats"},
		{ID: "c", Slot: model.Object, Text: "피자", TextAlt: "pizza", Sound: "pop"},
		{ID: "d", Slot: model.Subject, Text: "곰", TextAlt: "bear"},
	}
	if err := st.ReplaceWords(ctx, words); err != nil {
		t.Fatalf("replace words: %v", err)
	}

	all, err := st.ListWords(ctx)
	if err != nil {
		t.Fatalf("list words: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 words, got %d", len(all))
	}
	for i := range words {
		if all[i] != words[i] {
			t.Fatalf("expected %+v at %d, got %+v", words[i], i, all[i])
		}
	}

	subjects, err := st.ListWordsForSlot(ctx, model.Subject)
	if err != nil {
		t.Fatalf("list subjects: %v", err)
	}
	if len(subjects) != 2 || subjects[0].ID != "a" || subjects[1].ID != "d" {
		t.Fatalf("unexpected subjects %+v", subjects)
	}
}

func TestReplaceWordsOverwrites(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.ReplaceWords(ctx, []model.WordEntry{{ID: "a", Slot: model.Subject, Text: "cat"}}); err != nil {
		t.Fatalf("replace words: %v", err)
	}
	if err := st.ReplaceWords(ctx, []model.WordEntry{{ID: "b", Slot: model.Object, Text: "ball"}}); err != nil {
		t.Fatalf("replace words: %v", err)
	}
	n, err := st.CountWords(ctx)
	if err != nil {
		t.Fatalf("count words: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 word after replace, got %d", n)
	}
}

func TestReplaceWordsRollsBackOnDuplicate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.ReplaceWords(ctx, []model.WordEntry{{ID: "keep", Slot: model.Subject, Text: "cat"}}); err != nil {
		t.Fatalf("replace words: %v", err)
	}
	dup := []model.WordEntry{
		{ID: "x", Slot: model.Subject, Text: "dog"},
		{ID: "x", Slot: model.Subject, Text: "owl"},
	}
	if err := st.ReplaceWords(ctx, dup); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	all, err := st.ListWords(ctx)
	if err != nil {
		t.Fatalf("list words: %v", err)
	}
	if len(all) != 1 || all[0].ID != "keep" {
		t.Fatalf("expected previous catalog to survive, got %+v", all)
	}
}

func TestEmptyStore(t *testing.T) {
	st := openTestStore(t)
	n, err := st.CountWords(context.Background())
	if err != nil {
		t.Fatalf("count words: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
}
