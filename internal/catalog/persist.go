package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/pictoword/internal/model"
)

// WordStore persists catalog words.
type WordStore interface {
	CountWords(ctx context.Context) (int, error)
	ReplaceWords(ctx context.Context, words []model.WordEntry) error
	ListWords(ctx context.Context) ([]model.WordEntry, error)
}

// FromStore loads the stored catalog, seeding the store with the built-in
// words when it is empty. Words rejected by keep are left out.
func FromStore(ctx context.Context, st WordStore, keep FilterFunc) (*Catalog, error) {
	n, err := st.CountWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count words: %w", err)
	}
	if n == 0 {
		entries, err := Parse(defaultCatalog)
		if err != nil {
			return nil, fmt.Errorf("failed to parse built-in catalog: %w", err)
		}
		if err := st.ReplaceWords(ctx, entries); err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		log.Info().Int("words", len(entries)).Msg("Seeded word catalog")
	}

	entries, err := st.ListWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	if keep != nil {
		entries = Filter(entries, keep)
	}
	c := New(entries)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Import validates entries and replaces the stored catalog with them. It
// returns the number of words stored.
func Import(ctx context.Context, st WordStore, entries []model.WordEntry, keep FilterFunc) (int, error) {
	if keep != nil {
		entries = Filter(entries, keep)
	}
	if err := New(entries).Validate(); err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			return 0, fmt.Errorf("duplicate word id %q (%s %q)", e.ID, e.Slot, e.Text)
		}
		seen[e.ID] = struct{}{}
	}
	if err := st.ReplaceWords(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}
	return len(entries), nil
}

// SlotStore lists the stored words of one slot.
type SlotStore interface {
	ListWordsForSlot(ctx context.Context, kind model.SlotKind) ([]model.WordEntry, error)
}

// SlotWords returns the stored words for kind in catalog order, dropping
// words rejected by keep.
func SlotWords(ctx context.Context, st SlotStore, kind model.SlotKind, keep FilterFunc) ([]model.WordEntry, error) {
	entries, err := st.ListWordsForSlot(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s words: %w", kind, err)
	}
	if keep != nil {
		entries = Filter(entries, keep)
	}
	return entries, nil
}
