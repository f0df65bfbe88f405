package catalog

import (
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/pictoword/internal/model"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(model.WordEntry) bool

// WordChecker reports whether a word may be offered.
type WordChecker interface {
	IsWordSafe(model.WordEntry) bool
}

// SafeWords keeps entries accepted by checker.
func SafeWords(checker WordChecker) FilterFunc {
	return checker.IsWordSafe
}

// Filter returns the entries kept by keep and logs the ones dropped.
func Filter(entries []model.WordEntry, keep FilterFunc) []model.WordEntry {
	out := make([]model.WordEntry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
			continue
		}
		log.Warn().Str("slot", e.Slot.String()).Str("text", e.Text).Str("text_alt", e.TextAlt).Msg("Dropping blocked catalog word")
	}
	return out
}
