// Package picker chooses the candidate words offered at each step.
package picker

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/pictoword/internal/model"
)

// DefaultButtons is the number of candidates offered per step.
const DefaultButtons = 4

// Picker draws random candidate subsets.
type Picker struct {
	rnd *rand.Rand
}

// New returns a Picker seeded with the current time.
func New() *Picker {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Picker with a fixed seed.
func NewSeeded(seed int64) *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Pick returns up to n distinct entries in random order. The input slice is not modified.
func (p *Picker) Pick(words []model.WordEntry, n int) []model.WordEntry {
	if n <= 0 || len(words) == 0 {
		return nil
	}
	shuffled := append([]model.WordEntry(nil), words...)
	p.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
