// Package safety keeps prompts sent to the image service child-appropriate.
package safety

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/verte-zerg/pictoword/internal/model"
)

// SafetySuffix is appended to every sanitized prompt. It must not contain a blocked term.
const SafetySuffix = ", child-friendly, cute art style, safe for children, gentle and peaceful, bright and cheerful, wholesome"

const negativePrompt = "violence, blood, gore, scary, horror, dark, weapons, inappropriate, nsfw, adult content, disturbing, creepy, nightmare, monster, zombie, death"

// DefaultBlockedTerms is the built-in blocklist.
var DefaultBlockedTerms = []string{
	// violence
	"violence", "violent", "blood", "bloody", "gore", "gory",
	"kill", "killing", "murder", "death", "dead", "die",
	"weapon", "gun", "knife", "sword", "fight", "war", "battle", "attack",
	"hurt", "pain", "torture", "abuse",
	// horror
	"horror", "scary", "terrifying", "nightmare", "monster", "zombie",
	"ghost", "demon", "devil", "evil", "dark", "creepy", "disturbing", "grotesque",
	// adult
	"nude", "naked", "sexy", "sexual", "adult", "erotic", "nsfw", "explicit", "provocative",
	// other
	"drug", "drugs", "alcohol", "cigarette", "smoking",
	"inappropriate", "offensive", "hate", "racist",
}

// Filter removes blocked terms from prompt text.
type Filter struct {
	mu      sync.RWMutex
	terms   map[string]struct{}
	pattern *regexp.Regexp
	enabled bool
}

// New returns an enabled filter with the default blocklist.
func New() *Filter {
	return NewWithTerms(DefaultBlockedTerms)
}

// NewWithTerms returns an enabled filter for the given blocklist.
func NewWithTerms(terms []string) *Filter {
	f := &Filter{terms: map[string]struct{}{}, enabled: true}
	for _, term := range terms {
		if t := normalizeTerm(term); t != "" {
			f.terms[t] = struct{}{}
		}
	}
	f.compile()
	return f
}

// SetEnabled toggles term removal. The safety suffix is appended either way.
func (f *Filter) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

// AddBlockedTerm extends the blocklist. It reports whether the term was new.
func (f *Filter) AddBlockedTerm(term string) bool {
	t := normalizeTerm(term)
	if t == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.terms[t]; ok {
		return false
	}
	f.terms[t] = struct{}{}
	f.compile()
	return true
}

// Terms returns the blocklist in sorted order.
func (f *Filter) Terms() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.terms))
	for t := range f.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Sanitize removes blocked words, collapses whitespace and appends SafetySuffix.
func (f *Filter) Sanitize(raw string) string {
	f.mu.RLock()
	pattern, enabled := f.pattern, f.enabled
	f.mu.RUnlock()

	text := raw
	if enabled && pattern != nil {
		text = pattern.ReplaceAllString(text, " ")
	}
	return strings.Join(strings.Fields(text), " ") + SafetySuffix
}

// ContainsBlocked reports whether text holds a blocked term as a whole word.
// It uses the same matching rule as Sanitize.
func (f *Filter) ContainsBlocked(text string) bool {
	f.mu.RLock()
	pattern := f.pattern
	f.mu.RUnlock()
	if pattern == nil {
		return false
	}
	return pattern.MatchString(text)
}

// IsWordSafe reports whether neither language text of the entry is blocked.
func (f *Filter) IsWordSafe(entry model.WordEntry) bool {
	return !f.ContainsBlocked(entry.Text) && !f.ContainsBlocked(entry.TextAlt)
}

// NegativePrompt returns the terms the image model is asked to avoid.
func (f *Filter) NegativePrompt() string {
	return negativePrompt
}

// compile rebuilds the alternation; callers hold the write lock.
func (f *Filter) compile() {
	if len(f.terms) == 0 {
		f.pattern = nil
		return
	}
	quoted := make([]string, 0, len(f.terms))
	for t := range f.terms {
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	// Longest first so "killing" wins over "kill".
	sort.Slice(quoted, func(i, j int) bool {
		if len(quoted[i]) != len(quoted[j]) {
			return len(quoted[i]) > len(quoted[j])
		}
		return quoted[i] < quoted[j]
	})
	f.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
