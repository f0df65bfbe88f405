// Package selection tracks the word picked for each sentence slot.
package selection

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/pictoword/internal/model"
)

// MissingWord marks an empty slot in display sentences.
const MissingWord = "???"

// ErrSelectionMisuse reports an out-of-sequence or wrong-kind selection.
var ErrSelectionMisuse = errors.New("selection misuse")

// ErrIncomplete is returned when a prompt is requested before every slot is filled.
var ErrIncomplete = errors.New("selection incomplete")

var stepLabels = [model.SlotCount][2]string{
	{"누가?", "Who?"},
	{"무엇을?", "What?"},
	{"해요?", "Does?"},
}

// Machine walks Subject, Object and Verb in order. It is not safe for
// concurrent use; drive it from the goroutine that owns the UI loop.
type Machine struct {
	slots [model.SlotCount]*model.WordEntry
	step  int

	observers map[int]func()
	nextID    int
}

// New returns an empty machine at step 0.
func New() *Machine {
	return &Machine{observers: map[int]func(){}}
}

// Step returns the current step, or model.SlotCount once complete.
func (m *Machine) Step() int {
	return m.step
}

// IsComplete reports whether all slots are filled.
func (m *Machine) IsComplete() bool {
	return m.step >= model.SlotCount
}

// Expected returns the slot kind awaited by the current step.
func (m *Machine) Expected() (model.SlotKind, bool) {
	if m.IsComplete() {
		return 0, false
	}
	return model.SlotKinds[m.step], true
}

// Slot returns the entry stored for kind, if any.
func (m *Machine) Slot(kind model.SlotKind) (model.WordEntry, bool) {
	if int(kind) < 0 || int(kind) >= model.SlotCount || m.slots[kind] == nil {
		return model.WordEntry{}, false
	}
	return *m.slots[kind], true
}

// Filled returns the number of filled slots.
func (m *Machine) Filled() int {
	n := 0
	for _, s := range m.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Select stores entry in the current slot and advances. Completion observers
// run once, after the last slot is filled.
func (m *Machine) Select(entry model.WordEntry) error {
	expected, ok := m.Expected()
	if !ok {
		return fmt.Errorf("%w: all %d slots already filled", ErrSelectionMisuse, model.SlotCount)
	}
	if entry.Slot != expected {
		return fmt.Errorf("%w: step %d expects %s, got %s", ErrSelectionMisuse, m.step, expected, entry.Slot)
	}
	e := entry
	m.slots[m.step] = &e
	m.step++
	if m.IsComplete() {
		m.notifyComplete()
	}
	return nil
}

// Reset clears every slot and returns to step 0.
func (m *Machine) Reset() {
	m.slots = [model.SlotCount]*model.WordEntry{}
	m.step = 0
}

// OnComplete registers fn for completion events and returns its unsubscribe func.
func (m *Machine) OnComplete(fn func()) func() {
	if m.observers == nil {
		m.observers = map[int]func(){}
	}
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	return func() {
		delete(m.observers, id)
	}
}

func (m *Machine) notifyComplete() {
	ids := make([]int, 0, len(m.observers))
	for id := range m.observers {
		ids = append(ids, id)
	}
	// Registration order.
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := m.observers[id]; ok {
			fn()
		}
	}
}

// ComposePrompt returns "subject verb object" in prompt text.
func (m *Machine) ComposePrompt() (string, error) {
	if !m.IsComplete() {
		return "", ErrIncomplete
	}
	return strings.Join([]string{
		m.slots[model.Subject].PromptText(),
		m.slots[model.Verb].PromptText(),
		m.slots[model.Object].PromptText(),
	}, " "), nil
}

// ComposeDisplaySentence renders the sentence for display. The default
// language keeps storage order (subject object verb); the secondary language
// reads subject verb object.
func (m *Machine) ComposeDisplaySentence(useSecondary bool) string {
	order := DisplayOrder(useSecondary)
	words := make([]string, 0, len(order))
	for _, kind := range order {
		entry := m.slots[kind]
		if entry == nil {
			words = append(words, MissingWord)
			continue
		}
		words = append(words, entry.DisplayText(useSecondary))
	}
	return strings.Join(words, " ")
}

// DisplayOrder returns the slot order a sentence is read in.
func DisplayOrder(useSecondary bool) []model.SlotKind {
	if useSecondary {
		return []model.SlotKind{model.Subject, model.Verb, model.Object}
	}
	return []model.SlotKind{model.Subject, model.Object, model.Verb}
}

// StepLabel returns the question shown for a step.
func StepLabel(step int, useSecondary bool) string {
	if step < 0 || step >= model.SlotCount {
		return ""
	}
	if useSecondary {
		return stepLabels[step][1]
	}
	return stepLabels[step][0]
}
