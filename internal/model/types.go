// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// SlotKind identifies the sentence role a word fills.
type SlotKind int

// Slot kinds in storage order.
const (
	Subject SlotKind = iota
	Object
	Verb
)

// SlotCount is the number of slots in a sentence.
const SlotCount = 3

// SlotKinds lists every slot kind in storage order.
var SlotKinds = [SlotCount]SlotKind{Subject, Object, Verb}

// String returns the lower-case slot name used in config and catalog files.
func (k SlotKind) String() string {
	switch k {
	case Subject:
		return "subject"
	case Object:
		return "object"
	case Verb:
		return "verb"
	default:
		return fmt.Sprintf("slot(%d)", int(k))
	}
}

// ParseSlotKind maps a slot name to its kind.
func ParseSlotKind(name string) (SlotKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "subject", "who":
		return Subject, nil
	case "object", "what":
		return Object, nil
	case "verb", "does":
		return Verb, nil
	default:
		return 0, fmt.Errorf("unknown slot %q (expected subject, object or verb)", name)
	}
}

// WordEntry is one selectable word. Entries are never mutated after load.
type WordEntry struct {
	ID      string
	Slot    SlotKind
	Text    string
	TextAlt string
	Icon    string
	Sound   string
}

// PromptText returns the text sent to the image service.
func (w WordEntry) PromptText() string {
	if w.TextAlt != "" {
		return w.TextAlt
	}
	return w.Text
}

// DisplayText returns the text for the requested language.
func (w WordEntry) DisplayText(secondary bool) string {
	if secondary && w.TextAlt != "" {
		return w.TextAlt
	}
	return w.Text
}

// GenerationConfig defines remote image generation settings.
type GenerationConfig struct {
	Endpoint    string
	APIKey      string
	Images      int
	Timeout     time.Duration
	Width       int
	Height      int
	Steps       int
	CfgScale    float64
	CacheTTL    time.Duration
	MinInterval time.Duration
}

// SelectionConfig defines word selection settings.
type SelectionConfig struct {
	ButtonsPerStep int
	Secondary      bool
}

// PresentationConfig defines the waiting sequence shown during generation.
type PresentationConfig struct {
	Frames   int
	Interval time.Duration
}

// Config groups all play settings.
type Config struct {
	Generation   GenerationConfig
	Selection    SelectionConfig
	Presentation PresentationConfig
	OutputDir    string
}
