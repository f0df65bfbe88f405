// Package catalog supplies the words offered for each sentence slot.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/verte-zerg/pictoword/internal/model"
)

//go:embed default.toml
var defaultCatalog []byte

var idNamespace = uuid.MustParse("6f6b1c52-4c3e-4b7a-9d0e-2a8f5b1e7c90")

// Catalog groups words by slot. It is read-only after construction.
type Catalog struct {
	bySlot [model.SlotCount][]model.WordEntry
}

type fileCatalog struct {
	Words []wordRecord `toml:"words"`
}

type wordRecord struct {
	ID      string `toml:"id"`
	Slot    string `toml:"slot"`
	Text    string `toml:"text"`
	TextAlt string `toml:"text-alt"`
	Icon    string `toml:"icon"`
	Sound   string `toml:"sound"`
}

// New builds a catalog from entries, keeping their order within each slot.
func New(entries []model.WordEntry) *Catalog {
	c := &Catalog{}
	for _, e := range entries {
		if int(e.Slot) < 0 || int(e.Slot) >= model.SlotCount {
			continue
		}
		c.bySlot[e.Slot] = append(c.bySlot[e.Slot], e)
	}
	return c
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	entries, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in catalog: %w", err)
	}
	return New(entries), nil
}

// Load reads a TOML catalog file.
func Load(path string) ([]model.WordEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes catalog TOML. Entries without an id get one derived from slot and text.
func Parse(data []byte) ([]model.WordEntry, error) {
	var file fileCatalog
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(file.Words) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	entries := make([]model.WordEntry, 0, len(file.Words))
	for i, rec := range file.Words {
		kind, err := model.ParseSlotKind(rec.Slot)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i+1, err)
		}
		text := strings.TrimSpace(rec.Text)
		alt := strings.TrimSpace(rec.TextAlt)
		if text == "" && alt == "" {
			return nil, fmt.Errorf("word %d: text must not be empty", i+1)
		}
		if text == "" {
			text = alt
		}
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			id = EntryID(kind, text, alt)
		}
		entries = append(entries, model.WordEntry{
			ID:      id,
			Slot:    kind,
			Text:    text,
			TextAlt: alt,
			Icon:    rec.Icon,
			Sound:   rec.Sound,
		})
	}
	return entries, nil
}

// EntryID derives a stable identity for a word.
func EntryID(kind model.SlotKind, text, alt string) string {
	return uuid.NewSHA1(idNamespace, []byte(kind.String()+"\x00"+text+"\x00"+alt)).String()
}

// WordsForSlot returns the words for kind. Callers must not modify the result.
func (c *Catalog) WordsForSlot(kind model.SlotKind) []model.WordEntry {
	if int(kind) < 0 || int(kind) >= model.SlotCount {
		return nil
	}
	return c.bySlot[kind]
}

// All returns every entry in slot order.
func (c *Catalog) All() []model.WordEntry {
	var out []model.WordEntry
	for _, words := range c.bySlot {
		out = append(out, words...)
	}
	return out
}

// Len returns the total number of words.
func (c *Catalog) Len() int {
	n := 0
	for _, words := range c.bySlot {
		n += len(words)
	}
	return n
}

// Validate checks that every slot can be filled.
func (c *Catalog) Validate() error {
	var missing []string
	for _, kind := range model.SlotKinds {
		if len(c.bySlot[kind]) == 0 {
			missing = append(missing, kind.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("catalog has no words for: %s", strings.Join(missing, ", "))
	}
	return nil
}
