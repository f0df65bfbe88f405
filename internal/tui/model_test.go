package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/pictoword/internal/catalog"
	"github.com/verte-zerg/pictoword/internal/coordinator"
	"github.com/verte-zerg/pictoword/internal/gallery"
	"github.com/verte-zerg/pictoword/internal/imagegen"
	"github.com/verte-zerg/pictoword/internal/model"
	"github.com/verte-zerg/pictoword/internal/picker"
)

type instantGenerator struct{}

func (instantGenerator) Generate(_ context.Context, _ string, count int) (imagegen.Result, error) {
	return imagegen.Result{Outcome: imagegen.OutcomeSuccess, Images: imagegen.Placeholders(count), RequestID: "t1"}, nil
}

func newTestModel(t *testing.T) (*Model, chan tea.Msg) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	msgs := make(chan tea.Msg, 256)
	m := New(Options{
		Catalog:    cat,
		Picker:     picker.NewSeeded(1),
		Generator:  instantGenerator{},
		Gallery:    gallery.New(t.TempDir()),
		ImageCount: 1,
		Buttons:    3,
		Frames:     2,
		Interval:   50 * time.Millisecond,
	})
	m.SetSender(func(msg tea.Msg) { msgs <- msg })
	t.Cleanup(m.Close)
	return m, msgs
}

func press(m *Model, key string) {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	if key == "enter" {
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	}
	m.Update(msg)
}

func pump(t *testing.T, m *Model, msgs chan tea.Msg, done func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !done() {
		select {
		case msg := <-msgs:
			m.Update(msg)
		case <-deadline:
			t.Fatalf("timed out in state %s", m.State())
		}
	}
}

func TestPlayThrough(t *testing.T) {
	m, msgs := newTestModel(t)
	if m.State() != coordinator.StateTitle {
		t.Fatalf("expected title, got %s", m.State())
	}

	press(m, "enter")
	if m.State() != coordinator.StateSelecting {
		t.Fatalf("expected selecting, got %s", m.State())
	}
	for _, kind := range model.SlotKinds {
		if len(m.candidates) != 3 {
			t.Fatalf("expected 3 candidates, got %d", len(m.candidates))
		}
		for _, c := range m.candidates {
			if c.Slot != kind {
				t.Fatalf("expected %s candidates, got %s", kind, c.Slot)
			}
		}
		press(m, "1")
	}
	if m.State() != coordinator.StateGenerating {
		t.Fatalf("expected generating, got %s", m.State())
	}

	pump(t, m, msgs, func() bool { return m.State() == coordinator.StateViewing && len(m.paths) == 1 })
	if view := m.View(); !strings.Contains(view, "그림이 완성됐어요!") {
		t.Fatalf("expected success heading in view: %s", view)
	}

	press(m, "r")
	if m.State() != coordinator.StateSelecting {
		t.Fatalf("expected selecting after retry, got %s", m.State())
	}
	if m.sel.Filled() != 0 || len(m.paths) != 0 {
		t.Fatalf("expected a fresh round")
	}
}

func TestChooseOutOfRangeIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "enter")

	press(m, "9")

	if m.sel.Step() != 0 {
		t.Fatalf("expected step 0, got %d", m.sel.Step())
	}
}

func TestLanguageToggle(t *testing.T) {
	m, _ := newTestModel(t)
	if strings.Contains(m.View(), "press enter to start") {
		t.Fatalf("expected default-language title text")
	}

	press(m, "l")

	if !m.secondary || !strings.Contains(m.View(), "press enter to start") {
		t.Fatalf("expected secondary title text")
	}
}

func TestFramesIgnoredOutsideGeneration(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(frameMsg{frame: 3, total: 4})

	if m.frame != 0 || m.total != 0 {
		t.Fatalf("expected frame to be ignored")
	}
}
