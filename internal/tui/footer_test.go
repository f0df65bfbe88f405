package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/pictoword/internal/coordinator"
	"github.com/verte-zerg/pictoword/internal/model"
)

func TestRenderFooterSelecting(t *testing.T) {
	m := New(Options{Buttons: 4, ImageCount: 2})
	defer m.Close()
	m.state = coordinator.StateSelecting
	m.candidates = make([]model.WordEntry, 4)

	out := m.renderFooter()
	if !containsAll(out, []string{"Step 1/3", "한국어", "2 image(s)", "1-4 choose", "q quit"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterFollowsLanguage(t *testing.T) {
	m := New(Options{Secondary: true})
	defer m.Close()
	m.state = coordinator.StateViewing

	out := m.renderFooter()
	if !containsAll(out, []string{"English", "r again"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	if strings.Contains(out, "Step") {
		t.Fatalf("step counter shown outside selection: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
