package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/pictoword/internal/model"
	"github.com/verte-zerg/pictoword/internal/selection"
)

type styledWord struct {
	s     string
	width int
}

// buildSentenceWords styles the sentence in reading order. Filled slots are
// bright, the slot being chosen is highlighted and later slots stay dim.
func buildSentenceWords(sel *selection.Machine, secondary bool) []styledWord {
	expected, choosing := sel.Expected()
	order := selection.DisplayOrder(secondary)
	out := make([]styledWord, 0, len(order))
	for _, kind := range order {
		text := selection.MissingWord
		style := pendingStyle
		if entry, ok := sel.Slot(kind); ok {
			text = entry.DisplayText(secondary)
			style = filledStyle
		} else if choosing && kind == expected {
			style = currentWordStyle.Underline(true)
		}
		out = append(out, styledWord{s: style.Render(text), width: runewidth.StringWidth(text)})
	}
	return out
}

func renderStyledWords(words []styledWord) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.s)
	}
	return strings.Join(parts, " ")
}

// wrapStyledWords breaks words into lines no wider than width. A word wider
// than width gets a line of its own.
func wrapStyledWords(words []styledWord, width int) string {
	if width <= 0 {
		return renderStyledWords(words)
	}
	var out strings.Builder
	line := make([]styledWord, 0, len(words))
	lineWidth := 0
	for _, w := range words {
		next := lineWidth + w.width
		if len(line) > 0 {
			next++
		}
		if next > width && len(line) > 0 {
			out.WriteString(renderStyledWords(line))
			out.WriteRune('\n')
			line = line[:0]
			next = w.width
		}
		line = append(line, w)
		lineWidth = next
	}
	out.WriteString(renderStyledWords(line))
	return out.String()
}

// candidateLabel renders one numbered choice padded to width cells.
func candidateLabel(index int, entry model.WordEntry, secondary bool, width int) string {
	text := entry.DisplayText(secondary)
	label := " " + string(rune('1'+index)) + "  " + text + " "
	if width > 0 {
		label = runewidth.Truncate(label, width, "…")
		label = runewidth.FillRight(label, width)
	}
	return label
}

// candidateWidth is the widest label among entries, used to align buttons.
func candidateWidth(entries []model.WordEntry, secondary bool) int {
	widest := 0
	for i, e := range entries {
		if w := runewidth.StringWidth(candidateLabel(i, e, secondary, 0)); w > widest {
			widest = w
		}
	}
	return widest
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
