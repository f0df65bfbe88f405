package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/pictoword/internal/imagegen"
)

func TestRenderPreviewUsesHalfBlocks(t *testing.T) {
	out := RenderPreview(imagegen.Placeholder().Image, 4)

	if lines := strings.Split(out, "\n"); len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if got := strings.Count(out, halfBlock); got != 8 {
		t.Fatalf("expected 8 cells, got %d", got)
	}
}

func TestRenderPreviewEmpty(t *testing.T) {
	if out := RenderPreview(nil, 4); out != "" {
		t.Fatalf("expected empty preview, got %q", out)
	}
	if out := RenderPreview(imagegen.Placeholder().Image, 0); out != "" {
		t.Fatalf("expected empty preview for zero width")
	}
}
