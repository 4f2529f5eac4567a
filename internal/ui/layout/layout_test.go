package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestContentHeight(t *testing.T) {
	if got := ContentHeight(30); got != 24 {
		t.Errorf("expected 24, got %d", got)
	}
	if got := ContentHeight(4); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) {
		t.Error("expected too small below min width")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("expected min size to fit")
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Explorer", 42.9, 80)
	if !strings.Contains(h, "orbit") || !strings.Contains(h, "Explorer") {
		t.Errorf("header missing title: %q", h)
	}
	if !strings.Contains(h, "42% mastered") {
		t.Errorf("header missing progress: %q", h)
	}
	if lipgloss.Height(h) != HeaderHeight {
		t.Errorf("expected header height %d, got %d", HeaderHeight, lipgloss.Height(h))
	}

	if strings.Contains(RenderHeader("Landing", -1, 80), "mastered") {
		t.Error("negative percent should hide progress")
	}
}

func TestRenderFooter(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "/", Description: "Search"}, {Key: "q", Description: "Quit"}}, 80)
	if !strings.Contains(f, "Search") || !strings.Contains(f, "Quit") {
		t.Errorf("footer missing hints: %q", f)
	}
}

func TestRenderFooter_NeverWraps(t *testing.T) {
	hints := []KeyHint{
		{Key: "/", Description: "Search"}, {Key: "Tab", Description: "Focus"},
		{Key: "Enter", Description: "Details"}, {Key: "Space", Description: "Expand"},
		{Key: "+/-", Description: "Zoom"}, {Key: "r", Description: "Reset"},
		{Key: "q", Description: "Quit"}, {Key: "Ctrl+C", Description: "Quit"},
	}
	for _, width := range []int{MinWidth, 80, 99} {
		f := RenderFooter(hints, width)
		if lipgloss.Height(f) != FooterHeight {
			t.Errorf("width %d: expected footer height %d, got %d", width, FooterHeight, lipgloss.Height(f))
		}
		if lipgloss.Width(f) != width {
			t.Errorf("width %d: footer is %d wide", width, lipgloss.Width(f))
		}
	}
}

func TestRenderFrame_FixedContentHeight(t *testing.T) {
	header := RenderHeader("Explorer", 0, 80)
	footer := RenderFooter(nil, 80)
	tall := strings.Repeat("line\n", 50)
	if got := lipgloss.Height(RenderFrame(header, tall, footer, 80, 30)); got != 30 {
		t.Errorf("expected frame height 30, got %d", got)
	}
	if got := lipgloss.Height(RenderFrame(header, "x", footer, 80, 30)); got != 30 {
		t.Errorf("expected padded frame height 30, got %d", got)
	}
}
