package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestStyleCaption_ByAlpha(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	focused := th.StyleCaption(1, "Focused")
	if !strings.Contains(focused, "\x1b[") || !strings.Contains(focused, "Focused") {
		t.Fatalf("expected styled focused caption, got %q", focused)
	}
	dormant := th.StyleCaption(0.5, "Dormant")
	if !strings.Contains(dormant, "\x1b[") {
		t.Fatalf("expected styled dormant caption, got %q", dormant)
	}
	if focused == th.StyleCaption(0.5, "Focused") {
		t.Fatal("focused and dormant captions should differ")
	}
	if got := th.StyleCaption(1, ""); got != "" {
		t.Fatalf("expected empty caption untouched, got %q", got)
	}
}

func TestStylePlaceholder_FadesBelowHalf(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	if got := th.StylePlaceholder(1, "img"); got != "img" {
		t.Fatalf("expected opaque placeholder unstyled, got %q", got)
	}
	if got := th.StylePlaceholder(0.2, "img"); !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected faint placeholder, got %q", got)
	}
}

func TestRenderSelected(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()
	if got := th.RenderSelected(false, "x"); got != "x" {
		t.Fatalf("unexpected unselected render %q", got)
	}
	if got := th.RenderSelected(true, "x"); !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected selected style, got %q", got)
	}
}
