package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	out := wrapText("press space to stop", lipgloss.NewStyle(), 11)
	want := "press space\nto stop"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestWrapTextHardBreaksLongWords(t *testing.T) {
	out := wrapText("verification", lipgloss.NewStyle(), 5)
	want := "verif\nicati\non"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	out := wrapText("a b", lipgloss.NewStyle(), 0)
	if out != "a b" {
		t.Fatalf("expected unwrapped text, got %q", out)
	}
}

func TestCanvasSetAndRender(t *testing.T) {
	plain := lipgloss.NewStyle()
	c := newCanvas(4, 2)
	c.set(0, 0, 'o', plain)
	c.set(3, 1, '#', plain)
	c.set(4, 0, 'x', plain)
	c.set(-1, 1, 'x', plain)
	c.set(1, 0, '🚲', plain)

	want := "o   \n   #"
	if got := c.render(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCanvasFillRow(t *testing.T) {
	c := newCanvas(5, 1)
	c.fillRow(0, 1, 4, '=', lipgloss.NewStyle())
	if got := c.render(); got != " === " {
		t.Fatalf("unexpected row %q", got)
	}
	if strings.Count(c.render(), "\n") != 0 {
		t.Fatalf("single row canvas must not contain newlines")
	}
}
