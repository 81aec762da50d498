package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

func styleRunes(text string, style lipgloss.Style) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapText breaks text at spaces so no line is wider than width cells.
func wrapText(text string, style lipgloss.Style, width int) string {
	return wrapStyledRunes(styleRunes(text, style), width)
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

// canvas is a fixed grid of single-cell glyphs used to draw the arenas.
type canvas struct {
	w, h  int
	cells [][]styledRune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]styledRune, h)}
	blank := styledRune{s: " ", width: 1, isSpace: true}
	for y := range c.cells {
		row := make([]styledRune, w)
		for x := range row {
			row[x] = blank
		}
		c.cells[y] = row
	}
	return c
}

// set draws r at (x, y). Out-of-range coordinates and glyphs wider than one
// cell are ignored so the grid never shifts.
func (c *canvas) set(x, y int, r rune, style lipgloss.Style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	if runewidth.RuneWidth(r) != 1 {
		return
	}
	c.cells[y][x] = styledRune{s: style.Render(string(r)), width: 1, isSpace: r == ' '}
}

func (c *canvas) fillRow(y, from, to int, r rune, style lipgloss.Style) {
	for x := from; x < to; x++ {
		c.set(x, y, r, style)
	}
}

func (c *canvas) render() string {
	lines := make([]string, c.h)
	for y, row := range c.cells {
		lines[y] = renderStyledRunes(row)
	}
	return strings.Join(lines, "\n")
}
