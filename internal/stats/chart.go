package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named run of scores on a 0-100 scale.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultChartHeight = 6
	minChartWidth      = 10
	fallbackWidth      = 80
	axisSeparator      = " │"
	colorReset         = "\x1b[0m"
)

// Eighth blocks, empty first.
var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var palette = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

var axisLabels = map[int]string{0: "100", 1: "50", 2: "0"}

// ChartWidthFor returns the number of columns left for bars once the axis
// fits into totalWidth. Zero measures the terminal.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	axis := runewidth.StringWidth(axisLabels[0] + axisSeparator)
	return max(minChartWidth, totalWidth-axis)
}

// RenderScoreChart draws each series as a bar chart against a fixed
// 0-100 axis. Series longer than width are averaged into width buckets.
func RenderScoreChart(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	if width <= 0 {
		width = ChartWidthFor(0)
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	useColor := shouldUseColor(w, forceColor)
	wrote := false
	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		if !wrote && title != "" {
			if _, err := fmt.Fprintln(w, title); err != nil {
				return err
			}
		}
		wrote = true
		color := ""
		if useColor {
			color = palette[i%len(palette)]
		}
		if err := renderBars(w, s, width, height, color); err != nil {
			return err
		}
	}
	return nil
}

func renderBars(w io.Writer, s Series, width, height int, color string) error {
	values := bucket(s.Values, width)
	last := s.Values[len(s.Values)-1]
	if _, err := fmt.Fprintf(w, "%s (%d runs, last %.1f)\n", s.Name, len(s.Values), last); err != nil {
		return err
	}
	labelWidth := runewidth.StringWidth(axisLabels[0])
	for row := 0; row < height; row++ {
		label := ""
		switch row {
		case 0:
			label = axisLabels[0]
		case height / 2:
			label = axisLabels[1]
		case height - 1:
			label = axisLabels[2]
		}
		var b strings.Builder
		b.WriteString(runewidth.FillLeft(label, labelWidth))
		b.WriteString(axisSeparator)
		if color != "" {
			b.WriteString(color)
		}
		// Rows count down from the top; each holds eight levels.
		floor := (height - 1 - row) * 8
		for _, v := range values {
			level := int(math.Round(clampScore(v)/100*float64(height*8))) - floor
			b.WriteRune(blocks[max(0, min(level, 8))])
		}
		if color != "" {
			b.WriteString(colorReset)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// bucket averages values into at most width columns.
func bucket(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		lo := i * len(values) / width
		hi := max((i+1)*len(values)/width, lo+1)
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
