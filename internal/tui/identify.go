package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/humangate/internal/evaluate"
	"github.com/verte-zerg/humangate/internal/model"
)

const identifyCellWidth = 9

var scenery = []string{"street", "trees", "car", "sky", "wall", "bus", "shop", "road", "hydrant", "crowd", "fence", "lamp"}

type identifyScreen struct {
	cfg      model.IdentifyConfig
	keys     keyMap
	cursor   int
	selected map[int]bool
	failures int
	last     evaluate.IdentifyVerdict
}

// newIdentifyScreen starts with the number of failed attempts already
// recorded so the hint survives a restart of the program.
func newIdentifyScreen(cfg model.IdentifyConfig, failures int, keys keyMap) *identifyScreen {
	return &identifyScreen{cfg: cfg, keys: keys, selected: map[int]bool{}, failures: failures}
}

// start keeps the previous selection so a retry can be corrected in place.
func (s *identifyScreen) start() {
	s.last = evaluate.IdentifyVerdict{}
}

func (s *identifyScreen) animated() bool { return false }

func (s *identifyScreen) cells() int {
	return s.cfg.GridSize * s.cfg.GridSize
}

func (s *identifyScreen) key(msg tea.KeyMsg) (evaluate.Verdict, bool) {
	n := s.cfg.GridSize
	if n <= 0 {
		return evaluate.Verdict{}, false
	}
	row, col := s.cursor/n, s.cursor%n
	switch {
	case key.Matches(msg, s.keys.Up):
		row = (row + n - 1) % n
	case key.Matches(msg, s.keys.Down):
		row = (row + 1) % n
	case key.Matches(msg, s.keys.Left):
		col = (col + n - 1) % n
	case key.Matches(msg, s.keys.Right):
		col = (col + 1) % n
	case key.Matches(msg, s.keys.Action):
		if s.selected[s.cursor] {
			delete(s.selected, s.cursor)
		} else {
			s.selected[s.cursor] = true
		}
		return evaluate.Verdict{}, false
	case key.Matches(msg, s.keys.Submit):
		return s.submit()
	default:
		return evaluate.Verdict{}, false
	}
	s.cursor = row*n + col
	return evaluate.Verdict{}, false
}

func (s *identifyScreen) submit() (evaluate.Verdict, bool) {
	v, err := evaluate.Identify(s.selection(), s.cfg)
	if err != nil {
		return evaluate.Verdict{}, false
	}
	s.last = v
	if !v.Passed {
		s.failures++
	}
	return v.Verdict, true
}

func (s *identifyScreen) selection() []int {
	out := make([]int, 0, len(s.selected))
	for cell := range s.selected {
		out = append(out, cell)
	}
	sort.Ints(out)
	return out
}

func (s *identifyScreen) frame(float64) (evaluate.Verdict, bool) {
	return evaluate.Verdict{}, false
}

func (s *identifyScreen) isTarget(cell int) bool {
	for _, t := range s.cfg.Targets {
		if t == cell {
			return true
		}
	}
	return false
}

func (s *identifyScreen) renderCell(cell int) string {
	scene := scenery[cell%len(scenery)]
	detail := ""
	if s.isTarget(cell) {
		detail = "🚲"
	}
	body := runewidth.FillRight(scene, identifyCellWidth) + "\n" + runewidth.FillLeft(detail, identifyCellWidth)
	style := cardStyle
	if cell == s.cursor {
		style = cardHotStyle
	}
	if s.selected[cell] {
		return style.Render(selectStyle.Render(body))
	}
	return style.Render(mutedStyle.Render(body))
}

func (s *identifyScreen) view() string {
	n := s.cfg.GridSize
	rows := make([]string, 0, n+2)
	for r := 0; r < n; r++ {
		cells := make([]string, 0, n)
		for c := 0; c < n; c++ {
			cells = append(cells, s.renderCell(r*n+c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("Selected %d of %d", len(s.selected), s.cells())))
	if evaluate.ShowHint(s.failures) {
		rows = append(rows, accentStyle.Render(s.hint()))
	}
	return strings.Join(rows, "\n")
}

func (s *identifyScreen) hint() string {
	if s.cfg.GridSize <= 0 {
		return ""
	}
	seen := map[int]bool{}
	var cols []string
	for _, t := range s.cfg.Targets {
		col := t%s.cfg.GridSize + 1
		if !seen[col] {
			seen[col] = true
			cols = append(cols, fmt.Sprintf("%d", col))
		}
	}
	return fmt.Sprintf("Hint: bicycles are hiding in column %s.", strings.Join(cols, ", "))
}

func (s *identifyScreen) summary() string {
	return mutedStyle.Render(s.last.Message())
}

func (s *identifyScreen) bindings() []key.Binding {
	submit := s.keys.Submit
	submit.SetEnabled(len(s.selected) > 0)
	return []key.Binding{withHelp(s.keys.Left, "←↑↓→/hjkl", "move"), withHelp(s.keys.Action, "space", "toggle"), submit}
}
