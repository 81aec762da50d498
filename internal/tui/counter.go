package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/humangate/internal/evaluate"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/model"
)

const (
	repSeconds   = 0.6
	speedStep    = 0.3
	speedEvery   = 2.0
	maxPlayback  = 3.5
	noSelection  = -1
	figureArmsUp = `\o/`
	figureArmsDn = `_o_`
)

// repLoop plays exactly reps repetitions, speeding up every few seconds.
type repLoop struct {
	reps    int
	elapsed float64
	played  float64
}

func (l *repLoop) speed() float64 {
	return math.Min(1+speedStep*math.Floor(l.elapsed/speedEvery), maxPlayback)
}

// advance reports whether the loop has finished.
func (l *repLoop) advance(dt float64) bool {
	if l.done() {
		return true
	}
	l.played += dt * l.speed() / repSeconds
	l.elapsed += dt
	return l.done()
}

func (l *repLoop) done() bool {
	return l.played >= float64(l.reps)
}

func (l *repLoop) armsUp() bool {
	_, frac := math.Modf(l.played)
	return frac < 0.5
}

type counterScreen struct {
	cfg      model.CounterConfig
	gen      *generator.Generator
	keys     keyMap
	loop     repLoop
	options  []int
	cursor   int
	selected int
	answered int
}

func newCounterScreen(cfg model.CounterConfig, gen *generator.Generator, keys keyMap) *counterScreen {
	return &counterScreen{cfg: cfg, gen: gen, keys: keys, selected: noSelection}
}

func (s *counterScreen) start() {
	s.loop = repLoop{reps: s.cfg.Correct}
	s.options = s.gen.Shuffled(s.cfg.Options)
	s.cursor = 0
	s.selected = noSelection
}

// animated stops the frame loop once playback has ended.
func (s *counterScreen) animated() bool { return s.watching() }

func (s *counterScreen) watching() bool {
	return !s.loop.done()
}

func (s *counterScreen) key(msg tea.KeyMsg) (evaluate.Verdict, bool) {
	if s.watching() || len(s.options) == 0 {
		return evaluate.Verdict{}, false
	}
	switch {
	case key.Matches(msg, s.keys.Up):
		s.cursor = (s.cursor + len(s.options) - 1) % len(s.options)
	case key.Matches(msg, s.keys.Down):
		s.cursor = (s.cursor + 1) % len(s.options)
	case key.Matches(msg, s.keys.Action):
		s.selected = s.cursor
	case key.Matches(msg, s.keys.Submit):
		if s.selected == noSelection {
			return evaluate.Verdict{}, false
		}
		answer := s.options[s.selected]
		v, err := evaluate.Counting(&answer, s.cfg)
		if err != nil {
			return evaluate.Verdict{}, false
		}
		s.answered = answer
		return v, true
	default:
		if idx := digitIndex(msg.String()); idx >= 0 && idx < len(s.options) {
			s.cursor = idx
			s.selected = idx
		}
	}
	return evaluate.Verdict{}, false
}

func (s *counterScreen) frame(dt float64) (evaluate.Verdict, bool) {
	s.loop.advance(dt)
	return evaluate.Verdict{}, false
}

func (s *counterScreen) view() string {
	if s.watching() {
		figure := figureArmsDn
		if s.loop.armsUp() {
			figure = figureArmsUp
		}
		return strings.Join([]string{
			cardStyle.Render("\n   " + textStyle.Render(figure) + "   \n"),
			mutedStyle.Render(fmt.Sprintf("Playback x%.1f", s.loop.speed())),
		}, "\n")
	}
	lines := []string{textStyle.Render("How many repetitions did you count?"), ""}
	for i, opt := range s.options {
		lines = append(lines, optionLine(fmt.Sprintf("%d) %d", i+1, opt), i == s.cursor, i == s.selected))
	}
	return strings.Join(lines, "\n")
}

func (s *counterScreen) summary() string {
	return mutedStyle.Render(fmt.Sprintf("You answered %d.", s.answered))
}

func (s *counterScreen) bindings() []key.Binding {
	if s.watching() {
		return nil
	}
	return []key.Binding{withHelp(s.keys.Up, "↑/↓", "move"), s.keys.Action, s.keys.Submit}
}

func digitIndex(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return -1
	}
	return int(s[0] - '1')
}

func optionLine(label string, cursor, selected bool) string {
	mark := "( )"
	style := textStyle
	if selected {
		mark = "(•)"
		style = accentStyle
	}
	prefix := "  "
	if cursor {
		prefix = cursorStyle.Render("> ")
	}
	return prefix + style.Render(mark+" "+label)
}
