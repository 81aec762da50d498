package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/humangate/internal/evaluate"
	"github.com/verte-zerg/humangate/internal/feedback"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/timing"
)

const (
	laneWidth   = 5
	laneRows    = 16
	laneKeySeq  = "asdf"
	receptorRow = laneRows - 1
)

type rhythmScreen struct {
	keys  keyMap
	judge *timing.Rhythm
	last  timing.RhythmResult
}

func newRhythmScreen(cfg model.RhythmConfig, gen *generator.Generator, bus *feedback.Bus, keys keyMap) *rhythmScreen {
	return &rhythmScreen{keys: keys, judge: timing.NewRhythm(cfg, gen, bus)}
}

func (s *rhythmScreen) start() {
	s.judge.Start()
}

func (s *rhythmScreen) animated() bool { return true }

func (s *rhythmScreen) key(msg tea.KeyMsg) (evaluate.Verdict, bool) {
	pressed := msg.String()
	if len(pressed) != 1 {
		return evaluate.Verdict{}, false
	}
	lane := strings.Index(laneKeySeq, pressed)
	if lane < 0 {
		return evaluate.Verdict{}, false
	}
	s.judge.Press(lane)
	return s.verdict()
}

func (s *rhythmScreen) frame(dt float64) (evaluate.Verdict, bool) {
	s.judge.Advance(dt)
	return s.verdict()
}

func (s *rhythmScreen) verdict() (evaluate.Verdict, bool) {
	if s.judge.Phase() != timing.Finished {
		return evaluate.Verdict{}, false
	}
	s.last = s.judge.Result()
	return evaluate.Rhythm(s.last), true
}

func (s *rhythmScreen) view() string {
	lanes := len(laneKeySeq)
	c := newCanvas(lanes*laneWidth, laneRows)
	for lane := 0; lane < lanes; lane++ {
		style := mutedStyle
		glyph := '_'
		if s.judge.Flash(lane) {
			style = passStyle
			glyph = '='
		}
		c.fillRow(receptorRow, lane*laneWidth+1, lane*laneWidth+laneWidth-1, glyph, style)
	}
	for _, n := range s.judge.Visible() {
		row := int(math.Round(n.Progress * receptorRow))
		if row < 0 || row > receptorRow {
			continue
		}
		style := accentStyle
		if n.Status == timing.NoteHit {
			style = passStyle
		} else if n.Status == timing.NoteMissed {
			style = failStyle
		}
		c.fillRow(row, n.Lane*laneWidth+1, n.Lane*laneWidth+laneWidth-1, 'o', style)
	}

	var labels strings.Builder
	for _, r := range strings.ToUpper(laneKeySeq) {
		labels.WriteString(fmt.Sprintf("  %c  ", r))
	}
	hits, misses := s.judge.Tally()
	status := fmt.Sprintf("Hits %d   Misses %d   Combo %d", hits, misses, s.judge.Combo())
	return strings.Join([]string{
		arenaStyle.Render(c.render()),
		" " + textStyle.Render(labels.String()),
		mutedStyle.Render(status),
	}, "\n")
}

func (s *rhythmScreen) summary() string {
	return mutedStyle.Render(fmt.Sprintf("Accuracy %.0f%% (%d/%d)   Max combo %d   Stray presses %d",
		s.last.Accuracy*100, s.last.Hits, s.last.Total, s.last.MaxCombo, s.last.Strays))
}

func (s *rhythmScreen) bindings() []key.Binding {
	return []key.Binding{s.keys.Lanes}
}
