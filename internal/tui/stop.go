package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/humangate/internal/evaluate"
	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/timing"
)

type stopScreen struct {
	keys keyMap
	bar  *timing.StopBar
	last timing.StopJudgement
}

func newStopScreen(cfg model.StopConfig, keys keyMap) *stopScreen {
	return &stopScreen{keys: keys, bar: timing.NewStopBar(cfg)}
}

func (s *stopScreen) start() {
	s.bar.Start()
}

func (s *stopScreen) animated() bool { return true }

func (s *stopScreen) key(msg tea.KeyMsg) (evaluate.Verdict, bool) {
	if !key.Matches(msg, s.keys.Action) {
		return evaluate.Verdict{}, false
	}
	j, ok := s.bar.Stop()
	if !ok {
		return evaluate.Verdict{}, false
	}
	s.last = j
	return evaluate.Stop(j), true
}

func (s *stopScreen) frame(dt float64) (evaluate.Verdict, bool) {
	s.bar.Advance(dt)
	return evaluate.Verdict{}, false
}

func (s *stopScreen) view() string {
	cfg := s.bar.Config()
	cols := int(cfg.TrackWidth / cellW)
	c := newCanvas(cols, 1)
	c.fillRow(0, 0, cols, '-', mutedStyle)

	targetStart := int(math.Round((s.bar.TargetCenter() - cfg.TargetWidth/2) / cellW))
	targetEnd := int(math.Round((s.bar.TargetCenter() + cfg.TargetWidth/2) / cellW))
	c.fillRow(0, targetStart, targetEnd, '=', accentStyle)

	markerStart := int(math.Round(s.bar.Position() / cellW))
	markerEnd := int(math.Round((s.bar.Position() + cfg.MarkerWidth) / cellW))
	if markerEnd <= markerStart {
		markerEnd = markerStart + 1
	}
	c.fillRow(0, markerStart, markerEnd, '#', cursorStyle)

	return strings.Join([]string{
		arenaStyle.Render(c.render()),
		mutedStyle.Render(fmt.Sprintf("Attempt %d", s.bar.Runs())),
	}, "\n")
}

func (s *stopScreen) summary() string {
	return mutedStyle.Render(fmt.Sprintf("Distance %.1f px   Accuracy %.1f%%", s.last.Distance, s.last.Accuracy))
}

func (s *stopScreen) bindings() []key.Binding {
	return []key.Binding{withHelp(s.keys.Action, "space", "stop")}
}
