package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/humangate/internal/evaluate"
	"github.com/verte-zerg/humangate/internal/model"
)

const face = `  .-------.
 |  o   o  |
 |    ^    |
 |  -----  |
  '-------'`

type emotionScreen struct {
	cfg      model.EmotionConfig
	keys     keyMap
	cursor   int
	selected string
	answered string
}

func newEmotionScreen(cfg model.EmotionConfig, keys keyMap) *emotionScreen {
	return &emotionScreen{cfg: cfg, keys: keys}
}

func (s *emotionScreen) start() {
	s.cursor = 0
	s.selected = ""
}

func (s *emotionScreen) animated() bool { return false }

func (s *emotionScreen) key(msg tea.KeyMsg) (evaluate.Verdict, bool) {
	count := len(s.cfg.Options)
	if count == 0 {
		return evaluate.Verdict{}, false
	}
	switch {
	case key.Matches(msg, s.keys.Up):
		s.cursor = (s.cursor + count - 1) % count
	case key.Matches(msg, s.keys.Down):
		s.cursor = (s.cursor + 1) % count
	case key.Matches(msg, s.keys.Action):
		s.selected = s.cfg.Options[s.cursor].Value
	case key.Matches(msg, s.keys.Submit):
		v, err := evaluate.Emotion(s.selected, s.cfg)
		if err != nil {
			return evaluate.Verdict{}, false
		}
		s.answered = s.selected
		return v, true
	}
	return evaluate.Verdict{}, false
}

func (s *emotionScreen) frame(float64) (evaluate.Verdict, bool) {
	return evaluate.Verdict{}, false
}

func (s *emotionScreen) view() string {
	lines := []string{cardStyle.Render(textStyle.Render(face)), ""}
	for i, opt := range s.cfg.Options {
		label := fmt.Sprintf("%s: %s", strings.ToUpper(opt.Value), opt.Label)
		lines = append(lines, optionLine(label, i == s.cursor, opt.Value == s.selected))
	}
	return strings.Join(lines, "\n")
}

func (s *emotionScreen) summary() string {
	return mutedStyle.Render(fmt.Sprintf("You selected %q.", s.answered))
}

func (s *emotionScreen) bindings() []key.Binding {
	submit := s.keys.Submit
	submit.SetEnabled(s.selected != "")
	return []key.Binding{withHelp(s.keys.Up, "↑/↓", "move"), s.keys.Action, submit}
}
