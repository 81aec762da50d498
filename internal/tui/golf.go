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
	"github.com/verte-zerg/humangate/internal/golf"
	"github.com/verte-zerg/humangate/internal/model"
)

const (
	// Each terminal cell covers cellW x cellH course pixels.
	cellW       = 10
	cellH       = 20
	powerBarLen = 20
	aimDots     = 6
)

type golfScreen struct {
	cfg    model.GolfConfig
	gen    *generator.Generator
	bus    *feedback.Bus
	keys   keyMap
	course *golf.Course
	cursor golf.Vec
	shots  int
	notice string
	// launched is called once per shot that leaves the ball.
	launched func()
}

func newGolfScreen(cfg model.GolfConfig, gen *generator.Generator, bus *feedback.Bus, keys keyMap, launched func()) *golfScreen {
	return &golfScreen{cfg: cfg, gen: gen, bus: bus, keys: keys, launched: launched}
}

func (s *golfScreen) start() {
	s.course = golf.NewCourse(s.cfg, s.gen, s.bus)
	s.cursor = s.course.Ball().Pos
	s.shots = 0
	s.notice = ""
}

func (s *golfScreen) animated() bool { return true }

func (s *golfScreen) key(msg tea.KeyMsg) (evaluate.Verdict, bool) {
	if s.course == nil {
		return evaluate.Verdict{}, false
	}
	step := golf.Vec{}
	switch {
	case key.Matches(msg, s.keys.Left):
		step.X = -cellW
	case key.Matches(msg, s.keys.Right):
		step.X = cellW
	case key.Matches(msg, s.keys.Up):
		step.Y = -cellH
	case key.Matches(msg, s.keys.Down):
		step.Y = cellH
	case key.Matches(msg, s.keys.Action):
		s.toggleGrab()
		return evaluate.Verdict{}, false
	case key.Matches(msg, s.keys.Cancel):
		s.course.Cancel()
		s.cursor = s.course.Ball().Pos
		return evaluate.Verdict{}, false
	default:
		return evaluate.Verdict{}, false
	}
	if s.course.Phase() != golf.Dragging {
		return evaluate.Verdict{}, false
	}
	s.cursor = s.cursor.Add(step)
	s.course.Drag(s.cursor)
	return evaluate.Verdict{}, false
}

func (s *golfScreen) toggleGrab() {
	switch s.course.Phase() {
	case golf.Aiming:
		s.cursor = s.course.Ball().Pos
		s.course.Press(s.cursor)
	case golf.Dragging:
		s.release()
	}
}

func (s *golfScreen) release() {
	if _, ok := s.course.Release(); ok {
		s.shots++
		s.notice = ""
		if s.launched != nil {
			s.launched()
		}
		return
	}
	s.cursor = s.course.Ball().Pos
}

func (s *golfScreen) mouse(msg tea.MouseMsg, x, y int) {
	if s.course == nil {
		return
	}
	// The arena border takes one cell on each side.
	p := golf.Vec{
		X: float64(x-1)*cellW + cellW/2,
		Y: float64(y-1)*cellH + cellH/2,
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && s.course.Press(p) {
			s.cursor = p
		}
	case tea.MouseActionMotion:
		if s.course.Phase() == golf.Dragging {
			s.cursor = p
			s.course.Drag(p)
		}
	case tea.MouseActionRelease:
		if s.course.Phase() == golf.Dragging {
			s.release()
		}
	}
}

func (s *golfScreen) frame(dt float64) (evaluate.Verdict, bool) {
	if s.course == nil {
		return evaluate.Verdict{}, false
	}
	switch s.course.Tick(dt) {
	case golf.Holed:
		return evaluate.Golf(), true
	case golf.Reset:
		s.cursor = s.course.Ball().Pos
		s.notice = "Ball lost. Course reset."
	}
	return evaluate.Verdict{}, false
}

func (s *golfScreen) view() string {
	if s.course == nil {
		return ""
	}
	field := s.course.Field()
	cols := int(field.Width / cellW)
	rows := int(field.Height / cellH)
	c := newCanvas(cols, rows)

	if field.Hazard != nil {
		drawRing(c, field.Hazard.Center, field.Hazard.Radius)
		cx, cy := toCell(field.Hazard.Center)
		c.set(cx-1, cy, ':', hazardStyle)
		c.set(cx, cy, ')', hazardStyle)
	}
	for _, w := range s.course.Walls() {
		x0, y0 := toCell(golf.Vec{X: w.X, Y: w.Y})
		x1, y1 := toCell(golf.Vec{X: w.X + w.Width - 1, Y: w.Y + w.Height - 1})
		for y := y0; y <= y1; y++ {
			c.fillRow(y, x0, x1+1, '#', wallStyle)
		}
	}
	hx, hy := toCell(field.Goal)
	c.set(hx, hy, 'O', accentStyle)

	if drag, ok := s.course.Aim(); ok && drag.Len() > 0 {
		dir := drag.Scale(-1 / drag.Len())
		dots := int(math.Ceil(s.course.Power() * aimDots))
		for i := 1; i <= dots; i++ {
			x, y := toCell(s.course.Ball().Pos.Add(dir.Scale(float64(i) * cellW * 1.5)))
			c.set(x, y, '.', cursorStyle)
		}
		cx, cy := toCell(s.cursor)
		c.set(cx, cy, '+', cursorStyle)
	}
	bx, by := toCell(s.course.Ball().Pos)
	c.set(bx, by, 'o', textStyle)

	lines := []string{
		arenaStyle.Render(c.render()),
		s.renderPower(),
	}
	if s.notice != "" {
		lines = append(lines, failStyle.Render(s.notice))
	}
	return strings.Join(lines, "\n")
}

func (s *golfScreen) renderPower() string {
	power := s.course.Power()
	filled := int(math.Round(power * powerBarLen))
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", powerBarLen-filled)
	return mutedStyle.Render(fmt.Sprintf("Power [%s] %3d%%   Shots %d   Resets %d",
		bar, int(math.Round(power*100)), s.shots, s.course.Resets()))
}

func (s *golfScreen) summary() string {
	return mutedStyle.Render(fmt.Sprintf("Holed in %d shot(s).", s.shots))
}

func (s *golfScreen) bindings() []key.Binding {
	return []key.Binding{
		withHelp(s.keys.Action, "space", "grab/release"),
		withHelp(s.keys.Left, "←↑↓→/hjkl", "pull back"),
		s.keys.Cancel,
	}
}

func toCell(p golf.Vec) (int, int) {
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

func drawRing(c *canvas, center golf.Vec, radius float64) {
	for deg := 0; deg < 360; deg += 10 {
		rad := float64(deg) * math.Pi / 180
		x, y := toCell(center.Add(golf.Vec{X: math.Cos(rad) * radius, Y: math.Sin(rad) * radius}))
		c.set(x, y, '*', hazardStyle)
	}
}
