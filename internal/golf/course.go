package golf

import (
	"math"

	"github.com/verte-zerg/humangate/internal/feedback"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/model"
)

const (
	// minDrag is the shortest gesture that launches the ball.
	minDrag    = 0.5
	grabMargin = 20
	// Drag length is divided by powerDivisor and capped at maxPower for the
	// power bar.
	powerDivisor = 5
	maxPower     = 15

	wallMinY = 60
	wallMaxY = 260
)

// Phase is the course interaction state.
type Phase int

// Course phases.
const (
	Aiming Phase = iota
	Dragging
	Rolling
	Sunk
)

var (
	startPos = Vec{X: 80, Y: 300}
	holePos  = Vec{X: 550, Y: 200}
	smiley   = Hazard{Center: Vec{X: 100, Y: 100}, Radius: 40, Ring: 10}

	wallTemplates = []Obstacle{
		{X: 300, Width: 20, Height: 100, Speed: 72},
		{X: 450, Width: 20, Height: 100, Speed: 120},
	}
)

// Course is one golf challenge instance: the ball, the sliding walls and the
// drag gesture in progress.
type Course struct {
	cfg   model.GolfConfig
	field Field
	gen   *generator.Generator
	bus   *feedback.Bus

	ball  Body
	walls []Obstacle
	phase Phase

	dragStart Vec
	dragEnd   Vec
	resets    int
}

// NewCourse lays out the standard course.
func NewCourse(cfg model.GolfConfig, gen *generator.Generator, bus *feedback.Bus) *Course {
	hazard := smiley
	c := &Course{
		cfg: cfg,
		gen: gen,
		bus: bus,
		field: Field{
			Width:          cfg.Width,
			Height:         cfg.Height,
			Goal:           holePos,
			GoalRadius:     cfg.GoalRadius,
			Hazard:         &hazard,
			Friction:       cfg.Friction,
			Restitution:    cfg.Restitution,
			StallSpeed:     cfg.StallSpeed,
			AstrayDistance: cfg.AstrayDistance,
		},
	}
	c.reset()
	return c
}

func (c *Course) reset() {
	c.ball = Body{Pos: startPos, Radius: c.cfg.BallRadius}
	c.walls = make([]Obstacle, len(wallTemplates))
	for i, tmpl := range wallTemplates {
		w := tmpl
		w.Y = float64(c.gen.Between(wallMinY, wallMaxY))
		w.Dir = 1
		w.Min = wallMinY
		w.Max = wallMaxY
		c.walls[i] = w
	}
	c.phase = Aiming
}

// Field returns the static geometry.
func (c *Course) Field() Field { return c.field }

// HoleRadius is the drawn radius of the cup.
func (c *Course) HoleRadius() float64 { return c.cfg.HoleRadius }

// Ball returns the current ball state.
func (c *Course) Ball() Body { return c.ball }

// Walls returns a copy of the sliding walls.
func (c *Course) Walls() []Obstacle {
	return append([]Obstacle(nil), c.walls...)
}

// Phase returns the interaction phase.
func (c *Course) Phase() Phase { return c.phase }

// Resets counts failure resets since the course was created.
func (c *Course) Resets() int { return c.resets }

// Aim returns the drag vector while dragging.
func (c *Course) Aim() (Vec, bool) {
	if c.phase != Dragging {
		return Vec{}, false
	}
	return c.dragEnd.Sub(c.dragStart), true
}

// Power is the current drag strength in [0, 1].
func (c *Course) Power() float64 {
	drag, ok := c.Aim()
	if !ok {
		return 0
	}
	return math.Min(drag.Len()/powerDivisor, maxPower) / maxPower
}

// Press begins a drag when p is close enough to the resting ball.
func (c *Course) Press(p Vec) bool {
	if c.phase != Aiming {
		return false
	}
	if p.Sub(c.ball.Pos).Len() >= c.ball.Radius+grabMargin {
		return false
	}
	c.phase = Dragging
	c.dragStart = p
	c.dragEnd = p
	return true
}

// Drag moves the end of the gesture.
func (c *Course) Drag(p Vec) {
	if c.phase != Dragging {
		return
	}
	c.dragEnd = p
}

// Cancel abandons the gesture without launching.
func (c *Course) Cancel() {
	if c.phase == Dragging {
		c.phase = Aiming
	}
}

// Release launches the ball opposite to the drag. It reports false, and the
// ball stays put, when no drag is active or the drag is too short to give a
// direction. A true result is one attempt.
func (c *Course) Release() (Vec, bool) {
	drag, ok := c.Aim()
	if !ok {
		return Vec{}, false
	}
	if drag.Len() <= minDrag {
		c.phase = Aiming
		return Vec{}, false
	}
	c.ball.Vel = drag.Scale(-c.cfg.PowerScale)
	c.phase = Rolling
	return c.ball.Vel, true
}

// Tick advances the course by dt seconds of wall-clock time. Walls always
// move; the ball integrates only while rolling, in sub-steps no longer than
// one frame unit.
func (c *Course) Tick(dt float64) Outcome {
	if dt <= 0 {
		return InPlay
	}
	if c.phase != Rolling {
		MoveObstacles(c.walls, dt)
		return InPlay
	}
	steps := int(math.Ceil(dt / FrameUnit))
	h := dt / float64(steps)
	for i := 0; i < steps; i++ {
		MoveObstacles(c.walls, h)
		next, outcome, bounced := step(c.ball, c.walls, c.field, h)
		c.ball = next
		if bounced {
			c.bus.Emit(feedback.Event{Challenge: model.Golf, Kind: feedback.Bounce})
		}
		switch outcome {
		case Holed:
			c.phase = Sunk
			c.bus.Emit(feedback.Event{Challenge: model.Golf, Kind: feedback.Hit})
			return Holed
		case Reset:
			c.resets++
			c.reset()
			c.bus.Emit(feedback.Event{Challenge: model.Golf, Kind: feedback.Miss})
			return Reset
		}
	}
	return InPlay
}
