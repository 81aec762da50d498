// Package golf simulates the motor-control mini golf course.
package golf

import "math"

// FrameUnit is the reference frame length, in seconds, that the friction
// coefficient is expressed against.
const FrameUnit = 1.0 / 60.0

// Vec is a 2-D vector in playfield pixels.
type Vec struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v*k.
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Body is the ball: position, velocity in px/s and radius.
type Body struct {
	Pos    Vec
	Vel    Vec
	Radius float64
}

// Obstacle is an axis-aligned wall sliding vertically between Min and Max.
type Obstacle struct {
	X, Y          float64
	Width, Height float64
	Speed         float64
	Dir           float64
	Min, Max      float64
}

// Hazard is a circular decoration whose rim deflects the ball.
type Hazard struct {
	Center Vec
	Radius float64
	// Ring is how far inside the rim a contact still counts.
	Ring float64
}

// Field holds the static course geometry and material constants.
type Field struct {
	Width, Height  float64
	Goal           Vec
	GoalRadius     float64
	Hazard         *Hazard
	Friction       float64
	Restitution    float64
	StallSpeed     float64
	AstrayDistance float64
}

// Outcome is the terminal classification of a step.
type Outcome int

// Step outcomes.
const (
	InPlay Outcome = iota
	Holed
	Reset
)

func (o Outcome) String() string {
	switch o {
	case InPlay:
		return "in-play"
	case Holed:
		return "holed"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Step advances the ball by dt seconds against the given obstacles.
// Obstacles are not moved; see MoveObstacles.
func Step(b Body, obstacles []Obstacle, f Field, dt float64) (Body, Outcome) {
	next, outcome, _ := step(b, obstacles, f, dt)
	return next, outcome
}

func step(b Body, obstacles []Obstacle, f Field, dt float64) (Body, Outcome, bool) {
	if dt <= 0 {
		return b, InPlay, false
	}
	decay := math.Pow(f.Friction, dt/FrameUnit)
	b.Vel = b.Vel.Scale(decay)
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))

	r := b.Radius
	bounced := false
	if b.Pos.X-r < 0 || b.Pos.X+r > f.Width {
		b.Vel.X *= -f.Restitution
		b.Pos.X = clamp(b.Pos.X, r, f.Width-r)
		bounced = true
	}
	if b.Pos.Y-r < 0 || b.Pos.Y+r > f.Height {
		b.Vel.Y *= -f.Restitution
		b.Pos.Y = clamp(b.Pos.Y, r, f.Height-r)
		bounced = true
	}

	for _, o := range obstacles {
		if b.Pos.X+r > o.X && b.Pos.X-r < o.X+o.Width &&
			b.Pos.Y+r > o.Y && b.Pos.Y-r < o.Y+o.Height {
			b.Vel = b.Vel.Scale(-f.Restitution)
			bounced = true
		}
	}

	if h := f.Hazard; h != nil {
		d := b.Pos.Sub(h.Center).Len()
		if d < h.Radius+r && d > h.Radius-h.Ring {
			b.Vel = b.Vel.Scale(-f.Restitution)
			bounced = true
		}
	}

	if !finite(b.Pos) || !finite(b.Vel) {
		return b, Reset, bounced
	}
	toGoal := b.Pos.Sub(f.Goal).Len()
	if toGoal < f.GoalRadius {
		b.Pos = f.Goal
		b.Vel = Vec{}
		return b, Holed, bounced
	}
	if b.Vel.Len() < f.StallSpeed || toGoal > f.AstrayDistance {
		return b, Reset, bounced
	}
	return b, InPlay, bounced
}

// MoveObstacles slides each obstacle by dt seconds, reversing at its bounds.
func MoveObstacles(obstacles []Obstacle, dt float64) {
	for i := range obstacles {
		o := &obstacles[i]
		o.Y += o.Dir * o.Speed * dt
		if o.Y > o.Max {
			o.Y = o.Max
			o.Dir = -1
		}
		if o.Y < o.Min {
			o.Y = o.Min
			o.Dir = 1
		}
	}
}

func finite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
