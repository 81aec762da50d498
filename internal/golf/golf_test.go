package golf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/humangate/internal/config"
	"github.com/verte-zerg/humangate/internal/feedback"
	"github.com/verte-zerg/humangate/internal/generator"
)

func openField() Field {
	return Field{
		Width:          600,
		Height:         400,
		Goal:           Vec{X: 550, Y: 200},
		GoalRadius:     10,
		Friction:       0.986,
		Restitution:    0.8,
		StallSpeed:     6,
		AstrayDistance: 500,
	}
}

func newTestCourse(seed int64) *Course {
	return NewCourse(config.Defaults().Golf, generator.NewSeeded(seed), nil)
}

func TestReleaseLaunchesOppositeDrag(t *testing.T) {
	c := newTestCourse(1)
	ball := c.Ball().Pos
	require.True(t, c.Press(ball))
	c.Drag(ball.Add(Vec{X: 30, Y: -40}))

	vel, ok := c.Release()
	require.True(t, ok)
	assert.Equal(t, Vec{X: -300, Y: 400}, vel)
	assert.Equal(t, Vec{X: -300, Y: 400}, c.Ball().Vel)
	assert.Equal(t, Rolling, c.Phase())
}

func TestZeroDragDoesNotLaunch(t *testing.T) {
	c := newTestCourse(1)
	ball := c.Ball().Pos
	require.True(t, c.Press(ball))

	_, ok := c.Release()
	assert.False(t, ok)
	assert.Equal(t, Aiming, c.Phase())
	assert.Equal(t, Vec{}, c.Ball().Vel)
	assert.False(t, math.IsNaN(c.Power()))
}

func TestPressAwayFromBallIgnored(t *testing.T) {
	c := newTestCourse(1)
	assert.False(t, c.Press(Vec{X: 400, Y: 50}))
	assert.Equal(t, Aiming, c.Phase())
	_, ok := c.Release()
	assert.False(t, ok)
}

func TestInputIgnoredWhileRolling(t *testing.T) {
	c := newTestCourse(1)
	ball := c.Ball().Pos
	require.True(t, c.Press(ball))
	c.Drag(ball.Add(Vec{X: -20}))
	_, ok := c.Release()
	require.True(t, ok)

	assert.False(t, c.Press(c.Ball().Pos))
	_, ok = c.Release()
	assert.False(t, ok)
}

func TestPowerCapsAtOne(t *testing.T) {
	c := newTestCourse(1)
	ball := c.Ball().Pos
	require.True(t, c.Press(ball))
	c.Drag(ball.Add(Vec{X: 1000}))
	assert.InDelta(t, 1.0, c.Power(), 1e-9)
	c.Drag(ball.Add(Vec{X: 37.5}))
	assert.InDelta(t, 0.5, c.Power(), 1e-9)
}

func TestStepSinksBallOnClearPath(t *testing.T) {
	f := openField()
	b := Body{Pos: Vec{X: 520, Y: 200}, Vel: Vec{X: 300}, Radius: 8}
	outcome := InPlay
	for i := 0; i < 20 && outcome == InPlay; i++ {
		b, outcome = Step(b, nil, f, FrameUnit)
	}
	require.Equal(t, Holed, outcome)
	assert.Equal(t, f.Goal, b.Pos)
	assert.Equal(t, Vec{}, b.Vel)
}

func TestFrictionIsFrameRateIndependent(t *testing.T) {
	f := openField()
	f.StallSpeed = 0
	start := Body{Pos: Vec{X: 200, Y: 200}, Vel: Vec{X: 60, Y: 30}, Radius: 8}

	coarse, _ := Step(start, nil, f, FrameUnit)
	fine := start
	fine, _ = Step(fine, nil, f, FrameUnit/2)
	fine, _ = Step(fine, nil, f, FrameUnit/2)

	assert.InDelta(t, coarse.Vel.X, fine.Vel.X, 1e-9)
	assert.InDelta(t, coarse.Vel.Y, fine.Vel.Y, 1e-9)
	assert.InDelta(t, 60*0.986, coarse.Vel.X, 1e-9)
}

func TestBoundaryReflection(t *testing.T) {
	f := openField()
	b := Body{Pos: Vec{X: 590, Y: 100}, Vel: Vec{X: 600}, Radius: 8}
	next, outcome := Step(b, nil, f, FrameUnit)
	assert.Equal(t, InPlay, outcome)
	assert.Equal(t, 592.0, next.Pos.X)
	assert.InDelta(t, -600*0.986*0.8, next.Vel.X, 1e-9)
}

func TestObstacleInvertsBothComponents(t *testing.T) {
	f := openField()
	wall := Obstacle{X: 300, Y: 150, Width: 20, Height: 100}
	b := Body{Pos: Vec{X: 295, Y: 200}, Vel: Vec{X: 120, Y: 60}, Radius: 8}
	next, _ := Step(b, []Obstacle{wall}, f, FrameUnit)
	assert.Less(t, next.Vel.X, 0.0)
	assert.Less(t, next.Vel.Y, 0.0)
	assert.InDelta(t, -120*0.986*0.8, next.Vel.X, 1e-9)
}

func TestHazardOnlyDeflectsNearRim(t *testing.T) {
	f := openField()
	f.Hazard = &Hazard{Center: Vec{X: 100, Y: 100}, Radius: 40, Ring: 10}

	rim := Body{Pos: Vec{X: 140, Y: 100}, Vel: Vec{X: -60}, Radius: 8}
	next, _ := Step(rim, nil, f, FrameUnit)
	assert.Greater(t, next.Vel.X, 0.0, "rim contact should bounce")

	inside := Body{Pos: Vec{X: 110, Y: 100}, Vel: Vec{X: -60}, Radius: 8}
	next, _ = Step(inside, nil, f, FrameUnit)
	assert.Less(t, next.Vel.X, 0.0, "interior should not bounce")
}

func TestStallAndAstrayReset(t *testing.T) {
	f := openField()
	slow := Body{Pos: Vec{X: 200, Y: 200}, Vel: Vec{X: 1}, Radius: 8}
	_, outcome := Step(slow, nil, f, FrameUnit)
	assert.Equal(t, Reset, outcome)

	f.AstrayDistance = 100
	far := Body{Pos: Vec{X: 100, Y: 200}, Vel: Vec{X: 300}, Radius: 8}
	_, outcome = Step(far, nil, f, FrameUnit)
	assert.Equal(t, Reset, outcome)
}

func TestStepRejectsNonFiniteState(t *testing.T) {
	f := openField()
	b := Body{Pos: Vec{X: 200, Y: 200}, Vel: Vec{X: math.NaN()}, Radius: 8}
	_, outcome := Step(b, nil, f, FrameUnit)
	assert.Equal(t, Reset, outcome)
}

func TestMoveObstaclesReverses(t *testing.T) {
	walls := []Obstacle{{Y: 255, Speed: 120, Dir: 1, Min: 60, Max: 260}}
	MoveObstacles(walls, 0.1)
	assert.Equal(t, 260.0, walls[0].Y)
	assert.Equal(t, -1.0, walls[0].Dir)
	MoveObstacles(walls, 0.5)
	assert.Equal(t, 200.0, walls[0].Y)
}

func TestCourseResetsAfterStall(t *testing.T) {
	bus := feedback.NewBus()
	var misses int
	bus.Subscribe(func(e feedback.Event) {
		if e.Kind == feedback.Miss {
			misses++
		}
	})
	c := NewCourse(config.Defaults().Golf, generator.NewSeeded(5), bus)
	start := c.Ball().Pos
	require.True(t, c.Press(start))
	c.Drag(start.Add(Vec{X: 1}))
	_, ok := c.Release()
	require.True(t, ok)

	outcome := InPlay
	for i := 0; i < 600 && outcome == InPlay; i++ {
		outcome = c.Tick(FrameUnit)
	}
	require.Equal(t, Reset, outcome)
	assert.Equal(t, Aiming, c.Phase())
	assert.Equal(t, start, c.Ball().Pos)
	assert.Equal(t, 1, c.Resets())
	assert.Equal(t, 1, misses)
	for _, w := range c.Walls() {
		assert.GreaterOrEqual(t, w.Y, 60.0)
		assert.LessOrEqual(t, w.Y, 260.0)
		assert.Equal(t, 1.0, w.Dir)
	}
}

func TestCourseIsDeterministic(t *testing.T) {
	run := func() (Body, Outcome) {
		c := newTestCourse(11)
		ball := c.Ball().Pos
		c.Press(ball)
		c.Drag(ball.Add(Vec{X: -40, Y: 10}))
		c.Release()
		outcome := InPlay
		dts := []float64{0.016, 0.02, 0.012, 0.05}
		for i := 0; i < 400 && outcome == InPlay; i++ {
			outcome = c.Tick(dts[i%len(dts)])
		}
		return c.Ball(), outcome
	}
	b1, o1 := run()
	b2, o2 := run()
	assert.Equal(t, o1, o2)
	assert.Equal(t, b1, b2)
}

func TestWallsMoveWhileAiming(t *testing.T) {
	c := newTestCourse(2)
	before := c.Walls()
	c.Tick(0.1)
	after := c.Walls()
	assert.NotEqual(t, before[0].Y, after[0].Y)
	assert.Equal(t, Aiming, c.Phase())
}

func TestSimulateZeroDragTakesNoShot(t *testing.T) {
	res := Simulate(config.Defaults().Golf, generator.NewSeeded(3), SimOptions{Shots: 3, MaxFrames: 100})
	assert.Equal(t, 0, res.Shots)
	assert.Equal(t, InPlay, res.Outcome)
	assert.Equal(t, 0, res.Frames)
}

func TestSimulateRetriesAfterReset(t *testing.T) {
	res := Simulate(config.Defaults().Golf, generator.NewSeeded(3), SimOptions{
		Drag:      Vec{X: 1},
		Shots:     2,
		MaxFrames: 1200,
	})
	assert.Equal(t, 2, res.Shots)
	assert.Equal(t, Reset, res.Outcome)
	assert.Equal(t, 2, res.Resets)
	assert.Equal(t, startPos.X, res.FinalX)
}

func TestSimulateIsDeterministic(t *testing.T) {
	opts := SimOptions{Drag: Vec{X: -60, Y: 25}, Shots: 3, Dt: 0.02, MaxFrames: 2000}
	a := Simulate(config.Defaults().Golf, generator.NewSeeded(42), opts)
	b := Simulate(config.Defaults().Golf, generator.NewSeeded(42), opts)
	assert.Equal(t, a, b)
	assert.Positive(t, a.Shots)
}

func TestOutcomeMarshalsByName(t *testing.T) {
	text, err := Holed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "holed", string(text))
}
