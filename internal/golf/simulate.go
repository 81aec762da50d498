package golf

import (
	"github.com/verte-zerg/humangate/internal/feedback"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/model"
)

// SimOptions drives a headless course.
type SimOptions struct {
	// Drag is the gesture offset from the ball, repeated for every shot.
	Drag      Vec
	Shots     int
	Dt        float64
	MaxFrames int
}

// SimResult is the outcome of a headless run.
type SimResult struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Shots   int     `json:"shots" yaml:"shots"`
	Frames  int     `json:"frames" yaml:"frames"`
	Resets  int     `json:"resets" yaml:"resets"`
	Bounces int     `json:"bounces" yaml:"bounces"`
	FinalX  float64 `json:"final_x" yaml:"final_x"`
	FinalY  float64 `json:"final_y" yaml:"final_y"`
}

// Simulate plays up to opts.Shots shots with the same drag and a fixed
// frame length. The same generator seed and options give the same result.
func Simulate(cfg model.GolfConfig, gen *generator.Generator, opts SimOptions) SimResult {
	if opts.Dt <= 0 {
		opts.Dt = FrameUnit
	}
	bus := feedback.NewBus()
	var res SimResult
	bus.Subscribe(func(e feedback.Event) {
		if e.Kind == feedback.Bounce {
			res.Bounces++
		}
	})
	c := NewCourse(cfg, gen, bus)
	res.Outcome = InPlay

	for res.Shots < opts.Shots && res.Outcome != Holed {
		ball := c.Ball().Pos
		c.Press(ball)
		c.Drag(ball.Add(opts.Drag))
		if _, ok := c.Release(); !ok {
			break
		}
		res.Shots++
		res.Outcome = InPlay
		for res.Outcome == InPlay && res.Frames < opts.MaxFrames {
			res.Outcome = c.Tick(opts.Dt)
			res.Frames++
		}
		if res.Outcome == InPlay {
			break
		}
	}
	res.Resets = c.Resets()
	res.FinalX, res.FinalY = c.Ball().Pos.X, c.Ball().Pos.Y
	return res
}
