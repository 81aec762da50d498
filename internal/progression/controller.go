// Package progression drives the fixed challenge sequence.
package progression

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/humangate/internal/evaluate"
	"github.com/verte-zerg/humangate/internal/model"
)

// Phase is the state of the current challenge instance.
type Phase int

// Controller phases.
const (
	Instructions Phase = iota
	Active
	Passed
	Failed
	Complete
)

func (p Phase) String() string {
	switch p {
	case Instructions:
		return "instructions"
	case Active:
		return "active"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Progress is the session surface the controller needs.
type Progress interface {
	evaluate.Recorder
	CurrentIndex() int
	Result(id model.ChallengeID) (model.ChallengeResult, bool)
	Reset(ctx context.Context) error
	State() model.SessionState
}

// Navigator receives opaque screen transitions.
type Navigator interface {
	Goto(id model.ChallengeID)
	Complete()
}

// RunRecorder persists finished evaluations for history.
type RunRecorder interface {
	InsertRun(ctx context.Context, run model.Run) (int64, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithNavigator sets the transition sink.
func WithNavigator(nav Navigator) Option {
	return func(c *Controller) { c.nav = nav }
}

// WithRunRecorder enables run history.
func WithRunRecorder(runs RunRecorder) Option {
	return func(c *Controller) { c.runs = runs }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller is the per-challenge state machine. The position in the
// sequence is always read from the session's completion count.
type Controller struct {
	progress Progress
	defs     []model.ChallengeDefinition
	nav      Navigator
	runs     RunRecorder
	logger   *zap.Logger
	now      func() time.Time

	phase   Phase
	last    evaluate.Verdict
	settled model.ChallengeDefinition
}

// New returns a controller positioned on the session's current challenge.
func New(progress Progress, opts ...Option) *Controller {
	c := &Controller{
		progress: progress,
		defs:     Sequence(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Index() >= len(c.defs) {
		c.phase = Complete
	}
	return c
}

// Definitions returns the challenge sequence.
func (c *Controller) Definitions() []model.ChallengeDefinition {
	return append([]model.ChallengeDefinition(nil), c.defs...)
}

// Index is the number of completed challenges.
func (c *Controller) Index() int {
	return c.progress.CurrentIndex()
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Last returns the most recent verdict.
func (c *Controller) Last() evaluate.Verdict { return c.last }

// Current returns the challenge on screen. After a pass the session has
// already moved on, so the challenge just passed is returned until Advance.
func (c *Controller) Current() (model.ChallengeDefinition, bool) {
	if c.phase == Passed {
		return c.settled, true
	}
	idx := c.Index()
	if idx < 0 || idx >= len(c.defs) {
		return model.ChallengeDefinition{}, false
	}
	return c.defs[idx], true
}

// Begin leaves the instructions screen.
func (c *Controller) Begin() bool {
	if c.phase != Instructions {
		return false
	}
	c.phase = Active
	return true
}

// Finish records the verdict for the active challenge. It is a no-op
// outside the Active phase.
func (c *Controller) Finish(ctx context.Context, v evaluate.Verdict) error {
	if c.phase != Active {
		return nil
	}
	def, ok := c.Current()
	if !ok {
		return nil
	}
	if err := evaluate.Apply(ctx, c.progress, def.ID, v); err != nil {
		return err
	}
	c.last = v
	c.record(ctx, def.ID, v)
	if v.Passed {
		c.settled = def
		c.phase = Passed
	} else {
		c.phase = Failed
	}
	c.logger.Debug("challenge evaluated",
		zap.String("challenge", string(def.ID)),
		zap.Bool("passed", v.Passed),
	)
	return nil
}

// RecordAttempt counts one attempt for the active challenge without
// ending it. Challenges that take several tries before a verdict, such as
// golf shots, report each try here. It is a no-op outside the Active phase.
func (c *Controller) RecordAttempt(ctx context.Context) error {
	if c.phase != Active {
		return nil
	}
	def, ok := c.Current()
	if !ok {
		return nil
	}
	if err := c.progress.IncrementAttempts(ctx, def.ID); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

func (c *Controller) record(ctx context.Context, id model.ChallengeID, v evaluate.Verdict) {
	if c.runs == nil {
		return
	}
	res, _ := c.progress.Result(id)
	run := model.Run{
		SessionID: c.progress.State().SessionID,
		Challenge: id,
		Passed:    v.Passed,
		Score:     v.Score,
		Attempts:  res.Attempts,
		EndedAt:   c.now().UTC(),
	}
	if _, err := c.runs.InsertRun(ctx, run); err != nil {
		c.logger.Warn("failed to record run", zap.String("challenge", string(id)), zap.Error(err))
	}
}

// Retry returns a failed challenge to its instructions.
func (c *Controller) Retry() bool {
	if c.phase != Failed {
		return false
	}
	c.phase = Instructions
	return true
}

// Advance moves past a passed challenge to the next one, or to Complete.
func (c *Controller) Advance() bool {
	if c.phase != Passed {
		return false
	}
	c.settled = model.ChallengeDefinition{}
	c.phase = Instructions
	next, ok := c.Current()
	if !ok {
		c.phase = Complete
		if c.nav != nil {
			c.nav.Complete()
		}
		return true
	}
	if c.nav != nil {
		c.nav.Goto(next.ID)
	}
	return true
}

// Restart clears the session and returns to the first challenge.
func (c *Controller) Restart(ctx context.Context) error {
	if err := c.progress.Reset(ctx); err != nil {
		return fmt.Errorf("failed to restart: %w", err)
	}
	c.phase = Instructions
	c.last = evaluate.Verdict{}
	c.settled = model.ChallengeDefinition{}
	if c.nav != nil && len(c.defs) > 0 {
		c.nav.Goto(c.defs[0].ID)
	}
	return nil
}
