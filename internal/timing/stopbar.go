// Package timing judges player actions against moving or scheduled targets.
package timing

import (
	"math"

	"github.com/verte-zerg/humangate/internal/model"
)

// StopPhase is the state of a stop bar run.
type StopPhase int

// Stop bar phases.
const (
	Idle StopPhase = iota
	Running
	Stopped
)

// StopJudgement is the result of freezing the marker.
type StopJudgement struct {
	Position float64
	Distance float64
	Accuracy float64
	Passed   bool
}

// StopBar is a marker sweeping back and forth along a 1-D track.
type StopBar struct {
	cfg   model.StopConfig
	pos   float64
	dir   float64
	phase StopPhase
	last  StopJudgement
	runs  int
}

// NewStopBar returns an idle stop bar.
func NewStopBar(cfg model.StopConfig) *StopBar {
	return &StopBar{cfg: cfg, dir: 1}
}

// Accuracy maps a distance to a 0-100 score, reaching zero at tolerance.
func Accuracy(distance, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0
	}
	return math.Max(0, 100-(distance/tolerance)*100)
}

// TargetCenter is the track position the marker center should stop on.
func (s *StopBar) TargetCenter() float64 {
	return (s.cfg.TrackWidth-s.cfg.TargetWidth)/2 + s.cfg.TargetWidth/2
}

// Config returns the track geometry.
func (s *StopBar) Config() model.StopConfig { return s.cfg }

// Phase returns the current phase.
func (s *StopBar) Phase() StopPhase { return s.phase }

// Position is the left edge of the marker.
func (s *StopBar) Position() float64 { return s.pos }

// Runs counts how many times the bar has been started.
func (s *StopBar) Runs() int { return s.runs }

// Last returns the most recent judgement.
func (s *StopBar) Last() (StopJudgement, bool) {
	return s.last, s.phase == Stopped
}

// Start puts the marker at the left end moving right.
func (s *StopBar) Start() {
	s.pos = 0
	s.dir = 1
	s.phase = Running
	s.last = StopJudgement{}
	s.runs++
}

// Advance moves the marker by dt seconds, folding any overshoot back from
// the track ends.
func (s *StopBar) Advance(dt float64) {
	if s.phase != Running || dt <= 0 {
		return
	}
	limit := s.cfg.TrackWidth - s.cfg.MarkerWidth
	if limit <= 0 {
		return
	}
	s.pos += s.dir * s.cfg.Speed * dt
	for s.pos < 0 || s.pos > limit {
		if s.pos > limit {
			s.pos = 2*limit - s.pos
			s.dir = -1
		} else {
			s.pos = -s.pos
			s.dir = 1
		}
	}
}

// Stop freezes the marker and judges it. It reports false when the marker
// is not running.
func (s *StopBar) Stop() (StopJudgement, bool) {
	if s.phase != Running {
		return StopJudgement{}, false
	}
	s.phase = Stopped
	s.last = s.judgeAt(s.pos + s.cfg.MarkerWidth/2)
	return s.last, true
}

// JudgeCenter scores a marker center position without changing state.
func (s *StopBar) JudgeCenter(center float64) StopJudgement {
	return s.judgeAt(center)
}

func (s *StopBar) judgeAt(center float64) StopJudgement {
	distance := math.Abs(center - s.TargetCenter())
	return StopJudgement{
		Position: center,
		Distance: distance,
		Accuracy: Accuracy(distance, s.cfg.Tolerance),
		Passed:   distance <= s.cfg.Tolerance,
	}
}

// Reset returns the bar to idle.
func (s *StopBar) Reset() {
	s.pos = 0
	s.dir = 1
	s.phase = Idle
	s.last = StopJudgement{}
}
