// Package evaluate turns a submitted answer into a pass/fail verdict and
// records it on the session.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/timing"
)

// ErrNoSelection is returned when an answer is submitted without a choice.
var ErrNoSelection = errors.New("no selection")

// HintAfter is the number of failed identify attempts after which the
// target hint is shown.
const HintAfter = 2

// Verdict is the outcome of one terminal evaluation.
type Verdict struct {
	Passed bool
	Score  *float64
	// Counted is set when attempts were recorded as they happened, so
	// Apply must not add another one.
	Counted bool
}

// IdentifyVerdict adds the cells that made an identify attempt wrong.
type IdentifyVerdict struct {
	Verdict
	Missing []int
	Extra   []int
}

// Recorder is the slice of the session the evaluators write to.
type Recorder interface {
	MarkComplete(ctx context.Context, id model.ChallengeID, passed bool, score *float64) error
	IncrementAttempts(ctx context.Context, id model.ChallengeID) error
}

// Counting checks a counted answer. The default is an exact match; a
// positive AcceptableRange accepts answers within that distance.
func Counting(answer *int, cfg model.CounterConfig) (Verdict, error) {
	if answer == nil {
		return Verdict{}, ErrNoSelection
	}
	diff := *answer - cfg.Correct
	if diff < 0 {
		diff = -diff
	}
	if cfg.AcceptableRange > 0 {
		return Verdict{Passed: diff <= cfg.AcceptableRange}, nil
	}
	return Verdict{Passed: diff == 0}, nil
}

// Identify requires the selected cells to equal the target set exactly.
func Identify(selected []int, cfg model.IdentifyConfig) (IdentifyVerdict, error) {
	if len(selected) == 0 {
		return IdentifyVerdict{}, ErrNoSelection
	}
	chosen := make(map[int]bool, len(selected))
	for _, cell := range selected {
		chosen[cell] = true
	}
	targets := make(map[int]bool, len(cfg.Targets))
	for _, cell := range cfg.Targets {
		targets[cell] = true
	}

	var v IdentifyVerdict
	for cell := range targets {
		if !chosen[cell] {
			v.Missing = append(v.Missing, cell)
		}
	}
	for cell := range chosen {
		if !targets[cell] {
			v.Extra = append(v.Extra, cell)
		}
	}
	sort.Ints(v.Missing)
	sort.Ints(v.Extra)
	v.Passed = len(v.Missing) == 0 && len(v.Extra) == 0
	return v, nil
}

// Message explains a failed identify attempt.
func (v IdentifyVerdict) Message() string {
	switch {
	case v.Passed:
		return "Verification accepted."
	case len(v.Missing) > 0 && len(v.Extra) > 0:
		return fmt.Sprintf("You missed %d target(s) and selected %d incorrect cell(s).", len(v.Missing), len(v.Extra))
	case len(v.Missing) > 0:
		return fmt.Sprintf("You missed %d target(s).", len(v.Missing))
	default:
		return fmt.Sprintf("You selected %d incorrect cell(s).", len(v.Extra))
	}
}

// ShowHint reports whether the identify hint should be visible after the
// given number of recorded attempts.
func ShowHint(failures int) bool {
	return failures >= HintAfter
}

// Emotion compares the chosen label with the single correct one.
func Emotion(selected string, cfg model.EmotionConfig) (Verdict, error) {
	if selected == "" {
		return Verdict{}, ErrNoSelection
	}
	return Verdict{Passed: selected == cfg.Correct}, nil
}

// Stop scores a stop bar judgement by its accuracy.
func Stop(j timing.StopJudgement) Verdict {
	score := j.Accuracy
	return Verdict{Passed: j.Passed, Score: &score}
}

// Rhythm scores a rhythm session as a hit percentage.
func Rhythm(res timing.RhythmResult) Verdict {
	score := res.Accuracy * 100
	return Verdict{Passed: res.Passed, Score: &score}
}

// Golf is the verdict for a sunk ball. Every launch was already recorded
// as an attempt.
func Golf() Verdict {
	return Verdict{Passed: true, Counted: true}
}

// Apply records v for id. Every evaluation counts as one attempt unless
// v.Counted; a pass also marks the challenge complete.
func Apply(ctx context.Context, rec Recorder, id model.ChallengeID, v Verdict) error {
	if !v.Counted {
		if err := rec.IncrementAttempts(ctx, id); err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}
	}
	if !v.Passed {
		return nil
	}
	if err := rec.MarkComplete(ctx, id, true, v.Score); err != nil {
		return fmt.Errorf("failed to mark %s complete: %w", id, err)
	}
	return nil
}
