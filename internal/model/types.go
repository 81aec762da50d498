// Package model defines shared data structures.
package model

import "time"

// ChallengeID identifies one verification step.
type ChallengeID string

// Canonical challenge identifiers.
const (
	Golf     ChallengeID = "golf"
	Stop     ChallengeID = "stop"
	Rhythm   ChallengeID = "rhythm"
	Counter  ChallengeID = "counter"
	Identify ChallengeID = "identify"
	Emotion  ChallengeID = "emotion"
)

// ChallengeResult is the latest stored outcome for a challenge.
type ChallengeResult struct {
	ID       ChallengeID
	Passed   bool
	Score    *float64
	Attempts int
}

// SessionState captures verification progress for one run.
type SessionState struct {
	SessionID string
	Completed []ChallengeID
	Results   map[ChallengeID]ChallengeResult
	StartTime time.Time
}

// ChallengeDefinition describes a step of the fixed sequence.
type ChallengeDefinition struct {
	ID          ChallengeID
	Position    int
	Title       string
	Description string

	// AutoRetry returns a failed challenge to its instructions after the
	// delay. Zero means the player retries explicitly.
	AutoRetry time.Duration
}

// Run is one terminal evaluation kept in the history.
type Run struct {
	SessionID string
	Challenge ChallengeID
	Passed    bool
	Score     *float64
	Attempts  int
	EndedAt   time.Time
}

// Config defines gateway settings.
type Config struct {
	Seed       int64
	StorageKey string
	Golf       GolfConfig
	Stop       StopConfig
	Rhythm     RhythmConfig
	Counter    CounterConfig
	Identify   IdentifyConfig
	Emotion    EmotionConfig
}

// GolfConfig holds the golf course constants.
type GolfConfig struct {
	Width          float64
	Height         float64
	BallRadius     float64
	HoleRadius     float64
	GoalRadius     float64
	Friction       float64
	Restitution    float64
	PowerScale     float64
	StallSpeed     float64
	AstrayDistance float64
}

// StopConfig holds the reaction stop bar constants.
type StopConfig struct {
	TrackWidth  float64
	MarkerWidth float64
	TargetWidth float64
	Speed       float64
	Tolerance   float64
}

// RhythmConfig holds the rhythm chart constants.
type RhythmConfig struct {
	Lanes         int
	Notes         int
	Interval      float64
	TravelTime    float64
	TimingWindow  float64
	PassThreshold float64
	PassTarget    int
}

// CounterConfig holds the repetition counting answer.
type CounterConfig struct {
	Correct int

	// AcceptableRange switches to tolerant matching when positive.
	AcceptableRange int
	Options         []int
}

// IdentifyConfig holds the object identification grid.
type IdentifyConfig struct {
	GridSize int
	Targets  []int
}

// EmotionConfig holds the emotion recognition answer.
type EmotionConfig struct {
	Correct string
	Options []EmotionOption
}

// EmotionOption is one selectable label.
type EmotionOption struct {
	Value string
	Label string
}

// StatsConfig defines filters for run history output.
type StatsConfig struct {
	Challenge ChallengeID
	Since     *time.Time
	Last      int

	// CurveWindow is the moving-average width for score curves.
	CurveWindow int
}

// ChallengeAggregate summarizes runs of one challenge.
type ChallengeAggregate struct {
	Challenge ChallengeID
	Runs      int
	Passed    int
	ScoreSum  float64
	Scored    int
	BestScore float64
	Attempts  int
}
