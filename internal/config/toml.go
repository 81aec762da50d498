// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/humangate/internal/model"
)

// ErrInvalid reports a configuration value outside its allowed range.
var ErrInvalid = errors.New("invalid config")

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Session SessionConfig `toml:"session"`
	Golf    GolfConfig    `toml:"golf"`
	Stop    StopConfig    `toml:"stop"`
	Rhythm  RhythmConfig  `toml:"rhythm"`
	Counter CounterConfig `toml:"counter"`
}

// SessionConfig maps session-related settings.
type SessionConfig struct {
	Seed       *int64  `toml:"seed"`
	StorageKey *string `toml:"storage-key"`
}

// GolfConfig maps golf physics settings.
type GolfConfig struct {
	Friction    *float64 `toml:"friction"`
	Restitution *float64 `toml:"restitution"`
	PowerScale  *float64 `toml:"power-scale"`
	GoalRadius  *float64 `toml:"goal-radius"`
}

// StopConfig maps reaction stop settings.
type StopConfig struct {
	Speed     *float64 `toml:"speed"`
	Tolerance *float64 `toml:"tolerance"`
}

// RhythmConfig maps rhythm settings.
type RhythmConfig struct {
	Notes         *int     `toml:"notes"`
	Interval      *float64 `toml:"interval"`
	TimingWindow  *float64 `toml:"timing-window"`
	PassThreshold *float64 `toml:"pass-threshold"`
	PassTarget    *int     `toml:"pass-target"`
}

// CounterConfig maps repetition counting settings.
type CounterConfig struct {
	Correct         *int `toml:"correct"`
	AcceptableRange *int `toml:"acceptable-range"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Apply overlays set file values onto cfg.
func (f FileConfig) Apply(cfg *model.Config) {
	setInt64(&cfg.Seed, f.Session.Seed)
	setString(&cfg.StorageKey, f.Session.StorageKey)

	setFloat(&cfg.Golf.Friction, f.Golf.Friction)
	setFloat(&cfg.Golf.Restitution, f.Golf.Restitution)
	setFloat(&cfg.Golf.PowerScale, f.Golf.PowerScale)
	setFloat(&cfg.Golf.GoalRadius, f.Golf.GoalRadius)

	setFloat(&cfg.Stop.Speed, f.Stop.Speed)
	setFloat(&cfg.Stop.Tolerance, f.Stop.Tolerance)

	setInt(&cfg.Rhythm.Notes, f.Rhythm.Notes)
	setFloat(&cfg.Rhythm.Interval, f.Rhythm.Interval)
	setFloat(&cfg.Rhythm.TimingWindow, f.Rhythm.TimingWindow)
	setFloat(&cfg.Rhythm.PassThreshold, f.Rhythm.PassThreshold)
	setInt(&cfg.Rhythm.PassTarget, f.Rhythm.PassTarget)

	setInt(&cfg.Counter.Correct, f.Counter.Correct)
	setInt(&cfg.Counter.AcceptableRange, f.Counter.AcceptableRange)
}

// Validate checks ranges that would break the simulators.
func Validate(cfg model.Config) error {
	switch {
	case cfg.StorageKey == "":
		return fmt.Errorf("%w: storage key must not be empty", ErrInvalid)
	case cfg.Golf.Friction <= 0 || cfg.Golf.Friction > 1:
		return fmt.Errorf("%w: golf friction must be in (0, 1]", ErrInvalid)
	case cfg.Golf.Restitution < 0 || cfg.Golf.Restitution > 1:
		return fmt.Errorf("%w: golf restitution must be in [0, 1]", ErrInvalid)
	case cfg.Golf.PowerScale <= 0:
		return fmt.Errorf("%w: golf power scale must be > 0", ErrInvalid)
	case cfg.Golf.GoalRadius <= 0 || cfg.Golf.GoalRadius > cfg.Golf.HoleRadius:
		return fmt.Errorf("%w: golf goal radius must be in (0, hole radius]", ErrInvalid)
	case cfg.Stop.Speed <= 0:
		return fmt.Errorf("%w: stop speed must be > 0", ErrInvalid)
	case cfg.Stop.Tolerance <= 0:
		return fmt.Errorf("%w: stop tolerance must be > 0", ErrInvalid)
	case cfg.Rhythm.Notes <= 0:
		return fmt.Errorf("%w: rhythm notes must be > 0", ErrInvalid)
	case cfg.Rhythm.Interval <= 0:
		return fmt.Errorf("%w: rhythm interval must be > 0", ErrInvalid)
	case cfg.Rhythm.TimingWindow <= 0 || cfg.Rhythm.TimingWindow*2 > cfg.Rhythm.Interval:
		return fmt.Errorf("%w: rhythm timing window must be in (0, interval/2]", ErrInvalid)
	case cfg.Rhythm.PassThreshold <= 0 || cfg.Rhythm.PassThreshold > 1:
		return fmt.Errorf("%w: rhythm pass threshold must be in (0, 1]", ErrInvalid)
	case cfg.Rhythm.PassTarget < 0 || cfg.Rhythm.PassTarget > cfg.Rhythm.Notes:
		return fmt.Errorf("%w: rhythm pass target must be in [0, notes]", ErrInvalid)
	case cfg.Counter.AcceptableRange < 0:
		return fmt.Errorf("%w: counter acceptable range must be >= 0", ErrInvalid)
	case cfg.Counter.Correct <= 0:
		return fmt.Errorf("%w: counter correct must be > 0", ErrInvalid)
	case !counterReachable(cfg.Counter):
		return fmt.Errorf("%w: counter correct %d matches none of the options %v", ErrInvalid, cfg.Counter.Correct, cfg.Counter.Options)
	}
	return nil
}

// counterReachable reports whether some answer option passes the counting
// check, exactly or within AcceptableRange.
func counterReachable(c model.CounterConfig) bool {
	for _, opt := range c.Options {
		diff := opt - c.Correct
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 || (c.AcceptableRange > 0 && diff <= c.AcceptableRange) {
			return true
		}
	}
	return false
}

func setInt64(target, value *int64) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setFloat(target, value *float64) {
	if value != nil {
		*target = *value
	}
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}
