package config

import "github.com/verte-zerg/humangate/internal/model"

// DefaultStorageKey is the key of the persisted session record.
const DefaultStorageKey = "dystopian-captcha-state"

// Defaults returns the canonical challenge constants.
func Defaults() model.Config {
	return model.Config{
		StorageKey: DefaultStorageKey,
		Golf: model.GolfConfig{
			Width:          600,
			Height:         400,
			BallRadius:     8,
			HoleRadius:     20,
			GoalRadius:     10,
			Friction:       0.986,
			Restitution:    0.8,
			PowerScale:     10,
			StallSpeed:     6,
			AstrayDistance: 500,
		},
		Stop: model.StopConfig{
			TrackWidth:  600,
			MarkerWidth: 20,
			TargetWidth: 60,
			Speed:       240,
			Tolerance:   30,
		},
		Rhythm: model.RhythmConfig{
			Lanes:         4,
			Notes:         16,
			Interval:      0.85,
			TravelTime:    1.8,
			TimingWindow:  0.18,
			PassThreshold: 0.7,
		},
		Counter: model.CounterConfig{
			Correct: 92,
			Options: []int{85, 89, 92, 95, 99},
		},
		Identify: model.IdentifyConfig{
			GridSize: 4,
			Targets:  []int{3, 7, 11},
		},
		Emotion: model.EmotionConfig{
			Correct: "neutral",
			Options: []model.EmotionOption{
				{Value: "angry", Label: "Simmering resentment: voices raised, brows furrowed, both partners rigid as they contest the bill."},
				{Value: "fearful", Label: "Restrained panic: one partner glances around the bar, worried the dispute will draw attention."},
				{Value: "sad", Label: "Wounded disappointment: hurt eyes and sighs imply the argument is about unmet expectations."},
				{Value: "surprised", Label: "Incredulous shock: brows shoot up as if blindsided that the bill became a public confrontation."},
				{Value: "neutral", Label: "Calculated detachment: voices kept flat, each partner coldly negotiating the bill split."},
			},
		},
	}
}
