package progression

import (
	"time"

	"github.com/verte-zerg/humangate/internal/model"
)

// IdentifyAutoRetry is how long a failed identify attempt stays on screen
// before the challenge resets itself.
const IdentifyAutoRetry = 1500 * time.Millisecond

// Sequence returns the canonical challenge order.
func Sequence() []model.ChallengeDefinition {
	return []model.ChallengeDefinition{
		{
			ID:          model.Golf,
			Position:    0,
			Title:       "MOTOR CONTROL VERIFICATION",
			Description: "Get the ball into the hole. Grab the ball, pull back to set power and angle, then release.",
		},
		{
			ID:          model.Stop,
			Position:    1,
			Title:       "REACTION TIME VERIFICATION",
			Description: "Press SPACE to stop the moving bar inside the target zone. Timing is critical.",
		},
		{
			ID:          model.Rhythm,
			Position:    2,
			Title:       "RHYTHM VERIFICATION",
			Description: "Strike the corresponding key (A, S, D, F) when each pulse reaches the receptor strip. Achieve 70% accuracy to pass.",
		},
		{
			ID:          model.Counter,
			Position:    3,
			Title:       "REPETITION COUNT VERIFICATION",
			Description: "Count the number of times the action repeats. The loop will accelerate to test your attention span.",
		},
		{
			ID:          model.Identify,
			Position:    4,
			Title:       "OBJECT IDENTIFICATION VERIFICATION",
			Description: "Select all squares containing a bicycle. Look carefully - some objects may be extremely small.",
			AutoRetry:   IdentifyAutoRetry,
		},
		{
			ID:          model.Emotion,
			Position:    5,
			Title:       "EMOTIONAL RECOGNITION VERIFICATION",
			Description: "Identify the emotion displayed in the human face. This verifies your capacity for emotional intelligence.",
		},
	}
}
