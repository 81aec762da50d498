package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/humangate/internal/config"
)

func newTestStopBar() *StopBar {
	return NewStopBar(config.Defaults().Stop)
}

func TestAccuracyScale(t *testing.T) {
	assert.Equal(t, 100.0, Accuracy(0, 30))
	assert.Equal(t, 0.0, Accuracy(30, 30))
	assert.Equal(t, 0.0, Accuracy(90, 30))
	assert.InDelta(t, 50.0, Accuracy(15, 30), 1e-9)
	assert.Equal(t, 0.0, Accuracy(0, 0))
}

func TestJudgeCenter(t *testing.T) {
	s := newTestStopBar()
	require.Equal(t, 300.0, s.TargetCenter())

	cases := []struct {
		name     string
		center   float64
		accuracy float64
		passed   bool
	}{
		{name: "dead center", center: 300, accuracy: 100, passed: true},
		{name: "near", center: 310, accuracy: 100 - 10.0/30*100, passed: true},
		{name: "edge", center: 270, accuracy: 0, passed: true},
		{name: "far", center: 400, accuracy: 0, passed: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j := s.JudgeCenter(tc.center)
			assert.InDelta(t, tc.accuracy, j.Accuracy, 1e-9)
			assert.Equal(t, tc.passed, j.Passed)
		})
	}
}

func TestStopOnlyWhileRunning(t *testing.T) {
	s := newTestStopBar()
	_, ok := s.Stop()
	assert.False(t, ok, "idle bar must not judge")

	s.Start()
	s.Advance(1)
	j, ok := s.Stop()
	require.True(t, ok)
	assert.Equal(t, 250.0, j.Position)
	assert.Equal(t, 50.0, j.Distance)
	assert.False(t, j.Passed)

	_, ok = s.Stop()
	assert.False(t, ok, "second stop must be ignored")
	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, j, last)
}

func TestAdvanceReflects(t *testing.T) {
	s := newTestStopBar()
	s.Start()
	s.Advance(1)
	assert.Equal(t, 240.0, s.Position())
	s.Advance(2)
	assert.Equal(t, 440.0, s.Position())
	s.Advance(2)
	assert.Equal(t, 40.0, s.Position())
}

func TestAdvanceIgnoredWhenStopped(t *testing.T) {
	s := newTestStopBar()
	s.Advance(1)
	assert.Equal(t, 0.0, s.Position())

	s.Start()
	s.Advance(0.5)
	s.Stop()
	s.Advance(1)
	assert.Equal(t, 120.0, s.Position())
}

func TestStartCountsRuns(t *testing.T) {
	s := newTestStopBar()
	s.Start()
	s.Advance(0.3)
	s.Stop()
	s.Start()
	assert.Equal(t, 2, s.Runs())
	assert.Equal(t, Running, s.Phase())
	assert.Equal(t, 0.0, s.Position())

	s.Reset()
	assert.Equal(t, Idle, s.Phase())
	_, ok := s.Last()
	assert.False(t, ok)
}
