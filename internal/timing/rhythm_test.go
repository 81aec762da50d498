package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/humangate/internal/config"
	"github.com/verte-zerg/humangate/internal/feedback"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/model"
)

func shortRhythm() model.RhythmConfig {
	cfg := config.Defaults().Rhythm
	cfg.Notes = 4
	return cfg
}

func startRhythm(t *testing.T, cfg model.RhythmConfig, bus *feedback.Bus) *Rhythm {
	t.Helper()
	r := NewRhythm(cfg, generator.NewSeeded(3), bus)
	require.Equal(t, Ready, r.Phase())
	r.Start()
	require.Equal(t, Playing, r.Phase())
	return r
}

// advanceTo moves the song clock to an absolute time.
func advanceTo(r *Rhythm, at float64) bool {
	return r.Advance(at - r.Elapsed())
}

func TestNewChartSchedule(t *testing.T) {
	cfg := config.Defaults().Rhythm
	notes := NewChart(cfg, generator.NewSeeded(1))
	require.Len(t, notes, 16)
	for i, n := range notes {
		assert.Equal(t, i, n.ID)
		assert.InDelta(t, 1.8+float64(i)*0.85, n.HitTime, 1e-9)
		assert.InDelta(t, n.HitTime-1.8, n.SpawnTime, 1e-9)
		assert.GreaterOrEqual(t, n.Lane, 0)
		assert.Less(t, n.Lane, 4)
		assert.Equal(t, Pending, n.Status)
	}
}

func TestPressOnTimeHits(t *testing.T) {
	bus := feedback.NewBus()
	var events []feedback.Kind
	bus.Subscribe(func(e feedback.Event) { events = append(events, e.Kind) })
	r := startRhythm(t, shortRhythm(), bus)
	first := r.Notes()[0]

	advanceTo(r, first.HitTime)
	require.True(t, r.Press(first.Lane))
	assert.Equal(t, NoteHit, r.Notes()[0].Status)
	assert.True(t, r.Flash(first.Lane))
	assert.Equal(t, 1, r.Combo())
	assert.Equal(t, []feedback.Kind{feedback.Hit}, events)

	r.Advance(0.2)
	assert.False(t, r.Flash(first.Lane))
}

func TestStrayPressDoesNotCountAsMiss(t *testing.T) {
	r := startRhythm(t, shortRhythm(), nil)
	assert.False(t, r.Press(0))
	assert.False(t, r.Press(3))
	hits, misses := r.Tally()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 0, misses)
	assert.Equal(t, 2, r.Result().Strays)
}

func TestStrayPressResetsCombo(t *testing.T) {
	r := startRhythm(t, shortRhythm(), nil)
	first := r.Notes()[0]
	advanceTo(r, first.HitTime)
	require.True(t, r.Press(first.Lane))
	require.Equal(t, 1, r.Combo())

	require.False(t, r.Press((first.Lane+1)%4))
	assert.Equal(t, 0, r.Combo())
	assert.Equal(t, 1, r.Result().Strays)
	assert.Equal(t, 1, r.Result().MaxCombo)
	hits, misses := r.Tally()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 0, misses)
}

func TestOutOfRangeLaneIgnored(t *testing.T) {
	r := startRhythm(t, shortRhythm(), nil)
	assert.False(t, r.Press(-1))
	assert.False(t, r.Press(4))
	assert.Equal(t, 0, r.Result().Strays)
}

func TestNoteExpiresAfterWindow(t *testing.T) {
	r := startRhythm(t, shortRhythm(), nil)
	first := r.Notes()[0]
	advanceTo(r, first.HitTime+0.19)
	assert.Equal(t, NoteMissed, r.Notes()[0].Status)
	assert.False(t, r.Press(first.Lane), "expired note cannot be hit")
	_, misses := r.Tally()
	assert.Equal(t, 1, misses)
}

func TestEarlierNoteWinsTie(t *testing.T) {
	cfg := model.RhythmConfig{
		Lanes:         1,
		Notes:         2,
		Interval:      0.5,
		TravelTime:    1,
		TimingWindow:  0.5,
		PassThreshold: 0.5,
	}
	r := startRhythm(t, cfg, nil)
	advanceTo(r, 1.25)
	require.True(t, r.Press(0))
	notes := r.Notes()
	assert.Equal(t, NoteHit, notes[0].Status)
	assert.Equal(t, Pending, notes[1].Status)
}

func TestPerfectRunPasses(t *testing.T) {
	r := startRhythm(t, shortRhythm(), nil)
	for _, n := range r.Notes() {
		advanceTo(r, n.HitTime)
		require.True(t, r.Press(n.Lane))
	}
	assert.Equal(t, Finished, r.Phase())
	res := r.Result()
	assert.Equal(t, 4, res.Hits)
	assert.Equal(t, 0, res.Misses)
	assert.Equal(t, 4, res.MaxCombo)
	assert.Equal(t, 1.0, res.Accuracy)
	assert.True(t, res.Passed)
}

func TestSongEndMissesRemainingNotes(t *testing.T) {
	r := startRhythm(t, shortRhythm(), nil)
	first := r.Notes()[0]
	advanceTo(r, first.HitTime)
	r.Press(first.Lane)

	assert.True(t, r.Advance(10))
	assert.Equal(t, Finished, r.Phase())
	res := r.Result()
	assert.Equal(t, 1, res.Hits)
	assert.Equal(t, 3, res.Misses)
	assert.InDelta(t, 0.25, res.Accuracy, 1e-9)
	assert.False(t, res.Passed)

	assert.False(t, r.Advance(1), "finished session must not advance")
	assert.False(t, r.Press(0))
}

func TestMissResetsCombo(t *testing.T) {
	r := startRhythm(t, shortRhythm(), nil)
	notes := r.Notes()
	advanceTo(r, notes[0].HitTime)
	r.Press(notes[0].Lane)
	require.Equal(t, 1, r.Combo())

	advanceTo(r, notes[1].HitTime+0.19)
	assert.Equal(t, 0, r.Combo())
	assert.Equal(t, 1, r.Result().MaxCombo)
}

func TestPassTargetEndsEarly(t *testing.T) {
	cfg := shortRhythm()
	cfg.PassTarget = 2
	r := startRhythm(t, cfg, nil)
	notes := r.Notes()
	for _, n := range notes[:2] {
		advanceTo(r, n.HitTime)
		require.True(t, r.Press(n.Lane))
	}
	assert.Equal(t, Finished, r.Phase())
	res := r.Result()
	assert.True(t, res.Passed)
	assert.Equal(t, 0, res.Misses)
}

func TestVisibleNotes(t *testing.T) {
	r := startRhythm(t, shortRhythm(), nil)
	views := r.Visible()
	require.Len(t, views, 1)
	assert.Equal(t, 0, views[0].ID)
	assert.Equal(t, 0.0, views[0].Progress)

	first := r.Notes()[0]
	advanceTo(r, first.HitTime)
	r.Press(first.Lane)
	for _, v := range r.Visible() {
		if v.ID == 0 {
			assert.InDelta(t, 1.0, v.Progress, 1e-9)
		}
	}
	r.Advance(0.4)
	for _, v := range r.Visible() {
		assert.NotEqual(t, 0, v.ID, "hit note should be gone")
	}
}
