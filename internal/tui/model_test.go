package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/humangate/internal/config"
	"github.com/verte-zerg/humangate/internal/evaluate"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/golf"
	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/progression"
	"github.com/verte-zerg/humangate/internal/session"
)

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// newTestModel returns a model whose session already passed the first
// skip challenges.
func newTestModel(t *testing.T, skip int) (*Model, *session.Session) {
	t.Helper()
	ctx := context.Background()
	sess, err := session.New(ctx, session.NewMemoryBackend(), "tui")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	for _, def := range progression.Sequence()[:skip] {
		if err := sess.MarkComplete(ctx, def.ID, true, nil); err != nil {
			t.Fatalf("mark complete: %v", err)
		}
	}
	m := NewModel(ctx, config.Defaults(), sess, generator.NewSeeded(1), nil, nil)
	return m, sess
}

func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestStartsOnSessionPosition(t *testing.T) {
	m, _ := newTestModel(t, 2)
	def, ok := m.ctrl.Current()
	if !ok || def.ID != model.Rhythm {
		t.Fatalf("expected rhythm, got %v", def.ID)
	}
	if !strings.Contains(m.View(), "RHYTHM VERIFICATION") {
		t.Fatalf("header missing from view")
	}
}

func TestStaleFramesAreDropped(t *testing.T) {
	m, _ := newTestModel(t, 0)
	cmd := send(m, enterKey)
	if cmd == nil {
		t.Fatalf("expected golf to start its frame loop")
	}
	if m.ctrl.Phase() != progression.Active {
		t.Fatalf("expected active phase, got %s", m.ctrl.Phase())
	}
	now := time.Now()
	if cmd := send(m, frameMsg{epoch: m.epoch - 1, at: now}); cmd != nil {
		t.Fatalf("stale frame must not reschedule")
	}
	if cmd := send(m, frameMsg{epoch: m.epoch, at: now}); cmd == nil {
		t.Fatalf("current frame must reschedule")
	}
}

func TestFrameDeltaIsClamped(t *testing.T) {
	m, _ := newTestModel(t, 1)
	send(m, enterKey)
	stop := m.screen.(*stopScreen)
	start := time.Now()
	send(m, frameMsg{epoch: m.epoch, at: start})
	send(m, frameMsg{epoch: m.epoch, at: start.Add(5 * time.Second)})
	want := config.Defaults().Stop.Speed * maxFrameDelta
	if got := stop.bar.Position(); got != want {
		t.Fatalf("expected position %.1f after a clamped frame, got %.1f", want, got)
	}
}

func TestStopPressIsOneAttempt(t *testing.T) {
	m, sess := newTestModel(t, 1)
	send(m, enterKey, spaceKey)
	phase := m.ctrl.Phase()
	if phase != progression.Failed && phase != progression.Passed {
		t.Fatalf("expected a verdict, got %s", phase)
	}
	res, ok := sess.Result(model.Stop)
	if !ok || res.Attempts != 1 {
		t.Fatalf("expected one attempt, got %+v", res)
	}
	if res.Score != nil && !res.Passed {
		t.Fatalf("failed attempts keep no score")
	}
}

func TestGolfLaunchesAreAttempts(t *testing.T) {
	m, sess := newTestModel(t, 0)
	send(m, enterKey)
	at := time.Now()
	send(m, frameMsg{epoch: m.epoch, at: at})
	left := tea.KeyMsg{Type: tea.KeyLeft}
	for shot := 1; shot <= 3; shot++ {
		screen := m.screen.(*golfScreen)
		send(m, spaceKey, left, left, spaceKey)
		if screen.course.Phase() != golf.Rolling {
			t.Fatalf("shot %d did not launch", shot)
		}
		for i := 0; i < 600 && screen.course.Phase() == golf.Rolling; i++ {
			at = at.Add(frameInterval)
			send(m, frameMsg{epoch: m.epoch, at: at})
		}
		if m.ctrl.Phase() != progression.Active {
			t.Fatalf("short shots should not settle the challenge, got %s", m.ctrl.Phase())
		}
		res, ok := sess.Result(model.Golf)
		if !ok || res.Attempts != shot {
			t.Fatalf("after %d launches expected %d attempts, got %+v", shot, shot, res)
		}
	}
}

func TestGolfHoleDoesNotAddAttempt(t *testing.T) {
	m, sess := newTestModel(t, 0)
	send(m, enterKey)
	send(m, spaceKey, tea.KeyMsg{Type: tea.KeyLeft}, spaceKey)
	m.finish(evaluate.Golf())
	res, ok := sess.Result(model.Golf)
	if !ok || res.Attempts != 1 || !res.Passed {
		t.Fatalf("expected one counted attempt on the hole, got %+v", res)
	}
}

func TestCounterFrameLoopStopsAfterPlayback(t *testing.T) {
	m, _ := newTestModel(t, 3)
	if cmd := send(m, enterKey); cmd == nil {
		t.Fatalf("counter playback should start the frame loop")
	}
	counter := m.screen.(*counterScreen)
	at := time.Now()
	cmd := send(m, frameMsg{epoch: m.epoch, at: at})
	frames := 0
	for cmd != nil && frames < 5000 {
		at = at.Add(100 * time.Millisecond)
		cmd = send(m, frameMsg{epoch: m.epoch, at: at})
		frames++
	}
	if cmd != nil {
		t.Fatalf("frame loop still running after %d frames", frames)
	}
	if counter.watching() {
		t.Fatalf("loop stopped before playback ended")
	}
	if m.ctrl.Phase() != progression.Active {
		t.Fatalf("answer phase should stay active, got %s", m.ctrl.Phase())
	}
}

func TestEmotionFlowToCompletion(t *testing.T) {
	m, sess := newTestModel(t, 5)
	send(m, enterKey)
	send(m, enterKey)
	if m.ctrl.Phase() != progression.Active {
		t.Fatalf("submit without selection must be ignored")
	}

	send(m, spaceKey, enterKey)
	if m.ctrl.Phase() != progression.Failed {
		t.Fatalf("expected failure for angry, got %s", m.ctrl.Phase())
	}
	send(m, runeKey('r'), enterKey)
	for i := 0; i < 4; i++ {
		send(m, downKey)
	}
	send(m, spaceKey, enterKey)
	if m.ctrl.Phase() != progression.Passed {
		t.Fatalf("expected pass for neutral, got %s", m.ctrl.Phase())
	}
	send(m, enterKey)
	if m.ctrl.Phase() != progression.Complete {
		t.Fatalf("expected complete, got %s", m.ctrl.Phase())
	}
	view := m.View()
	for _, want := range []string{"VERIFICATION COMPLETE", "6/6", sess.Token()} {
		if !strings.Contains(view, want) {
			t.Fatalf("completion view missing %q:\n%s", want, view)
		}
	}
	res, _ := sess.Result(model.Emotion)
	if res.Attempts != 2 || !res.Passed {
		t.Fatalf("unexpected emotion result %+v", res)
	}
}

func TestIdentifyAutoRetry(t *testing.T) {
	m, _ := newTestModel(t, 4)
	send(m, enterKey, spaceKey)
	cmd := send(m, enterKey)
	if m.ctrl.Phase() != progression.Failed {
		t.Fatalf("expected failure, got %s", m.ctrl.Phase())
	}
	if cmd == nil {
		t.Fatalf("expected an auto-retry timer")
	}
	send(m, retryMsg{epoch: m.epoch - 1})
	if m.ctrl.Phase() != progression.Failed {
		t.Fatalf("stale retry must be ignored")
	}
	send(m, retryMsg{epoch: m.epoch})
	if m.ctrl.Phase() != progression.Instructions {
		t.Fatalf("expected instructions after retry, got %s", m.ctrl.Phase())
	}
	screen := m.screen.(*identifyScreen)
	if !screen.selected[0] {
		t.Fatalf("selection should survive a retry")
	}
}

func TestRestartReturnsToGolf(t *testing.T) {
	m, sess := newTestModel(t, 3)
	send(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if sess.CurrentIndex() != 0 {
		t.Fatalf("expected reset session")
	}
	if _, ok := m.screen.(*golfScreen); !ok {
		t.Fatalf("expected golf screen after restart, got %T", m.screen)
	}
	if m.ctrl.Phase() != progression.Instructions {
		t.Fatalf("expected instructions, got %s", m.ctrl.Phase())
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := map[time.Duration]string{
		0:                 "00:00",
		59 * time.Second:  "00:59",
		125 * time.Second: "02:05",
		-time.Second:      "00:00",
	}
	for d, want := range cases {
		if got := formatElapsed(d); got != want {
			t.Fatalf("formatElapsed(%v) = %q, want %q", d, got, want)
		}
	}
}
