// Package session holds verification progress for one run through the gateway.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/humangate/internal/model"
)

// Session is the explicit, injectable progress store shared by all challenges.
type Session struct {
	mu      sync.Mutex
	backend Backend
	key     string
	state   model.SessionState

	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger used for recovered errors.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDFunc overrides session id minting.
func WithIDFunc(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// New loads the record stored under key, or starts a fresh session.
// A record that cannot be decoded is discarded.
func New(ctx context.Context, backend Backend, key string, opts ...Option) (*Session, error) {
	s := &Session{
		backend: backend,
		key:     key,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := backend.Load(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		s.state = s.freshState()
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	state, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable session record", zap.String("key", key), zap.Error(err))
		s.state = s.freshState()
		return s, nil
	}
	if state.SessionID == "" {
		state.SessionID = s.newID()
	}
	if state.StartTime.IsZero() {
		state.StartTime = s.now()
	}
	s.state = state
	return s, nil
}

func (s *Session) freshState() model.SessionState {
	return model.SessionState{
		SessionID: s.newID(),
		Results:   map[model.ChallengeID]model.ChallengeResult{},
		StartTime: s.now(),
	}
}

// State returns a copy of the current state.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Result returns the stored result for id.
func (s *Session) Result(id model.ChallengeID) (model.ChallengeResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.state.Results[id]
	res.Score = copyScore(res.Score)
	return res, ok
}

// CurrentIndex is the position in the challenge sequence, derived from the
// number of completed challenges.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Completed)
}

// Elapsed reports the time since the session started.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.state.StartTime)
}

// Token renders the session start time as an upper-case base-36 token.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.ToUpper(strconv.FormatInt(s.state.StartTime.UnixMilli(), 36))
}

// MarkComplete stores the latest result for id. The attempt count is kept.
func (s *Session) MarkComplete(ctx context.Context, id model.ChallengeID, passed bool, score *float64) error {
	return s.mutate(ctx, func(st *model.SessionState) {
		attempts := 1
		if prev, ok := st.Results[id]; ok {
			attempts = prev.Attempts
		}
		st.Results[id] = model.ChallengeResult{
			ID:       id,
			Passed:   passed,
			Score:    copyScore(score),
			Attempts: attempts,
		}
		idx := indexOf(st.Completed, id)
		switch {
		case passed && idx < 0:
			st.Completed = append(st.Completed, id)
		case !passed && idx >= 0:
			st.Completed = append(st.Completed[:idx], st.Completed[idx+1:]...)
		}
	})
}

// IncrementAttempts records one failed terminal evaluation for id.
// A challenge that already passed keeps its passed result.
func (s *Session) IncrementAttempts(ctx context.Context, id model.ChallengeID) error {
	return s.mutate(ctx, func(st *model.SessionState) {
		prev, ok := st.Results[id]
		if !ok {
			st.Results[id] = model.ChallengeResult{ID: id, Attempts: 1}
			return
		}
		prev.Attempts++
		if !prev.Passed {
			prev.Score = nil
		}
		st.Results[id] = prev
	})
}

// Reset discards all progress and restarts the session clock.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.freshState()
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Session) mutate(ctx context.Context, fn func(*model.SessionState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	data, err := Encode(s.state)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func indexOf(ids []model.ChallengeID, id model.ChallengeID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func cloneState(st model.SessionState) model.SessionState {
	out := model.SessionState{
		SessionID: st.SessionID,
		Completed: append([]model.ChallengeID(nil), st.Completed...),
		Results:   make(map[model.ChallengeID]model.ChallengeResult, len(st.Results)),
		StartTime: st.StartTime,
	}
	for id, res := range st.Results {
		res.Score = copyScore(res.Score)
		out.Results[id] = res
	}
	return out
}
