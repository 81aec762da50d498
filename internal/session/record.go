package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/humangate/internal/model"
)

type record struct {
	SessionID         string                  `json:"sessionId,omitempty"`
	CompletedCaptchas []string                `json:"completedCaptchas"`
	CaptchaResults    map[string]resultRecord `json:"captchaResults"`
	StartTime         int64                   `json:"startTime"`
}

type resultRecord struct {
	ID       string   `json:"id"`
	Passed   bool     `json:"passed"`
	Score    *float64 `json:"score,omitempty"`
	Attempts int      `json:"attempts"`
}

// Encode serializes a state into the persisted JSON record.
func Encode(state model.SessionState) ([]byte, error) {
	rec := record{
		SessionID:         state.SessionID,
		CompletedCaptchas: make([]string, 0, len(state.Completed)),
		CaptchaResults:    make(map[string]resultRecord, len(state.Results)),
		StartTime:         state.StartTime.UnixMilli(),
	}
	for _, id := range state.Completed {
		rec.CompletedCaptchas = append(rec.CompletedCaptchas, string(id))
	}
	for id, res := range state.Results {
		rec.CaptchaResults[string(id)] = resultRecord{
			ID:       string(id),
			Passed:   res.Passed,
			Score:    copyScore(res.Score),
			Attempts: res.Attempts,
		}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

// Decode parses a persisted JSON record and repairs broken invariants.
func Decode(data []byte) (model.SessionState, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.SessionState{}, fmt.Errorf("failed to decode session: %w", err)
	}
	state := model.SessionState{
		SessionID: rec.SessionID,
		Results:   make(map[model.ChallengeID]model.ChallengeResult, len(rec.CaptchaResults)),
	}
	if rec.StartTime > 0 {
		state.StartTime = time.UnixMilli(rec.StartTime)
	}
	for key, res := range rec.CaptchaResults {
		id := model.ChallengeID(key)
		attempts := res.Attempts
		if attempts < 1 {
			attempts = 1
		}
		state.Results[id] = model.ChallengeResult{
			ID:       id,
			Passed:   res.Passed,
			Score:    copyScore(res.Score),
			Attempts: attempts,
		}
	}

	seen := map[model.ChallengeID]struct{}{}
	for _, raw := range rec.CompletedCaptchas {
		id := model.ChallengeID(raw)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		res, ok := state.Results[id]
		if !ok {
			res = model.ChallengeResult{ID: id, Attempts: 1}
		}
		res.Passed = true
		state.Results[id] = res
		state.Completed = append(state.Completed, id)
	}
	// Passed results missing from the completion list.
	var orphans []model.ChallengeID
	for id, res := range state.Results {
		if _, ok := seen[id]; !ok && res.Passed {
			orphans = append(orphans, id)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i] < orphans[j] })
	state.Completed = append(state.Completed, orphans...)
	return state, nil
}

func copyScore(score *float64) *float64 {
	if score == nil {
		return nil
	}
	v := *score
	return &v
}
