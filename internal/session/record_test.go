package session

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/humangate/internal/model"
)

func TestEncodeRecordShape(t *testing.T) {
	st := model.SessionState{
		Completed: []model.ChallengeID{model.Golf},
		Results: map[model.ChallengeID]model.ChallengeResult{
			model.Golf: {ID: model.Golf, Passed: true, Attempts: 2},
		},
		StartTime: fixedStart,
	}
	data, err := Encode(st)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"completedCaptchas", "captchaResults", "startTime"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	if _, ok := raw["sessionId"]; ok {
		t.Fatalf("empty session id should be omitted: %s", data)
	}
	golf := raw["captchaResults"].(map[string]any)["golf"].(map[string]any)
	if _, ok := golf["score"]; ok {
		t.Fatalf("nil score should be omitted: %s", data)
	}
	if golf["attempts"].(float64) != 2 {
		t.Fatalf("unexpected attempts: %v", golf["attempts"])
	}
}

func TestDecodeRepairsInvariants(t *testing.T) {
	data := []byte(`{
		"completedCaptchas": ["golf", "golf", "stop"],
		"captchaResults": {
			"golf": {"id": "golf", "passed": true, "attempts": 0},
			"rhythm": {"id": "rhythm", "passed": true, "attempts": 3, "score": 81.25}
		},
		"startTime": 1700000000000
	}`)
	st, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []model.ChallengeID{model.Golf, model.Stop, model.Rhythm}
	if diff := cmp.Diff(want, st.Completed); diff != "" {
		t.Fatalf("completed mismatch (-want +got):\n%s", diff)
	}
	if st.Results[model.Golf].Attempts != 1 {
		t.Fatalf("attempts must be at least 1: %+v", st.Results[model.Golf])
	}
	if !st.Results[model.Stop].Passed {
		t.Fatalf("completed id without result must get a passed result")
	}
	if got := st.Results[model.Rhythm].Score; got == nil || *got != 81.25 {
		t.Fatalf("unexpected rhythm score: %v", got)
	}
	if !st.StartTime.Equal(fixedStart) {
		t.Fatalf("unexpected start time: %v", st.StartTime)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("[]")); err == nil {
		t.Fatalf("expected error for array payload")
	}
}
