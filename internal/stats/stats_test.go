package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/humangate/internal/model"
)

func score(v float64) *float64 { return &v }

func sampleRuns() []model.Run {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []model.Run{
		{SessionID: "a", Challenge: model.Stop, Passed: false, Score: score(0), Attempts: 1, EndedAt: base},
		{SessionID: "a", Challenge: model.Stop, Passed: true, Score: score(80), Attempts: 2, EndedAt: base.Add(time.Minute)},
		{SessionID: "a", Challenge: model.Golf, Passed: true, Attempts: 1, EndedAt: base.Add(2 * time.Minute)},
		{SessionID: "b", Challenge: model.Stop, Passed: true, Score: score(100), Attempts: 1, EndedAt: base.Add(3 * time.Minute)},
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate(sampleRuns())
	want := []model.ChallengeAggregate{
		{Challenge: model.Golf, Runs: 1, Passed: 1, Attempts: 1},
		{Challenge: model.Stop, Runs: 3, Passed: 2, ScoreSum: 180, Scored: 3, BestScore: 100, Attempts: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("aggregate mismatch (-want +got):\n%s", diff)
	}
	if rate := PassRate(got[1]); rate < 0.666 || rate > 0.667 {
		t.Fatalf("unexpected pass rate %v", rate)
	}
	if avg, ok := AvgScore(got[1]); !ok || avg != 60 {
		t.Fatalf("unexpected avg score %v %v", avg, ok)
	}
	if _, ok := AvgScore(got[0]); ok {
		t.Fatalf("golf runs carry no score")
	}
}

func TestScoreSeriesSkipsUnscored(t *testing.T) {
	got := ScoreSeries(sampleRuns(), model.Stop)
	if diff := cmp.Diff([]float64{0, 80, 100}, got); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
	if len(ScoreSeries(sampleRuns(), model.Golf)) != 0 {
		t.Fatalf("expected no golf scores")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	if diff := cmp.Diff([]float64{2, 3, 5, 7}, got); diff != "" {
		t.Fatalf("moving average mismatch (-want +got):\n%s", diff)
	}
	in := []float64{1, 2}
	out := MovingAverage(in, 1)
	out[0] = 9
	if in[0] != 1 {
		t.Fatalf("window 1 must copy input")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 50, 100}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sampleRuns()); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Runs: 4 across 2 session(s)", "Pass rate: 75.00%", "2026-01-02 03:04:05"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render empty summary: %v", err)
	}
	if buf.String() != "No runs found.\n" {
		t.Fatalf("unexpected empty summary %q", buf.String())
	}
}

func TestRenderChallengeTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderChallengeTable(&buf, "Per-Challenge", Aggregate(sampleRuns())); err != nil {
		t.Fatalf("render table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[3], "golf") || !strings.Contains(lines[3], " - ") {
		t.Fatalf("expected unscored golf row, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "66.67%") || !strings.Contains(lines[4], "60.0") {
		t.Fatalf("unexpected stop row %q", lines[4])
	}
}
