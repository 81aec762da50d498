// Package stats summarizes the challenge run history.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/humangate/internal/model"
)

const sparkChars = " .:-=+*#%@"

// PassRate is the share of passed runs in [0,1].
func PassRate(agg model.ChallengeAggregate) float64 {
	if agg.Runs == 0 {
		return 0
	}
	return float64(agg.Passed) / float64(agg.Runs)
}

// AvgScore is the mean score over scored runs. ok is false when no run
// carried a score.
func AvgScore(agg model.ChallengeAggregate) (avg float64, ok bool) {
	if agg.Scored == 0 {
		return 0, false
	}
	return agg.ScoreSum / float64(agg.Scored), true
}

// Aggregate folds runs into per-challenge aggregates ordered by challenge.
func Aggregate(runs []model.Run) []model.ChallengeAggregate {
	byID := map[model.ChallengeID]*model.ChallengeAggregate{}
	for _, r := range runs {
		agg, ok := byID[r.Challenge]
		if !ok {
			agg = &model.ChallengeAggregate{Challenge: r.Challenge}
			byID[r.Challenge] = agg
		}
		agg.Runs++
		if r.Passed {
			agg.Passed++
		}
		if r.Score != nil {
			agg.ScoreSum += *r.Score
			if agg.Scored == 0 || *r.Score > agg.BestScore {
				agg.BestScore = *r.Score
			}
			agg.Scored++
		}
		if r.Attempts > agg.Attempts {
			agg.Attempts = r.Attempts
		}
	}
	out := make([]model.ChallengeAggregate, 0, len(byID))
	for _, agg := range byID {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Challenge < out[j].Challenge })
	return out
}

// ScoreSeries returns the scores of one challenge in run order.
func ScoreSeries(runs []model.Run, id model.ChallengeID) []float64 {
	var out []float64
	for _, r := range runs {
		if r.Challenge == id && r.Score != nil {
			out = append(out, *r.Score)
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints headline numbers for a run window.
func RenderSummary(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	passed := 0
	sessions := map[string]bool{}
	for _, r := range runs {
		if r.Passed {
			passed++
		}
		sessions[r.SessionID] = true
	}
	first, last := runs[0].EndedAt, runs[len(runs)-1].EndedAt
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d across %d session(s)", len(runs), len(sessions)),
		fmt.Sprintf("Pass rate: %.2f%%", float64(passed)/float64(len(runs))*100),
		fmt.Sprintf("Period: %s to %s", first.Format(time.DateTime), last.Format(time.DateTime)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ChallengeRows formats aggregates as table rows: challenge, runs, pass
// rate, average score, best score and peak attempts.
func ChallengeRows(aggs []model.ChallengeAggregate) [][]string {
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		avg, best := "-", "-"
		if v, ok := AvgScore(agg); ok {
			avg = fmt.Sprintf("%.1f", v)
			best = fmt.Sprintf("%.1f", agg.BestScore)
		}
		rows = append(rows, []string{
			string(agg.Challenge),
			fmt.Sprintf("%d", agg.Runs),
			fmt.Sprintf("%.2f%%", PassRate(agg)*100),
			avg,
			best,
			fmt.Sprintf("%d", agg.Attempts),
		})
	}
	return rows
}

// ChallengeHeaders are the column titles matching ChallengeRows.
var ChallengeHeaders = []string{"Challenge", "Runs", "Pass rate", "Avg score", "Best", "Attempts"}

// RenderChallengeTable prints per-challenge aggregates.
func RenderChallengeTable(w io.Writer, title string, aggs []model.ChallengeAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No challenge stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(ChallengeHeaders, ChallengeRows(aggs), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
