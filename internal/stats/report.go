package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/humangate/internal/model"
)

// Source provides the run history.
type Source interface {
	ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.Run, error)
	ChallengeAggregates(ctx context.Context) ([]model.ChallengeAggregate, error)
}

// Scored lists the challenges whose runs carry a score.
var Scored = []model.ChallengeID{model.Stop, model.Rhythm}

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs        []model.Run
	Window      []model.ChallengeAggregate
	AllTime     []model.ChallengeAggregate
	Curves      []Series
	CurveWindow int
}

// BuildReport loads the filtered run window and the all-time aggregates.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	runs, err := src.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	all, err := src.ChallengeAggregates(ctx)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		Runs:        runs,
		Window:      Aggregate(runs),
		AllTime:     all,
		CurveWindow: cfg.CurveWindow,
	}
	for _, id := range Scored {
		if cfg.Challenge != "" && cfg.Challenge != id {
			continue
		}
		values := ScoreSeries(runs, id)
		if len(values) == 0 {
			continue
		}
		report.Curves = append(report.Curves, Series{
			Name:   string(id),
			Values: MovingAverage(values, cfg.CurveWindow),
		})
	}
	return report, nil
}

// Render prints the full text report. totalWidth of zero measures the
// terminal.
func (r Report) Render(w io.Writer, totalWidth int, forceColor bool) error {
	if err := RenderSummary(w, r.Runs); err != nil {
		return err
	}
	if len(r.Runs) > 0 {
		if err := RenderChallengeTable(w, "Per-Challenge (Window)", r.Window); err != nil {
			return err
		}
	}
	if err := RenderChallengeTable(w, "Per-Challenge (All Time)", r.AllTime); err != nil {
		return err
	}
	return RenderScoreChart(w, "Score Curves", r.Curves, ChartWidthFor(totalWidth), 0, forceColor)
}
