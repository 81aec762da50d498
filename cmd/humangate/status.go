package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/progression"
	"github.com/verte-zerg/humangate/internal/session"
)

var statusFormat string

type stepStatus struct {
	Position int      `json:"position" yaml:"position"`
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	State    string   `json:"state" yaml:"state"`
	Attempts int      `json:"attempts" yaml:"attempts"`
	Score    *float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

type gateStatus struct {
	SessionID string       `json:"session_id" yaml:"session_id"`
	Token     string       `json:"token" yaml:"token"`
	Started   time.Time    `json:"started" yaml:"started"`
	Elapsed   string       `json:"elapsed" yaml:"elapsed"`
	Passed    int          `json:"passed" yaml:"passed"`
	Total     int          `json:"total" yaml:"total"`
	Verified  bool         `json:"verified" yaml:"verified"`
	Steps     []stepStatus `json:"steps" yaml:"steps"`
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print verification progress",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().StringVar(&statusFormat, "format", "text", "output format: text, yaml or json")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	backend, _, closeFn, err := gateBackend()
	if err != nil {
		return err
	}
	defer closeFn()
	sess, err := session.New(cmd.Context(), backend, cfg.StorageKey, session.WithLogger(logger))
	if err != nil {
		return err
	}
	return writeStatus(cmd.OutOrStdout(), buildStatus(sess, progression.Sequence()), statusFormat)
}

// buildStatus marks the first unfinished step as current; later steps stay
// pending even when an old result exists for them.
func buildStatus(sess *session.Session, defs []model.ChallengeDefinition) gateStatus {
	state := sess.State()
	index := sess.CurrentIndex()
	st := gateStatus{
		SessionID: state.SessionID,
		Token:     sess.Token(),
		Started:   state.StartTime,
		Elapsed:   formatDuration(sess.Elapsed()),
		Passed:    min(index, len(defs)),
		Total:     len(defs),
		Verified:  index >= len(defs),
	}
	for _, def := range defs {
		step := stepStatus{
			Position: def.Position + 1,
			ID:       string(def.ID),
			Title:    def.Title,
			State:    "pending",
		}
		res, ok := sess.Result(def.ID)
		if ok {
			step.Attempts = res.Attempts
			step.Score = res.Score
		}
		switch {
		case def.Position < index:
			step.State = "passed"
		case def.Position == index && ok && !res.Passed:
			step.State = "failed"
		case def.Position == index:
			step.State = "current"
		}
		st.Steps = append(st.Steps, step)
	}
	return st
}

func writeStatus(w io.Writer, st gateStatus, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeStatusText(w, st)
	default:
		return fmt.Errorf("unknown --format %q (use text, yaml or json)", format)
	}
}

func writeStatusText(w io.Writer, st gateStatus) error {
	lines := []string{
		fmt.Sprintf("Session %s  token %s  elapsed %s", st.SessionID, st.Token, st.Elapsed),
		fmt.Sprintf("Passed %d/%d", st.Passed, st.Total),
	}
	for _, step := range st.Steps {
		line := fmt.Sprintf("  %d. %-8s %-8s attempts=%d", step.Position, step.ID, step.State, step.Attempts)
		if step.Score != nil {
			line += fmt.Sprintf(" score=%.1f", *step.Score)
		}
		lines = append(lines, line)
	}
	if st.Verified {
		lines = append(lines, "Verified. You are probably human.")
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
