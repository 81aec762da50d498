package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/humangate/internal/config"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/golf"
)

var (
	simDrag        string
	simShots       int
	simFrames      int
	simDt          float64
	simFormat      string
	simFriction    float64
	simRestitution float64
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run challenge simulators without a terminal UI",
	}
	golfCmd := &cobra.Command{
		Use:   "golf",
		Short: "Play the golf course headlessly with a fixed drag",
		Args:  cobra.NoArgs,
		RunE:  runSimulateGolfCmd,
	}
	golfCmd.Flags().StringVar(&simDrag, "drag", "-60,20", "drag offset from the ball as dx,dy (pixels)")
	golfCmd.Flags().IntVar(&simShots, "shots", 1, "maximum shots")
	golfCmd.Flags().IntVar(&simFrames, "max-frames", 3600, "frame budget across all shots")
	golfCmd.Flags().Float64Var(&simDt, "dt", golf.FrameUnit, "frame length in seconds")
	golfCmd.Flags().StringVar(&simFormat, "format", "text", "output format: text, yaml or json")
	golfCmd.Flags().Float64Var(&simFriction, "friction", 0, "override friction (0 = config)")
	golfCmd.Flags().Float64Var(&simRestitution, "restitution", -1, "override restitution (<0 = config)")
	cmd.AddCommand(golfCmd)
	return cmd
}

func runSimulateGolfCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	drag, err := parseDrag(simDrag)
	if err != nil {
		return err
	}
	if simShots < 1 || simFrames < 1 || simDt <= 0 {
		return fmt.Errorf("--shots, --max-frames and --dt must be positive")
	}
	if simFriction > 0 {
		cfg.Golf.Friction = simFriction
	}
	if simRestitution >= 0 {
		cfg.Golf.Restitution = simRestitution
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	res := golf.Simulate(cfg.Golf, generator.FromSeed(cfg.Seed), golf.SimOptions{
		Drag:      drag,
		Shots:     simShots,
		Dt:        simDt,
		MaxFrames: simFrames,
	})
	return writeSimResult(cmd.OutOrStdout(), res, simFormat)
}

func parseDrag(s string) (golf.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return golf.Vec{}, fmt.Errorf("invalid --drag %q (expected dx,dy)", s)
	}
	dx, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return golf.Vec{}, fmt.Errorf("invalid --drag dx: %w", err)
	}
	dy, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return golf.Vec{}, fmt.Errorf("invalid --drag dy: %w", err)
	}
	return golf.Vec{X: dx, Y: dy}, nil
}

func writeSimResult(w io.Writer, res golf.SimResult, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		_, err := fmt.Fprintf(w, "outcome=%s shots=%d frames=%d resets=%d bounces=%d final=(%.1f, %.1f)\n",
			res.Outcome, res.Shots, res.Frames, res.Resets, res.Bounces, res.FinalX, res.FinalY)
		return err
	default:
		return fmt.Errorf("unknown --format %q (use text, yaml or json)", format)
	}
}
