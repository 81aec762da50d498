// Package main provides the CLI entrypoint for humangate.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/humangate/internal/config"
	"github.com/verte-zerg/humangate/internal/generator"
	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/progression"
	"github.com/verte-zerg/humangate/internal/session"
	"github.com/verte-zerg/humangate/internal/stats"
	"github.com/verte-zerg/humangate/internal/statsui"
	"github.com/verte-zerg/humangate/internal/store"
	"github.com/verte-zerg/humangate/internal/tui"
)

const defaultCurveWindow = 5

var (
	gateSeed       int64
	gateDB         string
	gateStorageKey string
	gateEphemeral  bool
	gateDebug      bool

	statsChallenge   string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsText        bool

	logger = zap.NewNop()
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "humangate",
		Short:             "Terminal human-verification gateway",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: initLogger,
		PersistentPostRun: func(*cobra.Command, []string) {
			// Sync fails on some file types; nothing useful to do about it.
			_ = logger.Sync()
		},
		RunE: runGateCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.Int64Var(&gateSeed, "seed", 0, "random seed for challenge layouts (0 = time based)")
	flags.StringVar(&gateDB, "db", config.DefaultDBPath(), "path to the SQLite database")
	flags.StringVar(&gateStorageKey, "storage-key", config.DefaultStorageKey, "key of the persisted session record")
	flags.BoolVar(&gateEphemeral, "ephemeral", false, "keep progress in memory only")
	flags.BoolVar(&gateDebug, "debug", false, "write debug-level logs")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start or resume verification (default)",
		Args:  cobra.NoArgs,
		RunE:  runGateCmd,
	})
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func initLogger(*cobra.Command, []string) error {
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	if gateDebug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	built, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = built
	return nil
}

// resolveConfig layers defaults, the config file and explicit flags.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyInt64Config(cmd, "seed", &gateSeed, fileCfg.Session.Seed)
	applyStringConfig(cmd, "storage-key", &gateStorageKey, fileCfg.Session.StorageKey)

	cfg := config.Defaults()
	fileCfg.Apply(&cfg)
	cfg.Seed = gateSeed
	cfg.StorageKey = gateStorageKey
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// gateBackend opens the persistence layer. The returned recorder is nil in
// ephemeral mode.
func gateBackend() (session.Backend, progression.RunRecorder, func(), error) {
	if gateEphemeral {
		return session.NewMemoryBackend(), nil, func() {}, nil
	}
	st, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	return st, st, func() { closeStore(st) }, nil
}

func openStore() (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(gateDB), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.Open(gateDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runGateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	backend, runs, closeFn, err := gateBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	sess, err := session.New(ctx, backend, cfg.StorageKey, session.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("gate started",
		zap.String("session", sess.State().SessionID),
		zap.Int("index", sess.CurrentIndex()),
		zap.Bool("ephemeral", gateEphemeral),
	)

	gen := generator.FromSeed(cfg.Seed)
	m := tui.NewModel(ctx, cfg, sess, gen, runs, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard verification progress and start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			if err := sess.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}
			logger.Info("session reset", zap.String("session", sess.State().SessionID))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Progress cleared. New session %s.\n", sess.State().SessionID)
			return err
		},
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show challenge run history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsChallenge, "challenge", "", "challenge filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsText, "text", false, "print a plain report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	cfg := model.StatsConfig{
		Challenge:   model.ChallengeID(strings.ToLower(statsChallenge)),
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsText {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return report.Render(cmd.OutOrStdout(), 0, false)
	}
	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	d := config.Defaults()
	return fmt.Sprintf(`# humangate configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# seed = 0                     # Layout seed (0 = time based)
# storage-key = %q

[golf]
# friction = %g              # Velocity kept per 1/60 s
# restitution = %g             # Bounce energy kept
# power-scale = %g              # Launch speed per pixel of drag
# goal-radius = %g              # Capture radius around the hole

[stop]
# speed = %g                   # Marker speed, px/s
# tolerance = %g                # Max distance from the target center

[rhythm]
# notes = %d
# interval = %g               # Seconds between notes
# timing-window = %g          # Seconds either side of a note
# pass-threshold = %g          # Accuracy needed when pass-target is 0
# pass-target = %d               # Hits that end the song early with a pass

[counter]
# correct = %d
# acceptable-range = %d          # Tolerance around the answer (0 = exact)
`,
		d.StorageKey,
		d.Golf.Friction,
		d.Golf.Restitution,
		d.Golf.PowerScale,
		d.Golf.GoalRadius,
		d.Stop.Speed,
		d.Stop.Tolerance,
		d.Rhythm.Notes,
		d.Rhythm.Interval,
		d.Rhythm.TimingWindow,
		d.Rhythm.PassThreshold,
		d.Rhythm.PassTarget,
		d.Counter.Correct,
		d.Counter.AcceptableRange,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
