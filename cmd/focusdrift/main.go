package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/focusdrift/internal/config"
	"github.com/san-kum/focusdrift/internal/logging"
	"github.com/san-kum/focusdrift/internal/metrics"
	"github.com/san-kum/focusdrift/internal/session"
	"github.com/san-kum/focusdrift/internal/storage"
	"github.com/san-kum/focusdrift/internal/telemetry"
	"github.com/san-kum/focusdrift/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	seed        int64
	fixedStep   bool
	logLevel    string
	metricsAddr string
	noSave      bool
	theme       string
	trials      int
	maxFrames   int
	svgPath     string
	framePath   string
)

// main registers the focusdrift commands and runs the interactive game when
// no subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "focusdrift",
		Short:         "keep the signal locked while distractions pile up",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          playInteractive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".focusdrift", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", config.DefaultPreset, "preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	pf.BoolVar(&fixedStep, "fixed-step", true, "advance with the nominal frame step instead of measured time")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&noSave, "no-save", false, "do not record runs")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play in the terminal",
		Args:  cobra.NoArgs,
		RunE:  playInteractive,
	}
	rootCmd.Flags().StringVar(&theme, "theme", viz.DefaultTheme.Name, "color theme")
	playCmd.Flags().StringVar(&theme, "theme", viz.DefaultTheme.Name, "color theme")

	runCmd := &cobra.Command{
		Use:   "run [policy|scenario.yaml]",
		Short: "play sessions headless with an input policy or scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&trials, "trials", 1, "number of seeded sessions to play")
	runCmd.Flags().IntVar(&maxFrames, "max-frames", 0, "stop a session after this many frames (0 for no limit)")
	runCmd.Flags().StringVar(&framePath, "frame", "", "write the last frame as SVG to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stress and focus of a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run and its history as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "write an SVG trace to this file instead of JSON")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	policiesCmd := &cobra.Command{
		Use:   "policies",
		Short: "list headless input policies",
		Args:  cobra.NoArgs,
		RunE:  listPolicies,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  dumpConfig,
	}

	rootCmd.AddCommand(playCmd, runCmd, listCmd, plotCmd, exportCmd, presetsCmd, policiesCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers preset, config file, environment and flags. The seed is
// always resolved so it can be recorded with the run.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	base, err := config.LookupPreset(preset)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOver(base, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	return cfg, nil
}

// applyFlags sets explicitly passed flags on cfg and resolves a zero seed.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("fixed-step") {
		cfg.FixedStep = fixedStep
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startTelemetry serves metrics in the background when --metrics-addr is set.
func startTelemetry(ctx context.Context, log *slog.Logger) *telemetry.Collector {
	if metricsAddr == "" {
		return nil
	}
	c := telemetry.New()
	go func() {
		if err := c.Serve(ctx, metricsAddr, log); err != nil {
			log.Error("metrics server failed", "err", err)
		}
	}()
	return c
}

// newSession builds a session with the default metrics, a history recorder
// and, when enabled, telemetry.
func newSession(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...session.Option) (*session.Session, *session.History) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	opts = append([]session.Option{session.WithLogger(log), session.WithRand(rng)}, opts...)
	s := session.New(cfg, opts...)
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	history := session.NewHistory()
	s.AddObserver(history)
	if c := startTelemetry(ctx, log); c != nil {
		s.AddObserver(c)
	}
	return s, history
}

func saveRun(st *storage.Store, cfg *config.Config, policy string, sum session.Summary, samples []session.Sample) (string, error) {
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunMetadata{
		Preset:    preset,
		Policy:    policy,
		Seed:      cfg.Seed,
		TotalTime: cfg.TotalTime,
		FixedStep: cfg.FixedStep,
		Summary:   sum,
	}, samples)
}

func playInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log, closer, err := logging.Open(filepath.Join(dataDir, logging.DefaultFile), level)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	s, history := newSession(ctx, cfg, log, session.WithPointerTracking())
	feed := viz.NewFeed()
	s.AddObserver(feed)

	if !noSave {
		st := storage.New(dataDir)
		s.AddObserver(session.Funcs{End: func(sum session.Summary) {
			id, err := saveRun(st, s.Config(), "player", sum, history.Samples)
			if err != nil {
				log.Error("failed to save run", "err", err)
				return
			}
			log.Info("run saved", "id", id)
		}})
	}

	d := session.NewDriver(s, 0)
	driverCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- d.Run(driverCtx) }()

	err = viz.Run(ctx, d, feed, cfg.Viewport, viz.GetTheme(theme))
	stop()
	<-done
	return err
}
