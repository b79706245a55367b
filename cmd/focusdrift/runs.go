package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/focusdrift/internal/automation"
	"github.com/san-kum/focusdrift/internal/config"
	"github.com/san-kum/focusdrift/internal/export"
	"github.com/san-kum/focusdrift/internal/logging"
	"github.com/san-kum/focusdrift/internal/session"
	"github.com/san-kum/focusdrift/internal/storage"
)

const defaultPolicy = "focused"

func isScenario(arg string) bool {
	ext := strings.ToLower(filepath.Ext(arg))
	return ext == ".yaml" || ext == ".yml"
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, level)

	ctx, cancel := signalContext()
	defer cancel()

	name := defaultPolicy
	if len(args) > 0 {
		name = args[0]
	}

	if trials > 1 {
		if isScenario(name) {
			return fmt.Errorf("--trials needs a named policy, got scenario %s", name)
		}
		results, err := automation.RunTrials(ctx, cfg, name, trials, cfg.Seed, log)
		if err != nil {
			return err
		}
		return printTrials(results)
	}

	var (
		policy   automation.Policy
		runCfg   = cfg
		presetID = preset
	)
	rng := rand.New(rand.NewSource(cfg.Seed))
	if isScenario(name) {
		sc, err := automation.LoadScenario(name)
		if err != nil {
			return err
		}
		if runCfg, err = sc.Config(cfg, configFile); err != nil {
			return err
		}
		applyFlags(cmd, runCfg)
		if sc.Preset != "" {
			presetID = sc.Preset
		}
		rng = rand.New(rand.NewSource(runCfg.Seed))
		policy = sc.Policy(rng)
	} else if policy, err = automation.NewPolicy(name, rng); err != nil {
		return fmt.Errorf("%w (available: %v)", err, automation.ListPolicies())
	}

	s, history := newSession(ctx, runCfg, log)
	var last session.Snapshot
	s.AddObserver(session.Funcs{Tick: func(snap session.Snapshot) { last = snap }})

	sum, err := automation.Run(ctx, s, policy, runCfg.FrameInterval(), maxFrames)
	if err != nil && !errors.Is(err, automation.ErrFrameLimit) {
		return err
	}
	if err != nil {
		log.Warn("session stopped early", "err", err, "frames", maxFrames)
	}

	fmt.Printf("policy: %s  seed: %d\n", policy.Name(), runCfg.Seed)
	fmt.Print(sum.String())

	if framePath != "" {
		if err := writeFile(framePath, func(w io.Writer) error { return export.FrameToSVG(w, last) }); err != nil {
			return err
		}
	}

	if noSave {
		return nil
	}
	preset = presetID
	id, err := saveRun(storage.New(dataDir), runCfg, policy.Name(), sum, history.Samples)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", id)
	return nil
}

func printTrials(results []automation.TrialResult) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTATUS\tREASON\tFOCUS\tCLEARED\tCOMBO\tELAPSED")

	var focus float64
	for _, r := range results {
		sum := r.Summary
		focus += float64(sum.FocusPercent)
		fmt.Fprintf(w, "%d\t%s\t%s\t%d%%\t%d\t%d\t%.2fs\n",
			r.Seed, sum.Status, sum.Reason, sum.FocusPercent, sum.Cleared, sum.BestCombo, sum.Elapsed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	complete, overload := automation.TrialStats(results)
	fmt.Printf("\ncomplete: %d  overload: %d  mean focus: %.1f%%\n",
		complete, overload, focus/float64(len(results)))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPRESET\tPOLICY\tSTATUS\tFOCUS\tCLEARED\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%%\t%d\t%.2fs\n",
			shortID(run.ID),
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Preset,
			run.Policy,
			run.Summary.Status,
			run.Summary.FocusPercent,
			run.Summary.Cleared,
			run.Summary.Elapsed,
		)
	}

	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func resolveRun(st *storage.Store, args []string) (string, error) {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	return st.Resolve(ref)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("policy: %s  preset: %s\n", meta.Policy, meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		pick    func(session.Sample) float64
	}{
		{"stress", func(s session.Sample) float64 { return s.Stress }},
		{"focus", func(s session.Sample) float64 { return s.Focus }},
		{"live distractions", func(s session.Sample) float64 { return float64(s.Live) }},
	}

	for _, ser := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = ser.pick(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(ser.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Print(meta.Summary.String())
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	if svgPath == "" {
		return st.Export(os.Stdout, runID)
	}

	samples, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	// Runs are recorded without their viewport; the trace uses the current one.
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return writeFile(svgPath, func(w io.Writer) error { return export.RunToSVG(w, samples, cfg.Viewport) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTIME\tSPAWN\tIDLE STRESS\tSPEED")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.0fs\t%s\t%.2f\t%.1f\n", name, p.TotalTime, p.SpawnRate, p.StressGainIdle, p.BrainSpeed)
	}
	return w.Flush()
}

func listPolicies(cmd *cobra.Command, args []string) error {
	for _, name := range automation.ListPolicies() {
		fmt.Println(name)
	}
	return nil
}

func dumpConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
