package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ZAKI1905/muAlphaSim/internal/automation"
	"github.com/ZAKI1905/muAlphaSim/internal/config"
	"github.com/ZAKI1905/muAlphaSim/internal/constants"
	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/experiment"
	"github.com/ZAKI1905/muAlphaSim/internal/storage"
	"github.com/ZAKI1905/muAlphaSim/internal/viz"
)

func traceLogger(atom string, q dirac.QuantumState) dirac.TraceFunc {
	return func(it dirac.Iteration) {
		slog.Debug("iteration",
			"atom", atom,
			"state", q.String(),
			"i", it.Index,
			"method", it.Method,
			"binding_ev", it.BindingEV,
			"delta", it.Delta,
			"step_ev", it.StepEV,
		)
	}
}

func persist(out *experiment.Outcome, name string) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunMetadata{
		Name:        name,
		Atom:        out.Atom.Name,
		Z:           out.Atom.Z,
		ReducedMass: out.Atom.ReducedMass(),
		Integrator:  out.Integrator,
		ElapsedMS:   float64(out.Elapsed.Microseconds()) / 1000,
		Metrics:     out.Metrics,
	}, out.Result)
}

func solveState(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	expCfg := automation.ExperimentConfig(cfg)
	expCfg.Options.Trace = traceLogger(cfg.Atom, expCfg.State)

	exp, err := experiment.Build(experiment.NewRegistry(), expCfg)
	if err != nil {
		return err
	}

	slog.Info("solving", "atom", cfg.Atom, "state", expCfg.State.String(), "integrator", cfg.Integrator)
	out, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	slog.Info("converged", "binding_ev", out.Result.BindingEV, "iterations", out.Result.Iterations, "elapsed", out.Elapsed)

	fmt.Println(viz.Report(out, viz.NewStyles(viz.GetTheme(themeName))))

	if noSave {
		return nil
	}
	runID, err := persist(out, "")
	if err != nil {
		return err
	}
	fmt.Printf("run saved: %s\n", runID)
	return nil
}

func guessState(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.Build(experiment.NewRegistry(), automation.ExperimentConfig(cfg))
	if err != nil {
		return err
	}

	s := exp.Solver()
	q := cfg.QuantumState()
	energy, bindEV, err := s.Sommerfeld(q.N, q.Kappa)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "atom\t%s\n", cfg.Atom)
	fmt.Fprintf(w, "state\t%s\n", q)
	fmt.Fprintf(w, "binding\t%.12g eV\n", bindEV)
	fmt.Fprintf(w, "total energy\t%.12e J\n", energy)
	fmt.Fprintf(w, "rest energy\t%.12e J\n", s.RestEnergy())
	fmt.Fprintf(w, "reduced mass\t%.12e kg\n", s.ReducedMass())
	fmt.Fprintf(w, "bohr length\t%.6e m\n", s.LengthScale())
	return w.Flush()
}

func solveLevels(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	rows, err := automation.RunLevels(cmd.Context(), cfg, nmax, experiment.NewRegistry(),
		func(i, total int, step automation.ScenarioStep) {
			q := dirac.QuantumState{N: step.N, Kappa: step.Kappa}
			slog.Info("solving level", "atom", step.Atom, "state", q.String(), "progress", fmt.Sprintf("%d/%d", i, total))
		})
	if len(rows) > 0 {
		fmt.Print(viz.LevelsTable(rows, viz.NewStyles(viz.GetTheme(themeName))))
	}
	return err
}

func watchState(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	expCfg := automation.ExperimentConfig(cfg)
	registry := experiment.NewRegistry()

	// Fail before the terminal is taken over.
	if _, err := experiment.Build(registry, expCfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	updates := viz.Stream(ctx, func(ctx context.Context, trace dirac.TraceFunc) (*experiment.Outcome, error) {
		c := expCfg
		c.Options.Trace = trace
		exp, err := experiment.Build(registry, c)
		if err != nil {
			return nil, err
		}
		return exp.Run(ctx)
	})

	title := fmt.Sprintf("%s %s", cfg.Atom, expCfg.State)
	final, err := tea.NewProgram(viz.NewWatchModel(title, updates, cancel)).Run()
	if err != nil {
		return err
	}

	out, err := final.(viz.WatchModel).Outcome()
	if err != nil {
		return err
	}
	if out == nil || noSave {
		return nil
	}
	runID, err := persist(out, "")
	if err != nil {
		return err
	}
	fmt.Printf("run saved: %s\n", runID)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	slog.Info("scenario", "name", sc.Name, "steps", len(sc.Steps))

	outcomes, runErr := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(),
		func(i, total int, step automation.ScenarioStep) {
			slog.Info("step", "progress", fmt.Sprintf("%d/%d", i, total), "preset", step.Preset, "atom", step.Atom)
		})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tATOM\tSTATE\tBINDING (eV)\tITER\tRUN")
	for i, out := range outcomes {
		runID := "-"
		if !noSave {
			if runID, err = persist(out, sc.Steps[i].SaveAs); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.10g\t%d\t%s\n",
			i+1, out.Atom.Name, out.Result.State, out.Result.BindingEV, out.Result.Iterations, runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	atoms := experiment.NewRegistry().ListAtoms()
	if len(args) > 0 {
		atoms = args
	}

	found := false
	for _, atom := range atoms {
		presets := config.ListPresets(atom)
		if len(presets) == 0 {
			continue
		}
		found = true
		fmt.Printf("presets for %s:\n", atom)
		for _, p := range presets {
			cfg := config.GetPreset(atom, p)
			fmt.Printf("  %-8s n=%d kappa=%d\n", p, cfg.N, cfg.Kappa)
		}
	}
	if !found {
		fmt.Printf("no presets for: %v\n", atoms)
	}
	return nil
}

// bohrLength is the length scale of a stored run.
func bohrLength(meta *storage.RunMetadata) float64 {
	if meta.Z <= 0 || !constants.IsPositiveFinite(meta.ReducedMass) {
		return 0
	}
	return constants.BohrRadius(meta.Z, meta.ReducedMass)
}
