package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZAKI1905/muAlphaSim/internal/config"
	"github.com/ZAKI1905/muAlphaSim/internal/experiment"
	"github.com/ZAKI1905/muAlphaSim/internal/viz"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	// Level selection
	preset     string
	integrator string
	n          int
	kappa      int
	nmax       int
	// Solver overrides
	rMaxFactor float64
	nPoints    int
	maxIter    int
	derivOrder int
	parallel   bool
	relTol     float64
	absTol     float64
	// Output
	noSave    bool
	themeName string
	outPath   string
	extent    float64
	density   bool
	braille   bool
	svgPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mualpha",
		Short:         "Dirac bound states of hydrogenic and muonic atoms",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mualpha", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	solveCmd := &cobra.Command{
		Use:   "solve [atom]",
		Short: "solve one bound state and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  solveState,
	}
	addLevelFlags(solveCmd)
	addSolverFlags(solveCmd)
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	solveCmd.Flags().StringVar(&themeName, "theme", "spectral", themeHelp("report"))

	guessCmd := &cobra.Command{
		Use:   "guess [atom]",
		Short: "Sommerfeld fine-structure estimate only",
		Args:  cobra.MaximumNArgs(1),
		RunE:  guessState,
	}
	addLevelFlags(guessCmd)

	levelsCmd := &cobra.Command{
		Use:   "levels [atom]",
		Short: "solve every level up to a principal quantum number",
		Args:  cobra.MaximumNArgs(1),
		RunE:  solveLevels,
	}
	levelsCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, integratorHelp())
	levelsCmd.Flags().IntVar(&nmax, "nmax", 2, "highest principal quantum number")
	levelsCmd.Flags().StringVar(&themeName, "theme", "spectral", themeHelp("table"))
	addSolverFlags(levelsCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [atom]",
		Short: "solve one bound state with a live view of the root search",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchState,
	}
	addLevelFlags(watchCmd)
	addSolverFlags(watchCmd)
	watchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of solves",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored wavefunction in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().Float64Var(&extent, "extent", 0, "radial cut in Bohr lengths (0 = whole grid)")
	plotCmd.Flags().BoolVar(&density, "density", false, "plot P = G² + F² instead of G and F")
	plotCmd.Flags().BoolVar(&braille, "braille", false, "draw on a braille canvas instead of a line chart")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the braille canvas to an SVG file")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored wavefunction to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render a stored wavefunction to PNG, SVG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.png)")
	exportPNGCmd.Flags().Float64Var(&extent, "extent", 0, "radial cut in Bohr lengths (0 = whole grid)")
	exportPNGCmd.Flags().BoolVar(&density, "density", false, "plot P = G² + F² instead of G and F")

	presetsCmd := &cobra.Command{
		Use:   "presets [atom]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(solveCmd, guessCmd, levelsCmd, watchCmd, scenarioCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportPNGCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func integratorHelp() string {
	return "integrator (" + strings.Join(experiment.NewRegistry().ListIntegrators(), ", ") + ")"
}

func themeHelp(what string) string {
	return what + " theme (" + strings.Join(viz.ThemeNames(), ", ") + ")"
}

func addLevelFlags(c *cobra.Command) {
	c.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	c.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, integratorHelp())
	c.Flags().IntVar(&n, "n", config.DefaultN, "principal quantum number")
	c.Flags().IntVar(&kappa, "kappa", config.DefaultKappa, "Dirac quantum number (nonzero)")
}

func addSolverFlags(c *cobra.Command) {
	c.Flags().Float64Var(&rMaxFactor, "r-max-factor", 0, "outer radius in Bohr lengths (0 = fixed r_max)")
	c.Flags().IntVar(&nPoints, "points", 0, "samples per integration leg")
	c.Flags().IntVar(&maxIter, "max-iter", 0, "root finder iteration budget")
	c.Flags().IntVar(&derivOrder, "deriv-order", 0, "log-derivative stencil order (1, 2 or 4)")
	c.Flags().BoolVar(&parallel, "parallel", false, "evaluate the slope pair concurrently")
	c.Flags().Float64Var(&relTol, "rtol", 0, "integrator relative tolerance")
	c.Flags().Float64Var(&absTol, "atol", 0, "integrator absolute tolerance")
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// resolveConfig layers preset, config file, positional atom and changed
// flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	atom := cfg.Atom
	if len(args) > 0 {
		atom = args[0]
	}

	if preset != "" {
		p := config.GetPreset(atom, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(atom))
		}
		cfg = p
	}

	// Config file overrides preset
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}
	if len(args) > 0 {
		cfg.Atom = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("n") {
		cfg.N = n
	}
	if flags.Changed("kappa") {
		cfg.Kappa = kappa
	}
	if flags.Changed("r-max-factor") {
		cfg.Solver.RMaxFactor = rMaxFactor
	}
	if flags.Changed("points") {
		cfg.Solver.NPoints = nPoints
	}
	if flags.Changed("max-iter") {
		cfg.Solver.MaxIter = maxIter
	}
	if flags.Changed("deriv-order") {
		cfg.Solver.DerivOrder = derivOrder
	}
	if flags.Changed("parallel") {
		cfg.Solver.ParallelSlope = parallel
	}
	if flags.Changed("rtol") {
		cfg.Tolerance.Rel = relTol
	}
	if flags.Changed("atol") {
		cfg.Tolerance.Abs = absTol
	}
	return cfg, nil
}
