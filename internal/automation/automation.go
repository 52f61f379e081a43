package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ZAKI1905/muAlphaSim/internal/config"
	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/experiment"
)

// Scenario is a scripted batch of solves.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Defaults    *config.Config `yaml:"defaults"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep selects one level. A preset replaces the scenario defaults;
// other zero fields keep them.
type ScenarioStep struct {
	Preset     string  `yaml:"preset"`
	Atom       string  `yaml:"atom"`
	Integrator string  `yaml:"integrator"`
	N          int     `yaml:"n"`
	Kappa      int     `yaml:"kappa"`
	RMaxFactor float64 `yaml:"r_max_factor"`
	NPoints    int     `yaml:"n_points"`
	SaveAs     string  `yaml:"save_as"`
}

// ProgressFunc is told about each step before it runs.
type ProgressFunc func(i, total int, step ScenarioStep)

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := Scenario{Defaults: config.DefaultConfig()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Resolve merges a step over the scenario defaults into a full config.
func (s *Scenario) Resolve(step ScenarioStep) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Defaults != nil {
		c := *s.Defaults
		cfg = &c
	}
	if step.Preset != "" {
		atom := step.Atom
		if atom == "" {
			atom = cfg.Atom
		}
		p := config.GetPreset(atom, step.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", atom, step.Preset)
		}
		cfg = p
	}
	if step.Atom != "" {
		cfg.Atom = step.Atom
	}
	if step.Integrator != "" {
		cfg.Integrator = step.Integrator
	}
	if step.N != 0 {
		cfg.N = step.N
	}
	if step.Kappa != 0 {
		cfg.Kappa = step.Kappa
	}
	if step.RMaxFactor != 0 {
		cfg.Solver.RMaxFactor = step.RMaxFactor
	}
	if step.NPoints != 0 {
		cfg.Solver.NPoints = step.NPoints
	}
	return cfg, nil
}

// ExperimentConfig turns a resolved config into an experiment config.
func ExperimentConfig(cfg *config.Config) experiment.Config {
	return experiment.Config{
		Atom:       cfg.Atom,
		Integrator: cfg.Integrator,
		State:      cfg.QuantumState(),
		Options:    cfg.Options(),
		Tolerance:  cfg.IntegrationTolerance(),
	}
}

// RunScenario solves every step in order and stops at the first failure,
// returning the outcomes gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, progress ProgressFunc) ([]*experiment.Outcome, error) {
	results := make([]*experiment.Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if progress != nil {
			progress(i+1, len(scenario.Steps), step)
		}

		cfg, err := scenario.Resolve(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.Build(registry, ExperimentConfig(cfg))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		out, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, out)
	}

	return results, nil
}

// Levels enumerates every Dirac level with n <= nmax, ordered by n, then
// by l, then by j.
func Levels(nmax int) []dirac.QuantumState {
	var out []dirac.QuantumState
	for n := 1; n <= nmax; n++ {
		for l := 0; l < n; l++ {
			if l > 0 {
				out = append(out, dirac.QuantumState{N: n, Kappa: l})
			}
			out = append(out, dirac.QuantumState{N: n, Kappa: -(l + 1)})
		}
	}
	return out
}

// LevelResult is one row of a level sweep. Err is set when that level
// failed; the sweep carries on with the next one.
type LevelResult struct {
	State   dirac.QuantumState
	GuessEV float64
	Outcome *experiment.Outcome
	Err     error
}

// RunLevels solves every level up to nmax with the base config.
func RunLevels(ctx context.Context, base *config.Config, nmax int, registry *experiment.Registry, progress ProgressFunc) ([]LevelResult, error) {
	levels := Levels(nmax)
	results := make([]LevelResult, 0, len(levels))

	for i, q := range levels {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if progress != nil {
			progress(i+1, len(levels), ScenarioStep{Atom: base.Atom, N: q.N, Kappa: q.Kappa})
		}

		cfg := *base
		cfg.N, cfg.Kappa = q.N, q.Kappa
		exp, err := experiment.Build(registry, ExperimentConfig(&cfg))
		if err != nil {
			return results, err
		}

		row := LevelResult{State: q}
		if _, row.GuessEV, err = exp.Solver().Sommerfeld(q.N, q.Kappa); err != nil {
			row.Err = err
			results = append(results, row)
			continue
		}
		row.Outcome, row.Err = exp.Run(ctx)
		results = append(results, row)
	}

	return results, nil
}
