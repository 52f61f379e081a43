package automation

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZAKI1905/muAlphaSim/internal/config"
	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/experiment"
)

const scenarioYAML = `name: hydrogen-n1
description: ground state with two integrators
defaults:
  atom: hydrogen
  solver:
    n_points: 600
steps:
  - n: 1
    kappa: -1
    save_as: h1s-dopri
  - integrator: cashkarp
    n: 1
    kappa: -1
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, "hydrogen-n1", sc.Name)
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, "h1s-dopri", sc.Steps[0].SaveAs)
	assert.Equal(t, 600, sc.Defaults.Solver.NPoints)
	// Unset defaults keep their built-in values.
	assert.Equal(t, dirac.DefaultMaxIter, sc.Defaults.Solver.MaxIter)
	assert.Equal(t, "dopri5", sc.Defaults.Integrator)
}

func TestLoadScenario_Empty(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: empty\n"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	cfg, err := sc.Resolve(sc.Steps[1])
	require.NoError(t, err)
	assert.Equal(t, "cashkarp", cfg.Integrator)
	assert.Equal(t, 600, cfg.Solver.NPoints)
	assert.Equal(t, "dopri5", sc.Defaults.Integrator, "defaults must not be modified")

	cfg, err = sc.Resolve(ScenarioStep{Atom: "muonic_helium", Preset: "2s"})
	require.NoError(t, err)
	assert.Equal(t, dirac.QuantumState{N: 2, Kappa: -1}, cfg.QuantumState())
	assert.Positive(t, cfg.Solver.RMaxFactor)

	_, err = sc.Resolve(ScenarioStep{Preset: "9z"})
	assert.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	var seen []int
	outs, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), func(i, total int, _ ScenarioStep) {
		assert.Equal(t, 2, total)
		seen = append(seen, i)
	})
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, "cashkarp", outs[1].Integrator)
	assert.InEpsilon(t, outs[0].Result.BindingEV, outs[1].Result.BindingEV, 1e-6)
}

func TestRunScenario_StopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{N: 1, Kappa: -1, NPoints: 400}, {Atom: "unobtainium"}}}
	outs, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil)
	assert.Error(t, err)
	assert.Len(t, outs, 1)
}

func TestLevels(t *testing.T) {
	got := Levels(2)
	want := []dirac.QuantumState{
		{N: 1, Kappa: -1},
		{N: 2, Kappa: -1},
		{N: 2, Kappa: 1},
		{N: 2, Kappa: -2},
	}
	assert.Equal(t, want, got)
	assert.Len(t, Levels(3), 9)
	assert.Empty(t, Levels(0))
}

func TestPresetsConverge(t *testing.T) {
	atoms := make([]string, 0, len(config.Presets))
	for atom := range config.Presets {
		atoms = append(atoms, atom)
	}
	slices.Sort(atoms)

	for _, atom := range atoms {
		for _, name := range config.ListPresets(atom) {
			t.Run(atom+"/"+name, func(t *testing.T) {
				cfg := config.GetPreset(atom, name)
				require.NotNil(t, cfg)

				exp, err := experiment.Build(experiment.NewRegistry(), ExperimentConfig(cfg))
				require.NoError(t, err)
				out, err := exp.Run(context.Background())
				require.NoError(t, err)

				res := out.Result
				assert.Less(t, res.BindingEV, 0.0)
				assert.Less(t, res.Iterations, cfg.Solver.MaxIter)

				_, want, err := exp.Solver().Sommerfeld(cfg.N, cfg.Kappa)
				require.NoError(t, err)
				assert.InDelta(t, 0, math.Abs(res.BindingEV-want)/math.Abs(want), 1e-4)
			})
		}
	}
}
