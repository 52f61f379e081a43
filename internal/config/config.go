package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
)

const (
	DefaultAtom       = "hydrogen"
	DefaultIntegrator = "dopri5"
	DefaultN          = 1
	DefaultKappa      = -1
	DefaultRelTol     = 1e-8
	DefaultAbsTol     = 1e-10
)

type Config struct {
	Atom       string          `yaml:"atom" toml:"atom"`
	Integrator string          `yaml:"integrator" toml:"integrator"`
	N          int             `yaml:"n" toml:"n"`
	Kappa      int             `yaml:"kappa" toml:"kappa"`
	Solver     SolverConfig    `yaml:"solver" toml:"solver"`
	Tolerance  ToleranceConfig `yaml:"tolerance" toml:"tolerance"`
}

type SolverConfig struct {
	RMin              float64 `yaml:"r_min" toml:"r_min"`
	RMax              float64 `yaml:"r_max" toml:"r_max"`
	RMaxFactor        float64 `yaml:"r_max_factor" toml:"r_max_factor"`
	RMatchFactor      float64 `yaml:"r_match_factor" toml:"r_match_factor"`
	NPoints           int     `yaml:"n_points" toml:"n_points"`
	TolDelta          float64 `yaml:"tol_delta" toml:"tol_delta"`
	TolStepEV         float64 `yaml:"tol_step_ev" toml:"tol_step_ev"`
	MaxIter           int     `yaml:"max_iter" toml:"max_iter"`
	MinSlopeStepEV    float64 `yaml:"min_slope_step_ev" toml:"min_slope_step_ev"`
	SlopeStepFraction float64 `yaml:"slope_step_fraction" toml:"slope_step_fraction"`
	FlatSlope         float64 `yaml:"flat_slope" toml:"flat_slope"`
	FallbackStepEV    float64 `yaml:"fallback_step_ev" toml:"fallback_step_ev"`
	MaxStepEV         float64 `yaml:"max_step_ev" toml:"max_step_ev"`
	DerivOrder        int     `yaml:"deriv_order" toml:"deriv_order"`
	ParallelSlope     bool    `yaml:"parallel_slope" toml:"parallel_slope"`
}

type ToleranceConfig struct {
	Rel float64 `yaml:"rel" toml:"rel"`
	Abs float64 `yaml:"abs" toml:"abs"`
}

func DefaultConfig() *Config {
	o := dirac.DefaultOptions()
	return &Config{
		Atom:       DefaultAtom,
		Integrator: DefaultIntegrator,
		N:          DefaultN,
		Kappa:      DefaultKappa,
		Solver: SolverConfig{
			RMin:              o.RMin,
			RMax:              o.RMax,
			RMaxFactor:        o.RMaxFactor,
			RMatchFactor:      o.RMatchFactor,
			NPoints:           o.NPoints,
			TolDelta:          o.TolDelta,
			TolStepEV:         o.TolStepEV,
			MaxIter:           o.MaxIter,
			MinSlopeStepEV:    o.MinSlopeStepEV,
			SlopeStepFraction: o.SlopeStepFraction,
			FlatSlope:         o.FlatSlope,
			FallbackStepEV:    o.FallbackStepEV,
			MaxStepEV:         o.MaxStepEV,
			DerivOrder:        o.DerivOrder,
			ParallelSlope:     o.ParallelSlope,
		},
		Tolerance: ToleranceConfig{Rel: DefaultRelTol, Abs: DefaultAbsTol},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file (chosen by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) QuantumState() dirac.QuantumState {
	return dirac.QuantumState{N: c.N, Kappa: c.Kappa}
}

// Options converts the solver section. Trace is left unset.
func (c *Config) Options() dirac.Options {
	s := c.Solver
	return dirac.Options{
		RMin:              s.RMin,
		RMax:              s.RMax,
		RMaxFactor:        s.RMaxFactor,
		RMatchFactor:      s.RMatchFactor,
		NPoints:           s.NPoints,
		TolDelta:          s.TolDelta,
		TolStepEV:         s.TolStepEV,
		MaxIter:           s.MaxIter,
		MinSlopeStepEV:    s.MinSlopeStepEV,
		SlopeStepFraction: s.SlopeStepFraction,
		FlatSlope:         s.FlatSlope,
		FallbackStepEV:    s.FallbackStepEV,
		MaxStepEV:         s.MaxStepEV,
		DerivOrder:        s.DerivOrder,
		ParallelSlope:     s.ParallelSlope,
	}
}

func (c *Config) IntegrationTolerance() dynamo.Tolerance {
	return dynamo.Tolerance{Rel: c.Tolerance.Rel, Abs: c.Tolerance.Abs}
}
