package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
	"github.com/ZAKI1905/muAlphaSim/internal/metrics"
)

type Config struct {
	Atom       string
	Integrator string
	State      dirac.QuantumState
	Options    dirac.Options
	Tolerance  dynamo.Tolerance
}

// Outcome is a solved level together with what produced it.
type Outcome struct {
	Atom       Atom
	Integrator string
	Result     *dirac.Result
	Metrics    map[string]float64
	Elapsed    time.Duration
}

type Experiment struct {
	cfg     Config
	atom    Atom
	solver  *dirac.Solver
	metrics []metrics.Metric
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(atom Atom, sampler dynamo.Sampler, ms []metrics.Metric) error {
	s, err := dirac.New(atom.Z, atom.ReducedMass())
	if err != nil {
		return fmt.Errorf("atom %s: %w", atom.Name, err)
	}
	if sampler != nil {
		s = s.WithSampler(sampler)
	}
	if e.cfg.Tolerance != (dynamo.Tolerance{}) {
		s = s.WithTolerance(e.cfg.Tolerance)
	}
	e.atom = atom
	e.solver = s
	e.metrics = ms
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	res, err := e.solver.Solve(ctx, e.cfg.State, e.cfg.Options)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Atom:       e.atom,
		Integrator: e.cfg.Integrator,
		Result:     res,
		Metrics:    metrics.Collect(res.R, res.G, res.F, e.metrics...),
		Elapsed:    time.Since(start),
	}, nil
}

// Solver returns the configured solver, e.g. for a Sommerfeld estimate.
func (e *Experiment) Solver() *dirac.Solver {
	return e.solver
}

// Build resolves names through the registry and sets up an experiment.
func Build(reg *Registry, cfg Config) (*Experiment, error) {
	atom, err := reg.GetAtom(cfg.Atom)
	if err != nil {
		return nil, err
	}
	sampler, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	exp := New(cfg)
	if err := exp.Setup(atom, sampler, reg.DefaultMetrics()); err != nil {
		return nil, err
	}
	return exp, nil
}
