package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZAKI1905/muAlphaSim/internal/constants"
	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, []string{"cashkarp", "dopri5", "rkf45"}, reg.ListIntegrators())
	assert.Contains(t, reg.ListAtoms(), "muonic_helium")

	_, err := reg.GetAtom("positronium")
	assert.EqualError(t, err, "unknown atom: positronium")
	_, err = reg.GetIntegrator("euler")
	assert.EqualError(t, err, "unknown integrator: euler")

	reg.RegisterAtom(Atom{Name: "positronium", Z: 1, OrbiterMeV: constants.ElectronMassMeV, NucleusMeV: constants.ElectronMassMeV})
	ps, err := reg.GetAtom("positronium")
	require.NoError(t, err)
	assert.InDelta(t, constants.ElectronMassMeV/2, ps.ReducedMassMeV(), 1e-15)
}

func TestAtomReducedMass(t *testing.T) {
	atom, err := NewRegistry().GetAtom("muonic_helium")
	require.NoError(t, err)

	want := constants.MassFromMeV(atom.ReducedMassMeV())
	assert.InDelta(t, 1, atom.ReducedMass()/want, 1e-12)
	assert.Less(t, atom.ReducedMassMeV(), constants.MuonMassMeV)
}

func TestExperimentRun(t *testing.T) {
	exp, err := Build(NewRegistry(), Config{
		Atom:       "hydrogen",
		Integrator: "dopri5",
		State:      dirac.QuantumState{N: 1, Kappa: -1},
		Options:    dirac.DefaultOptions(),
	})
	require.NoError(t, err)

	out, err := exp.Run(context.Background())
	require.NoError(t, err)

	_, want, err := exp.Solver().Sommerfeld(1, -1)
	require.NoError(t, err)
	assert.InDelta(t, 0, math.Abs(out.Result.BindingEV-want)/math.Abs(want), 1e-6)
	assert.InDelta(t, 1, out.Metrics["norm"], 1e-6)
	assert.Equal(t, 0.0, out.Metrics["nodes"])
	assert.Equal(t, "hydrogen", out.Atom.Name)
}

func TestExperimentRun_NotSetup(t *testing.T) {
	_, err := New(Config{}).Run(context.Background())
	assert.Error(t, err)
}

func TestBuild_UnknownNames(t *testing.T) {
	_, err := Build(NewRegistry(), Config{Atom: "unobtainium", Integrator: "dopri5"})
	assert.Error(t, err)
	_, err = Build(NewRegistry(), Config{Atom: "hydrogen", Integrator: "leapfrog"})
	assert.Error(t, err)
}
