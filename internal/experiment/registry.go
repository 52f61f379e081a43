package experiment

import (
	"fmt"
	"sort"

	"github.com/ZAKI1905/muAlphaSim/internal/constants"
	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
	"github.com/ZAKI1905/muAlphaSim/internal/integrators"
	"github.com/ZAKI1905/muAlphaSim/internal/metrics"
)

// Atom is a hydrogenic two-body system: one orbiting particle bound to a
// nucleus of charge Z. Masses are rest masses in MeV/c².
type Atom struct {
	Name       string
	Label      string
	Z          int
	OrbiterMeV float64
	NucleusMeV float64
}

// ReducedMass returns the reduced mass of the system [kg].
func (a Atom) ReducedMass() float64 {
	return constants.ReducedMassMeV(a.OrbiterMeV, a.NucleusMeV)
}

func (a Atom) ReducedMassMeV() float64 {
	return a.OrbiterMeV * a.NucleusMeV / (a.OrbiterMeV + a.NucleusMeV)
}

type Registry struct {
	atoms       map[string]func() Atom
	integrators map[string]func() dynamo.Sampler
}

func NewRegistry() *Registry {
	r := &Registry{
		atoms:       make(map[string]func() Atom),
		integrators: make(map[string]func() dynamo.Sampler),
	}

	r.atoms["hydrogen"] = func() Atom {
		return Atom{Name: "hydrogen", Label: "H (e⁻ p)", Z: 1, OrbiterMeV: constants.ElectronMassMeV, NucleusMeV: constants.ProtonMassMeV}
	}
	r.atoms["helium_ion"] = func() Atom {
		return Atom{Name: "helium_ion", Label: "He⁺ (e⁻ α)", Z: 2, OrbiterMeV: constants.ElectronMassMeV, NucleusMeV: constants.AlphaMassMeV}
	}
	r.atoms["muonic_hydrogen"] = func() Atom {
		return Atom{Name: "muonic_hydrogen", Label: "μp (μ⁻ p)", Z: 1, OrbiterMeV: constants.MuonMassMeV, NucleusMeV: constants.ProtonMassMeV}
	}
	r.atoms["muonic_deuterium"] = func() Atom {
		return Atom{Name: "muonic_deuterium", Label: "μd (μ⁻ d)", Z: 1, OrbiterMeV: constants.MuonMassMeV, NucleusMeV: constants.DeuteronMassMeV}
	}
	r.atoms["muonic_helium"] = func() Atom {
		return Atom{Name: "muonic_helium", Label: "μα (μ⁻ ⁴He)", Z: 2, OrbiterMeV: constants.MuonMassMeV, NucleusMeV: constants.AlphaMassMeV}
	}

	r.integrators["dopri5"] = func() dynamo.Sampler { return integrators.NewDormandPrince() }
	r.integrators["cashkarp"] = func() dynamo.Sampler { return integrators.NewCashKarp() }
	r.integrators["rkf45"] = func() dynamo.Sampler { return integrators.NewFehlberg() }

	return r
}

// RegisterAtom adds or replaces an atom definition.
func (r *Registry) RegisterAtom(a Atom) {
	r.atoms[a.Name] = func() Atom { return a }
}

func (r *Registry) GetAtom(name string) (Atom, error) {
	fn, ok := r.atoms[name]
	if !ok {
		return Atom{}, fmt.Errorf("unknown atom: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Sampler, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListAtoms() []string {
	return sortedKeys(r.atoms)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []metrics.Metric {
	return metrics.Standard()
}
