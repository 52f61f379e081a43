// Package constants holds the CODATA 2018 values used by the solver and the
// rest masses of the particles that make up the supported atoms.
package constants

import "math"

const FineStructure float64 = 7.2973525693e-3 // α, dimensionless
const Hbar float64 = 1.054571817e-34           // [J s]
const SpeedOfLight float64 = 299792458         // [m/s]
const ElementaryCharge = 1.602176634e-19       // C, also J per eV

// HbarC is ħc in [J m].
const HbarC = Hbar * SpeedOfLight

// Rest masses [MeV/c²].
const (
	ElectronMassMeV = 0.51099895000
	MuonMassMeV     = 105.6583745
	ProtonMassMeV   = 938.27208816
	DeuteronMassMeV = 1875.61294257
	AlphaMassMeV    = 3727.3794066 // He-4 nucleus
)

// EV converts an energy in electronvolt to joule.
func EV(v float64) float64 { return v * ElementaryCharge }

// ToEV converts an energy in joule to electronvolt.
func ToEV(j float64) float64 { return j / ElementaryCharge }

// MassFromMeV converts a rest mass in MeV/c² to kg.
func MassFromMeV(mev float64) float64 {
	return mev * 1e6 * ElementaryCharge / (SpeedOfLight * SpeedOfLight)
}

// ReducedMassMeV returns the reduced mass [kg] of two bodies whose rest
// masses are given in MeV/c².
func ReducedMassMeV(m1, m2 float64) float64 {
	a, b := MassFromMeV(m1), MassFromMeV(m2)
	return a * b / (a + b)
}

// RestEnergy returns m c² [J].
func RestEnergy(m float64) float64 { return m * SpeedOfLight * SpeedOfLight }

// BohrRadius returns the hydrogenic length scale ħ/(m c Z α) [m].
func BohrRadius(z int, m float64) float64 {
	return Hbar / (m * SpeedOfLight * float64(z) * FineStructure)
}

// IsPositiveFinite reports whether v is a usable physical magnitude.
func IsPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
