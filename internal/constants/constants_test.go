package constants

import (
	"math"
	"testing"
)

func TestMassFromMeV(t *testing.T) {
	me := MassFromMeV(ElectronMassMeV)
	if math.Abs(me-9.1093837015e-31)/9.1093837015e-31 > 1e-8 {
		t.Errorf("electron mass = %e kg", me)
	}
	if got := ToEV(RestEnergy(me)); math.Abs(got-ElectronMassMeV*1e6)/got > 1e-12 {
		t.Errorf("rest energy round trip = %v eV", got)
	}
}

func TestReducedMass(t *testing.T) {
	mr := ReducedMassMeV(ElectronMassMeV, ProtonMassMeV)
	me := MassFromMeV(ElectronMassMeV)
	want := me / (1 + ElectronMassMeV/ProtonMassMeV)
	if math.Abs(mr-want)/want > 1e-12 {
		t.Errorf("reduced mass = %e, want %e", mr, want)
	}
	if mr >= me {
		t.Error("reduced mass must be smaller than the lighter body")
	}
}

func TestBohrRadius(t *testing.T) {
	a := BohrRadius(1, ReducedMassMeV(ElectronMassMeV, ProtonMassMeV))
	if math.Abs(a-5.29465e-11)/5.29465e-11 > 1e-4 {
		t.Errorf("hydrogen length scale = %e m", a)
	}
	if a2 := BohrRadius(2, ReducedMassMeV(ElectronMassMeV, ProtonMassMeV)); math.Abs(a2-a/2) > 1e-24 {
		t.Errorf("length scale does not scale as 1/Z: %e", a2)
	}
}

func TestEVConversion(t *testing.T) {
	if EV(1) != ElementaryCharge {
		t.Error("1 eV != e joule")
	}
	if math.Abs(ToEV(EV(-13.6))+13.6) > 1e-12 {
		t.Error("eV round trip failed")
	}
}

func TestIsPositiveFinite(t *testing.T) {
	cases := map[float64]bool{
		1:            true,
		0:            false,
		-1:           false,
		math.Inf(1):  false,
		math.NaN():   false,
		1e-300:       true,
	}
	for v, want := range cases {
		if got := IsPositiveFinite(v); got != want {
			t.Errorf("IsPositiveFinite(%v) = %v, want %v", v, got, want)
		}
	}
}
