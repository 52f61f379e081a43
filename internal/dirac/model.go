package dirac

import (
	"github.com/ZAKI1905/muAlphaSim/internal/constants"
	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
)

// RadialModel is the coupled first-order system for the large and small
// radial components (G, F) at a fixed trial energy. The independent
// variable is r and must stay strictly positive.
type RadialModel struct {
	Kappa      float64
	Energy     float64 // total energy E [J]
	RestEnergy float64 // m_r c² [J]
	ZAlpha     float64
}

func (m *RadialModel) StateDim() int { return 2 }

// Potential is the point-Coulomb energy V(r) = -Zα ħc / r [J].
func (m *RadialModel) Potential(r float64) float64 {
	return -m.ZAlpha * hbarC / r
}

func (m *RadialModel) delta1(r float64) float64 {
	return m.Energy + m.RestEnergy - m.Potential(r)
}

func (m *RadialModel) delta2(r float64) float64 {
	return m.Energy - m.RestEnergy - m.Potential(r)
}

func (m *RadialModel) Derive(x dynamo.State, r float64) dynamo.State {
	g, f := x[0], x[1]
	return dynamo.State{
		-m.Kappa/r*g + m.delta1(r)/hbarC*f,
		m.Kappa/r*f - m.delta2(r)/hbarC*g,
	}
}

const hbarC = constants.HbarC
