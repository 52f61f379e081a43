package metrics

import (
	"sort"

	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
)

// Metric observes a radial wavefunction one sample at a time. x holds
// (G, F) at radius r; samples arrive in ascending r.
type Metric interface {
	Name() string
	Observe(x dynamo.State, r float64)
	Value() float64
	Reset()
}

// Standard returns fresh instances of every wavefunction observable.
func Standard() []Metric {
	return []Metric{
		NewNorm(),
		NewMeanRadius(),
		NewRMSRadius(),
		NewPeakRadius(),
		NewNodes(),
	}
}

// Collect feeds the sampled wavefunction to ms and returns their values
// keyed by name.
func Collect(r, g, f []float64, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i := range r {
		x := dynamo.State{g[i], f[i]}
		for _, m := range ms {
			m.Observe(x, r[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the keys of values in a stable order.
func Names(values map[string]float64) []string {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
