package metrics

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/ZAKI1905/muAlphaSim/internal/dynamo"
)

// density accumulates P(r) = G² + F² on the observed grid.
type density struct {
	r []float64
	p []float64
}

func (d *density) observe(x dynamo.State, r float64) {
	if len(x) < 2 {
		return
	}
	d.r = append(d.r, r)
	d.p = append(d.p, x[0]*x[0]+x[1]*x[1])
}

func (d *density) reset() {
	d.r = d.r[:0]
	d.p = d.p[:0]
}

// moment returns ∫ r^k P dr.
func (d *density) moment(k int) float64 {
	if len(d.r) < 2 {
		return 0
	}
	if k == 0 {
		return integrate.Trapezoidal(d.r, d.p)
	}
	w := make([]float64, len(d.p))
	for i := range w {
		w[i] = math.Pow(d.r[i], float64(k)) * d.p[i]
	}
	return integrate.Trapezoidal(d.r, w)
}

type Norm struct{ density }

func NewNorm() *Norm { return &Norm{} }

func (n *Norm) Name() string                      { return "norm" }
func (n *Norm) Observe(x dynamo.State, r float64) { n.observe(x, r) }
func (n *Norm) Value() float64                    { return n.moment(0) }
func (n *Norm) Reset()                            { n.reset() }

// MeanRadius is <r> = ∫ r P dr / ∫ P dr.
type MeanRadius struct{ density }

func NewMeanRadius() *MeanRadius { return &MeanRadius{} }

func (m *MeanRadius) Name() string                      { return "mean_radius" }
func (m *MeanRadius) Observe(x dynamo.State, r float64) { m.observe(x, r) }
func (m *MeanRadius) Reset()                            { m.reset() }

func (m *MeanRadius) Value() float64 {
	norm := m.moment(0)
	if norm == 0 {
		return 0
	}
	return m.moment(1) / norm
}

// RMSRadius is sqrt(<r²>).
type RMSRadius struct{ density }

func NewRMSRadius() *RMSRadius { return &RMSRadius{} }

func (m *RMSRadius) Name() string                      { return "rms_radius" }
func (m *RMSRadius) Observe(x dynamo.State, r float64) { m.observe(x, r) }
func (m *RMSRadius) Reset()                            { m.reset() }

func (m *RMSRadius) Value() float64 {
	norm := m.moment(0)
	if norm == 0 {
		return 0
	}
	return math.Sqrt(m.moment(2) / norm)
}

// PeakRadius is the sampled radius of maximum P(r).
type PeakRadius struct {
	peak   float64
	radius float64
}

func NewPeakRadius() *PeakRadius { return &PeakRadius{} }

func (p *PeakRadius) Name() string { return "peak_radius" }

func (p *PeakRadius) Observe(x dynamo.State, r float64) {
	if len(x) < 2 {
		return
	}
	if d := x[0]*x[0] + x[1]*x[1]; d > p.peak {
		p.peak = d
		p.radius = r
	}
}

func (p *PeakRadius) Value() float64 { return p.radius }

func (p *PeakRadius) Reset() {
	p.peak = 0
	p.radius = 0
}

// Nodes counts sign changes of the large component G. Samples whose
// magnitude is below Floor times the largest |G| seen so far are skipped,
// so that noise in the decaying tails is not counted.
type Nodes struct {
	Floor float64

	count int
	last  float64
	max   float64
}

func NewNodes() *Nodes { return &Nodes{Floor: 1e-6} }

func (n *Nodes) Name() string { return "nodes" }

func (n *Nodes) Observe(x dynamo.State, r float64) {
	if len(x) < 1 {
		return
	}
	g := x[0]
	n.max = math.Max(n.max, math.Abs(g))
	if math.Abs(g) <= n.Floor*n.max {
		return
	}
	if n.last != 0 && (g > 0) != (n.last > 0) {
		n.count++
	}
	n.last = g
}

func (n *Nodes) Value() float64 { return float64(n.count) }

func (n *Nodes) Reset() {
	n.count = 0
	n.last = 0
	n.max = 0
}
