package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/interp"

	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
)

type PlotOptions struct {
	Width   int
	Height  int
	Caption string
	// RMax cuts the radial axis; zero plots the whole grid.
	RMax float64
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 70, Height: 15}
}

var seriesColors = []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Yellow}

// Resample interpolates y(r) linearly onto n evenly spaced radii in [lo, hi].
// r must be strictly increasing.
func Resample(r, y []float64, lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("resample: need at least 2 points, got %d", n)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(r, y); err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		x := math.Min(lo+float64(i)*step, r[len(r)-1])
		out[i] = pl.Predict(math.Max(x, r[0]))
	}
	return out, nil
}

// PlotRadial draws one or more radial columns against r on a common,
// evenly spaced axis.
func PlotRadial(r []float64, cols [][]float64, names []string, o PlotOptions) (string, error) {
	if len(r) < 2 {
		return "", fmt.Errorf("plot: need at least 2 samples")
	}
	if len(cols) == 0 || len(cols) > len(seriesColors) {
		return "", fmt.Errorf("plot: between 1 and %d series, got %d", len(seriesColors), len(cols))
	}
	if o.Width < 2 {
		o.Width = DefaultPlotOptions().Width
	}
	if o.Height < 2 {
		o.Height = DefaultPlotOptions().Height
	}

	lo, hi := r[0], r[len(r)-1]
	if o.RMax > lo && o.RMax < hi {
		hi = o.RMax
	}

	data := make([][]float64, len(cols))
	for i, c := range cols {
		rs, err := Resample(r, c, lo, hi, o.Width)
		if err != nil {
			return "", err
		}
		data[i] = rs
	}

	caption := o.Caption
	if caption == "" {
		caption = fmt.Sprintf("r ∈ [%.3g, %.3g] m", lo, hi)
	}
	opts := []asciigraph.Option{
		asciigraph.Height(o.Height),
		asciigraph.Width(o.Width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(seriesColors[:len(cols)]...),
	}
	if len(names) == len(cols) {
		opts = append(opts, asciigraph.SeriesLegends(names...))
	}
	return asciigraph.PlotMany(data, opts...), nil
}

// PlotWavefunction draws G and F of a solved state.
func PlotWavefunction(wf *dirac.RadialSolution, o PlotOptions) (string, error) {
	return PlotRadial(wf.R, [][]float64{wf.G, wf.F}, []string{"G", "F"}, o)
}

// PlotConvergence draws log10|Δ| over the root search iterations.
func PlotConvergence(trace []dirac.Iteration, o PlotOptions) string {
	if len(trace) < 2 {
		return ""
	}
	vals := make([]float64, len(trace))
	for i, it := range trace {
		vals[i] = math.Log10(math.Max(math.Abs(it.Delta), 1e-300))
	}
	caption := o.Caption
	if caption == "" {
		caption = "log10 |Δ| per iteration"
	}
	return asciigraph.Plot(vals,
		asciigraph.Height(max(o.Height, 2)),
		asciigraph.Width(max(o.Width, len(vals))),
		asciigraph.Caption(caption),
	)
}
