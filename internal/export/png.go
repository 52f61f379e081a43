package export

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ZAKI1905/muAlphaSim/internal/storage"
)

// PlotConfig controls the rendered wavefunction figure.
type PlotConfig struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	// RMax cuts the radial axis [m]; zero keeps the whole grid.
	RMax float64
	// XScale divides r before plotting, e.g. by the Bohr length; zero means 1.
	XScale float64
	XLabel string
	// Density plots P = G² + F² instead of G and F.
	Density bool
}

func DefaultPlotConfig() PlotConfig {
	return PlotConfig{Width: 6 * vg.Inch, Height: 4 * vg.Inch, XLabel: "r [m]"}
}

var (
	colorG = color.RGBA{R: 0, G: 90, B: 200, A: 255}
	colorF = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	colorP = color.RGBA{R: 20, G: 140, B: 60, A: 255}
)

func series(wf *storage.Wavefunction, y []float64, cfg PlotConfig) plotter.XYs {
	scale := cfg.XScale
	if scale == 0 {
		scale = 1
	}
	pts := make(plotter.XYs, 0, len(wf.R))
	for i, r := range wf.R {
		if cfg.RMax > 0 && r > cfg.RMax {
			break
		}
		pts = append(pts, plotter.XY{X: r / scale, Y: y[i]})
	}
	return pts
}

// WavefunctionPlot builds the figure for a stored wavefunction.
func WavefunctionPlot(wf *storage.Wavefunction, cfg PlotConfig) (*plot.Plot, error) {
	if wf == nil || len(wf.R) < 2 {
		return nil, fmt.Errorf("no data to plot")
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Add(plotter.NewGrid())

	type curve struct {
		name string
		y    []float64
		c    color.Color
	}
	curves := []curve{{"G", wf.G, colorG}, {"F", wf.F, colorF}}
	p.Y.Label.Text = "amplitude"
	if cfg.Density {
		curves = []curve{{"P = G² + F²", wf.P, colorP}}
		p.Y.Label.Text = "density [1/m]"
	}

	for _, c := range curves {
		pts := series(wf, c.y, cfg)
		if len(pts) < 2 {
			return nil, fmt.Errorf("fewer than 2 samples below r = %g", cfg.RMax)
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = c.c
		l.LineStyle.Width = vg.Points(1.2)
		p.Add(l)
		p.Legend.Add(c.name, l)
	}
	p.Legend.Top = true
	return p, nil
}

func plotFormat(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "png", "svg", "pdf":
		return ext, nil
	}
	return "", fmt.Errorf("unsupported image format %q (use .png, .svg or .pdf)", filepath.Ext(path))
}

// SavePlot renders wf to path; the format follows the extension.
func SavePlot(wf *storage.Wavefunction, cfg PlotConfig, path string) error {
	if _, err := plotFormat(path); err != nil {
		return err
	}
	p, err := WavefunctionPlot(wf, cfg)
	if err != nil {
		return err
	}
	return p.Save(cfg.Width, cfg.Height, path)
}

// WritePlot renders wf to w in the given format (png, svg or pdf).
func WritePlot(w io.Writer, wf *storage.Wavefunction, cfg PlotConfig, format string) error {
	if _, err := plotFormat("x." + format); err != nil {
		return err
	}
	p, err := WavefunctionPlot(wf, cfg)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(cfg.Width, cfg.Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
