package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/export"
	"github.com/ZAKI1905/muAlphaSim/internal/storage"
	"github.com/ZAKI1905/muAlphaSim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tATOM\tSTATE\tTIME\tBINDING (eV)\tITER\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.10g\t%d\t%s\n",
			run.ID,
			run.Atom,
			run.State,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.BindingEV,
			run.Iterations,
			run.Integrator,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Wavefunction, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	wf, err := st.LoadWavefunction(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(wf.R) == 0 {
		return nil, nil, fmt.Errorf("run %s has no wavefunction samples", runID)
	}
	return meta, wf, nil
}

func radialCut(meta *storage.RunMetadata) float64 {
	if extent <= 0 {
		return 0
	}
	return extent * bohrLength(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, wf, err := loadRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("atom: %s  state: %s\n", meta.Atom, meta.State)
	fmt.Printf("binding: %.10g eV\n", meta.BindingEV)
	fmt.Printf("samples: %d\n\n", len(wf.R))

	rs := &dirac.RadialSolution{R: wf.R, G: wf.G, F: wf.F}
	cut := radialCut(meta)

	if braille {
		canvas := viz.NewCanvas(70, 16)
		r, y := wf.R, wf.G
		if density {
			y = wf.P
		}
		if cut > 0 {
			k := 0
			for k < len(r) && r[k] <= cut {
				k++
			}
			r, y = r[:k], y[:k]
		}
		canvas.DrawSeries(r, y)
		fmt.Print(canvas.String())
		if svgPath != "" {
			if err := os.WriteFile(svgPath, []byte(export.CanvasToSVG(canvas, 4, "#00ffff")), 0644); err != nil {
				return err
			}
			fmt.Printf("\nsvg written: %s\n", svgPath)
		}
		return nil
	}

	opts := viz.DefaultPlotOptions()
	opts.RMax = cut
	var chart string
	if density {
		chart, err = viz.PlotRadial(rs.R, [][]float64{wf.P}, []string{"P"}, opts)
	} else {
		chart, err = viz.PlotWavefunction(rs, opts)
	}
	if err != nil {
		return err
	}
	fmt.Println(chart)

	st := storage.New(dataDir)
	if trace, err := st.LoadTrace(runID); err == nil && len(trace) > 1 {
		fmt.Println()
		fmt.Println(viz.PlotConvergence(trace, viz.PlotOptions{Width: 40, Height: 6}))
	}
	return nil
}

// output returns the writer for --out, defaulting to stdout.
func output() (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, wf, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := export.WriteCSV(w, wf); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, wf, err := loadRun(runID)
	if err != nil {
		return err
	}
	trace, err := storage.New(dataDir).LoadTrace(runID)
	if err != nil {
		return err
	}

	rec := export.NewRecord(meta, wf, trace)
	if outPath != "" {
		return export.ExportJSON(outPath, rec)
	}
	return export.WriteJSON(os.Stdout, rec)
}

func exportPNG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, wf, err := loadRun(runID)
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = runID + ".png"
	}

	cfg := export.DefaultPlotConfig()
	cfg.Title = fmt.Sprintf("%s %s  (E_b = %.8g eV)", meta.Atom, meta.State, meta.BindingEV)
	cfg.Density = density
	cfg.RMax = radialCut(meta)
	if a := bohrLength(meta); a > 0 {
		cfg.XScale = a
		cfg.XLabel = "r / a"
	}

	if err := export.SavePlot(wf, cfg, path); err != nil {
		return err
	}
	fmt.Printf("plot written: %s\n", path)
	return nil
}
