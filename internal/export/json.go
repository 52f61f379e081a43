package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/storage"
)

type TraceRecord struct {
	Iteration int     `json:"iteration"`
	Method    string  `json:"method"`
	EnergyJ   float64 `json:"energy_j"`
	BindingEV float64 `json:"binding_ev"`
	Delta     float64 `json:"delta"`
	Slope     float64 `json:"slope"`
	StepEV    float64 `json:"step_ev"`
}

// Record is the self-contained JSON form of a stored run.
type Record struct {
	ID          string             `json:"id"`
	Atom        string             `json:"atom"`
	Z           int                `json:"z"`
	ReducedMass float64            `json:"reduced_mass_kg"`
	State       string             `json:"state"`
	N           int                `json:"n"`
	Kappa       int                `json:"kappa"`
	Integrator  string             `json:"integrator"`
	BindingEV   float64            `json:"binding_ev"`
	GuessEV     float64            `json:"guess_ev"`
	Iterations  int                `json:"iterations"`
	Reason      string             `json:"reason"`
	Metrics     map[string]float64 `json:"metrics"`
	Points      int                `json:"points"`
	R           []float64          `json:"r"`
	G           []float64          `json:"g"`
	F           []float64          `json:"f"`
	P           []float64          `json:"p"`
	Trace       []TraceRecord      `json:"trace,omitempty"`
}

func NewRecord(meta *storage.RunMetadata, wf *storage.Wavefunction, trace []dirac.Iteration) Record {
	rec := Record{
		ID:          meta.ID,
		Atom:        meta.Atom,
		Z:           meta.Z,
		ReducedMass: meta.ReducedMass,
		State:       meta.State,
		N:           meta.N,
		Kappa:       meta.Kappa,
		Integrator:  meta.Integrator,
		BindingEV:   meta.BindingEV,
		GuessEV:     meta.GuessEV,
		Iterations:  meta.Iterations,
		Reason:      meta.Reason,
		Metrics:     meta.Metrics,
	}
	if wf != nil {
		rec.Points = len(wf.R)
		rec.R, rec.G, rec.F, rec.P = wf.R, wf.G, wf.F, wf.P
	}
	for _, it := range trace {
		rec.Trace = append(rec.Trace, TraceRecord{
			Iteration: it.Index,
			Method:    string(it.Method),
			EnergyJ:   it.Energy,
			BindingEV: it.BindingEV,
			Delta:     it.Delta,
			Slope:     it.Slope,
			StepEV:    it.StepEV,
		})
	}
	return rec
}

func WriteJSON(w io.Writer, rec Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rec)
}

func ExportJSON(path string, rec Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, rec); err != nil {
		return err
	}
	return file.Close()
}
