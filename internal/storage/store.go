package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
)

const (
	metadataFile     = "metadata.json"
	wavefunctionFile = "wavefunction.csv"
	traceFile        = "trace.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a stored solve. Everything needed to repeat it is
// recorded; the solver state itself is not.
type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name,omitempty"`
	Atom         string             `json:"atom"`
	Z            int                `json:"z"`
	ReducedMass  float64            `json:"reduced_mass_kg"`
	State        string             `json:"state"`
	N            int                `json:"n"`
	Kappa        int                `json:"kappa"`
	Integrator   string             `json:"integrator"`
	Timestamp    time.Time          `json:"timestamp"`
	BindingEV    float64            `json:"binding_ev"`
	GuessEV      float64            `json:"guess_ev"`
	RMin         float64            `json:"r_min"`
	RMatch       float64            `json:"r_match"`
	RMax         float64            `json:"r_max"`
	Iterations   int                `json:"iterations"`
	Evaluations  int                `json:"evaluations"`
	Integrations int                `json:"integrations"`
	Reason       string             `json:"reason"`
	ElapsedMS    float64            `json:"elapsed_ms"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Wavefunction is the sampled radial solution of a stored run.
type Wavefunction struct {
	R []float64
	G []float64
	F []float64
	P []float64
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'e', 12, 64)
}

// Save writes a run directory for res and returns the new run ID. meta is
// completed from res; ID and Timestamp are assigned here.
func (s *Store) Save(meta RunMetadata, res *dirac.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", meta.Atom, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.State = res.State.String()
	meta.N, meta.Kappa = res.State.N, res.State.Kappa
	meta.BindingEV = res.BindingEV
	meta.GuessEV = res.GuessEV
	meta.RMin, meta.RMatch, meta.RMax = res.Geometry.RMin, res.Geometry.RMatch, res.Geometry.RMax
	meta.Iterations = res.Iterations
	meta.Evaluations = res.Evaluations
	meta.Integrations = res.Integrations
	meta.Reason = string(res.Reason)

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	p := res.Density()
	rows := make([][]string, 0, res.Len()+1)
	rows = append(rows, []string{"r_m", "G", "F", "P"})
	for i := range res.R {
		rows = append(rows, []string{
			formatFloat(res.R[i]), formatFloat(res.G[i]), formatFloat(res.F[i]), formatFloat(p[i]),
		})
	}
	if err := writeCSV(filepath.Join(runDir, wavefunctionFile), rows); err != nil {
		return "", err
	}

	rows = [][]string{{"iteration", "method", "energy_j", "binding_ev", "delta", "slope", "step_ev"}}
	for _, it := range res.Trace {
		rows = append(rows, []string{
			strconv.Itoa(it.Index), string(it.Method),
			formatFloat(it.Energy), formatFloat(it.BindingEV), formatFloat(it.Delta),
			formatFloat(it.Slope), formatFloat(it.StepEV),
		})
	}
	if err := writeCSV(filepath.Join(runDir, traceFile), rows); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseRow(record []string, from int) ([]float64, error) {
	out := make([]float64, 0, len(record)-from)
	for _, field := range record[from:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) LoadWavefunction(runID string) (*Wavefunction, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, wavefunctionFile))
	if err != nil {
		return nil, err
	}

	wf := &Wavefunction{}
	for i := 1; i < len(records); i++ {
		vals, err := parseRow(records[i], 0)
		if err != nil || len(vals) < 4 {
			return nil, fmt.Errorf("%s line %d: malformed row", wavefunctionFile, i+1)
		}
		wf.R = append(wf.R, vals[0])
		wf.G = append(wf.G, vals[1])
		wf.F = append(wf.F, vals[2])
		wf.P = append(wf.P, vals[3])
	}
	return wf, nil
}

func (s *Store) LoadTrace(runID string) ([]dirac.Iteration, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}

	trace := make([]dirac.Iteration, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 7 {
			return nil, fmt.Errorf("%s line %d: malformed row", traceFile, i+1)
		}
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", traceFile, i+1, err)
		}
		vals, err := parseRow(rec, 2)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", traceFile, i+1, err)
		}
		trace = append(trace, dirac.Iteration{
			Index:     idx,
			Method:    dirac.StepMethod(rec[1]),
			Energy:    vals[0],
			BindingEV: vals[1],
			Delta:     vals[2],
			Slope:     vals[3],
			StepEV:    vals[4],
		})
	}
	return trace, nil
}

// Path returns the directory of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
