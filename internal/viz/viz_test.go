package viz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZAKI1905/muAlphaSim/internal/automation"
	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/experiment"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(4, 2)
	assert.False(t, c.IsSet(3, 5))
	c.Set(3, 5)
	assert.True(t, c.IsSet(3, 5))
	assert.False(t, c.IsSet(2, 5))

	c.Set(-1, 0)
	c.Set(100, 100)
	c.Clear()
	assert.False(t, c.IsSet(3, 5))
	assert.Equal(t, strings.Repeat(string(rune(brailleBlank)), 4)+"\n", strings.SplitAfter(c.String(), "\n")[0])
}

func TestCanvasDrawSeries(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawSeries([]float64{0, 1, 2}, []float64{0, 1, 0})

	// Corners of the scaled data: (0,0) bottom left, (2,0) bottom right,
	// (1,1) top middle.
	assert.True(t, c.IsSet(0, 19))
	assert.True(t, c.IsSet(19, 19))
	assert.True(t, c.IsSet(10, 0))
}

func TestSparkline(t *testing.T) {
	s := []rune(Sparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 8))
	require.Len(t, s, 8)
	assert.Equal(t, '▁', s[0])
	assert.Equal(t, '█', s[7])

	assert.Equal(t, 4, utf8.RuneCountInString(Sparkline(nil, 4)))
	assert.Equal(t, 3, utf8.RuneCountInString(Sparkline(make([]float64, 30), 3)))
}

func TestResample(t *testing.T) {
	out, err := Resample([]float64{0, 1, 3}, []float64{0, 2, 6}, 0, 3, 4)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 2, 4, 6}, out, 1e-12)

	_, err = Resample([]float64{0, 1}, []float64{0, 1}, 0, 1, 1)
	assert.Error(t, err)
}

func TestPlotRadial(t *testing.T) {
	r := []float64{0, 1, 2, 3, 4}
	g := []float64{0, 1, 0.5, 0.2, 0}

	out, err := PlotRadial(r, [][]float64{g}, []string{"G"}, PlotOptions{Width: 20, Height: 5, Caption: "test plot"})
	require.NoError(t, err)
	assert.Contains(t, out, "test plot")

	_, err = PlotRadial(r[:1], [][]float64{g[:1]}, nil, DefaultPlotOptions())
	assert.Error(t, err)
	_, err = PlotRadial(r, nil, nil, DefaultPlotOptions())
	assert.Error(t, err)
}

func TestPlotConvergence(t *testing.T) {
	assert.Empty(t, PlotConvergence([]dirac.Iteration{{Delta: 1}}, DefaultPlotOptions()))

	out := PlotConvergence([]dirac.Iteration{{Delta: 1e3}, {Delta: 1}, {Delta: 1e-4}, {Delta: 0}}, PlotOptions{Width: 10, Height: 4})
	assert.Contains(t, out, "log10 |Δ|")
}

func sampleOutcome() *experiment.Outcome {
	return &experiment.Outcome{
		Atom:       experiment.Atom{Name: "hydrogen", Label: "H", Z: 1, OrbiterMeV: 0.511, NucleusMeV: 938.272},
		Integrator: "dopri5",
		Metrics:    map[string]float64{"norm": 1, "nodes": 0},
		Result: &dirac.Result{
			State:      dirac.QuantumState{N: 1, Kappa: -1},
			BindingEV:  -13.6,
			GuessEV:    -13.6,
			Iterations: 2,
			Reason:     dirac.ReasonStep,
			Trace: []dirac.Iteration{
				{Index: 0, BindingEV: -13.6, Delta: 10},
				{Index: 1, BindingEV: -13.61, Delta: 1},
				{Index: 2, BindingEV: -13.6, Delta: 0.1},
			},
		},
	}
}

func TestReport(t *testing.T) {
	out := Report(sampleOutcome(), NewStyles(ThemeMinimal))
	assert.Contains(t, out, "1s1/2")
	assert.Contains(t, out, "-13.6 eV")
	assert.Contains(t, out, "dopri5")
	assert.Contains(t, out, "nodes")
	assert.Contains(t, out, "◆")
}

func TestLevelsTable(t *testing.T) {
	rows := []automation.LevelResult{
		{State: dirac.QuantumState{N: 1, Kappa: -1}, GuessEV: -13.6, Outcome: sampleOutcome()},
		{State: dirac.QuantumState{N: 2, Kappa: 1}, GuessEV: -3.4, Err: errors.New("boom")},
	}
	out := LevelsTable(rows, NewStyles(ThemeMinimal))
	assert.Contains(t, out, "1s1/2")
	assert.Contains(t, out, "2p1/2")
	assert.Contains(t, out, "boom")
}

func TestThemes(t *testing.T) {
	assert.Equal(t, "retro", GetTheme("retro").Name)
	assert.Equal(t, Themes[0].Name, GetTheme("nope").Name)
	assert.Equal(t, Themes[0].Name, NextTheme(Themes[len(Themes)-1]).Name)
	assert.Len(t, ThemeNames(), len(Themes))
	assert.Contains(t, ThemeNames(), "retro")
}

func TestStream(t *testing.T) {
	want := sampleOutcome()
	ch := Stream(context.Background(), func(ctx context.Context, trace dirac.TraceFunc) (*experiment.Outcome, error) {
		for _, it := range want.Result.Trace {
			trace(it)
		}
		return want, nil
	})

	var msgs []tea.Msg
	for msg := range ch {
		msgs = append(msgs, msg)
	}
	require.Len(t, msgs, 4)
	assert.Equal(t, IterationMsg(want.Result.Trace[1]), msgs[1])
	assert.Equal(t, DoneMsg{Outcome: want}, msgs[3])
}

func TestWatchModel(t *testing.T) {
	canceled := false
	m := NewWatchModel("hydrogen 1s1/2", make(chan tea.Msg), func() { canceled = true })
	assert.Contains(t, m.View(), "SEARCHING")

	out := sampleOutcome()
	var model tea.Model = m
	for _, it := range out.Result.Trace {
		var cmd tea.Cmd
		model, cmd = model.Update(IterationMsg(it))
		assert.NotNil(t, cmd)
	}
	model, cmd := model.Update(DoneMsg{Outcome: out})
	assert.Nil(t, cmd)

	wm := model.(WatchModel)
	assert.Len(t, wm.Trace(), 3)
	assert.Contains(t, wm.View(), "CONVERGED")
	got, err := wm.Outcome()
	assert.NoError(t, err)
	assert.Same(t, out, got)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	assert.False(t, model.(WatchModel).logScale)

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
	assert.True(t, canceled)
}

func TestWatchModel_QuitBeforeDone(t *testing.T) {
	canceled := false
	m := NewWatchModel("muonic_helium 1s1/2", make(chan tea.Msg), func() { canceled = true })
	model, _ := m.Update(IterationMsg(dirac.Iteration{BindingEV: -10943.3}))
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
	assert.True(t, canceled)

	out, err := model.(WatchModel).Outcome()
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatchModel_Failure(t *testing.T) {
	m := NewWatchModel("x", nil, nil)
	model, _ := m.Update(DoneMsg{Err: errors.New("no bound state")})
	assert.Contains(t, model.View(), "FAILED: no bound state")
}
