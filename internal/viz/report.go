package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ZAKI1905/muAlphaSim/internal/automation"
	"github.com/ZAKI1905/muAlphaSim/internal/experiment"
	"github.com/ZAKI1905/muAlphaSim/internal/metrics"
)

func (s Styles) row(label, value string) string {
	return s.Label.Render(label) + s.Value.Render(value) + "\n"
}

const reportWidth = 44

// Report renders a solved level as a bordered panel.
func Report(out *experiment.Outcome, st Styles) string {
	res := out.Result
	var b strings.Builder

	b.WriteString(st.Header.Render(fmt.Sprintf("%s  %s", out.Atom.Label, res.State)) + "\n\n")
	b.WriteString(st.row("Binding", fmt.Sprintf("%.10g eV", res.BindingEV)))
	b.WriteString(st.row("Sommerfeld", fmt.Sprintf("%.10g eV", res.GuessEV)))
	b.WriteString(st.row("Difference", fmt.Sprintf("%.3e eV", res.BindingEV-res.GuessEV)))
	b.WriteString(st.row("Reduced mass", fmt.Sprintf("%.6f MeV", out.Atom.ReducedMassMeV())))
	b.WriteString(st.row("Integrator", out.Integrator))
	b.WriteString(st.row("Grid", fmt.Sprintf("[%.3g, %.3g, %.3g] m", res.Geometry.RMin, res.Geometry.RMatch, res.Geometry.RMax)))
	b.WriteString(st.row("Iterations", fmt.Sprintf("%d (%s)", res.Iterations, res.Reason)))
	b.WriteString(st.row("Integrations", fmt.Sprintf("%d", res.Integrations)))
	b.WriteString(st.row("Elapsed", out.Elapsed.String()))

	if len(out.Metrics) > 0 {
		b.WriteString("\n" + st.Separator(reportWidth) + "\n")
		b.WriteString(st.Title.Render("OBSERVABLES") + "\n")
		for _, name := range metrics.Names(out.Metrics) {
			b.WriteString(st.row(name, fmt.Sprintf("%.6g", out.Metrics[name])))
		}
	}

	if len(res.Trace) > 1 {
		energies := make([]float64, len(res.Trace))
		for i, it := range res.Trace {
			energies[i] = it.BindingEV
		}
		b.WriteString("\n" + st.Muted.Render("E_b  ") + Sparkline(energies, 30))
	}

	return st.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// LevelsTable renders a level sweep, one row per state.
func LevelsTable(rows []automation.LevelResult, st Styles) string {
	cell := lipgloss.NewStyle().Width(12)
	wide := lipgloss.NewStyle().Width(20)

	var b strings.Builder
	b.WriteString(st.Header.Render(
		cell.Render("STATE")+wide.Render("BINDING (eV)")+wide.Render("SOMMERFELD (eV)")+cell.Render("ITER")+"STATUS",
	) + "\n")

	for _, r := range rows {
		line := cell.Render(r.State.String())
		if r.Err != nil || r.Outcome == nil {
			msg := "not solved"
			if r.Err != nil {
				msg = r.Err.Error()
			}
			line += wide.Render("-") + wide.Render(fmt.Sprintf("%.10g", r.GuessEV)) + cell.Render("-") + st.Bad.Render(msg)
		} else {
			res := r.Outcome.Result
			line += wide.Render(fmt.Sprintf("%.10g", res.BindingEV)) +
				wide.Render(fmt.Sprintf("%.10g", r.GuessEV)) +
				cell.Render(fmt.Sprintf("%d", res.Iterations)) +
				st.Good.Render("ok")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
