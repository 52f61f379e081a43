package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/ZAKI1905/muAlphaSim/internal/dirac"
	"github.com/ZAKI1905/muAlphaSim/internal/experiment"
)

const watchBuffer = 64

// ErrInterrupted is returned by WatchModel.Outcome when the view was closed
// before the search reported a result.
var ErrInterrupted = fmt.Errorf("watch: interrupted before the search finished: %w", context.Canceled)

// IterationMsg carries one root finder step to the watch view.
type IterationMsg dirac.Iteration

// DoneMsg ends a watched solve.
type DoneMsg struct {
	Outcome *experiment.Outcome
	Err     error
}

// RunFunc performs a solve, reporting every iteration to trace.
type RunFunc func(ctx context.Context, trace dirac.TraceFunc) (*experiment.Outcome, error)

// Stream starts run in its own goroutine and returns the messages it
// produces. The channel ends with exactly one DoneMsg and is then closed.
func Stream(ctx context.Context, run RunFunc) <-chan tea.Msg {
	ch := make(chan tea.Msg, watchBuffer)
	go func() {
		defer close(ch)
		out, err := run(ctx, func(it dirac.Iteration) {
			select {
			case ch <- IterationMsg(it):
			case <-ctx.Done():
			}
		})
		done := DoneMsg{Outcome: out, Err: err}
		select {
		case ch <- done:
		default:
			// Reader is behind; give up once it is gone.
			select {
			case ch <- done:
			case <-ctx.Done():
			}
		}
	}()
	return ch
}

func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// WatchModel follows a running root search.
type WatchModel struct {
	title    string
	updates  <-chan tea.Msg
	cancel   context.CancelFunc
	theme    Theme
	styles   Styles
	trace    []dirac.Iteration
	logScale bool
	done     bool
	outcome  *experiment.Outcome
	err      error
}

func NewWatchModel(title string, updates <-chan tea.Msg, cancel context.CancelFunc) WatchModel {
	theme := Themes[0]
	return WatchModel{
		title:    title,
		updates:  updates,
		cancel:   cancel,
		theme:    theme,
		styles:   NewStyles(theme),
		logScale: true,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return waitFor(m.updates)
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = NewStyles(m.theme)
		case "l":
			m.logScale = !m.logScale
		}
		return m, nil

	case IterationMsg:
		m.trace = append(m.trace, dirac.Iteration(msg))
		return m, waitFor(m.updates)

	case DoneMsg:
		m.done = true
		m.outcome, m.err = msg.Outcome, msg.Err
		return m, nil
	}
	return m, nil
}

// Outcome returns the finished solve, or ErrInterrupted if the view quit
// first.
func (m WatchModel) Outcome() (*experiment.Outcome, error) {
	if !m.done {
		return nil, ErrInterrupted
	}
	return m.outcome, m.err
}

func (m WatchModel) Trace() []dirac.Iteration { return m.trace }

func (m WatchModel) status() string {
	switch {
	case !m.done:
		return m.styles.Warn.Render("SEARCHING")
	case m.err != nil:
		return m.styles.Bad.Render("FAILED: " + m.err.Error())
	}
	return m.styles.Good.Render("CONVERGED")
}

func (m WatchModel) View() string {
	st := m.styles
	var b strings.Builder

	b.WriteString(st.Header.Render(strings.ToUpper(m.title)) + "\n")
	b.WriteString(m.status() + "\n\n")

	if len(m.trace) > 1 {
		vals := make([]float64, len(m.trace))
		for i, it := range m.trace {
			vals[i] = math.Abs(it.Delta)
			if m.logScale {
				vals[i] = math.Log10(math.Max(vals[i], 1e-300))
			}
		}
		caption := "|Δ|"
		if m.logScale {
			caption = "log10 |Δ|"
		}
		chart := asciigraph.Plot(vals, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption(caption))
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Primary).Render(chart) + "\n\n")
	}

	if n := len(m.trace); n > 0 {
		last := m.trace[n-1]
		b.WriteString(st.row("Iteration", fmt.Sprintf("%d", last.Index)))
		b.WriteString(st.row("Binding", fmt.Sprintf("%.10g eV", last.BindingEV)))
		b.WriteString(st.row("Mismatch", fmt.Sprintf("%.3e", last.Delta)))
		b.WriteString(st.row("Step", fmt.Sprintf("%.3e eV (%s)", last.StepEV, last.Method)))
	}

	view := b.String()
	if m.done && m.outcome != nil {
		view = lipgloss.JoinHorizontal(lipgloss.Top, view, "  ", Report(m.outcome, st))
	}
	return view + "\n" + st.Muted.Render("Q:Quit  T:Theme  L:Log scale")
}
