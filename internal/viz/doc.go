// Package viz renders solver results in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas used for wavefunction sketches
//   - [Plot] and [PlotWavefunction]: asciigraph line charts
//   - [Report] and [LevelsTable]: lipgloss result panels
//   - [WatchModel]: Bubble Tea view of a running root search
//
// # Key Bindings (watch)
//
//	Q, Ctrl+C - Quit
//	T         - Cycle color themes
//	L         - Toggle log scale of the mismatch chart
package viz
