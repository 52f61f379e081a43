package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights a dot at (x, y) in sub-pixel coordinates. The canvas is
// (Width*2) x (Height*4) sub-pixels; y grows downwards.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawSeries scales the points (xs[i], ys[i]) onto the whole canvas and
// joins them. Non-finite points break the line.
func (c *Canvas) DrawSeries(xs, ys []float64) {
	n := min(len(xs), len(ys))
	if n == 0 {
		return
	}
	xlo, xhi := bounds(xs[:n])
	ylo, yhi := bounds(ys[:n])
	if math.IsInf(xlo, 0) || math.IsInf(ylo, 0) {
		return
	}

	w, h := c.Width*2-1, c.Height*4-1
	scale := func(v, lo, hi float64, size int) int {
		if hi == lo {
			return size / 2
		}
		return int(math.Round((v - lo) / (hi - lo) * float64(size)))
	}

	havePrev := false
	var px, py int
	for i := 0; i < n; i++ {
		if !finite(xs[i]) || !finite(ys[i]) {
			havePrev = false
			continue
		}
		x := scale(xs[i], xlo, xhi, w)
		y := h - scale(ys[i], ylo, yhi, h)
		if havePrev {
			c.DrawLine(px, py, x, y)
		} else {
			c.Set(x, y)
		}
		px, py, havePrev = x, y, true
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// bounds returns the range of the finite values in vs, or (+Inf, -Inf)
// when there are none.
func bounds(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if finite(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return lo, hi
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
