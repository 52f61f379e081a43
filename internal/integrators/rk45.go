package integrators

// Tableau is the Butcher tableau of an explicit embedded Runge-Kutta pair.
// B propagates the solution; E = B - B̂ yields the local error estimate.
type Tableau struct {
	Name string
	C    []float64
	A    [][]float64
	B    []float64
	E    []float64
	// ErrOrder is the order of the embedded (lower order) solution; the
	// step controller scales with err^(-1/(ErrOrder+1)).
	ErrOrder int
	// FSAL marks tableaus whose last stage equals the first stage of the
	// next step.
	FSAL bool
}

func (tb *Tableau) Stages() int { return len(tb.C) }

func errorWeights(b, bHat []float64) []float64 {
	e := make([]float64, len(b))
	for i := range b {
		e[i] = b[i] - bHat[i]
	}
	return e
}

// Dormand-Prince coefficients (RK45)
var DormandPrince5 = &Tableau{
	Name: "dopri5",
	C:    []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
	A: [][]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	},
	B: []float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
	E: errorWeights(
		[]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		[]float64{5179.0 / 57600.0, 0, 7571.0 / 16695.0, 393.0 / 640.0, -92097.0 / 339200.0, 187.0 / 2100.0, 1.0 / 40.0},
	),
	ErrOrder: 4,
	FSAL:     true,
}

// Cash-Karp 5(4), propagated with the fifth order weights.
var CashKarp5 = &Tableau{
	Name: "cashkarp",
	C:    []float64{0, 1.0 / 5.0, 3.0 / 10.0, 3.0 / 5.0, 1, 7.0 / 8.0},
	A: [][]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{3.0 / 10.0, -9.0 / 10.0, 6.0 / 5.0},
		{-11.0 / 54.0, 5.0 / 2.0, -70.0 / 27.0, 35.0 / 27.0},
		{1631.0 / 55296.0, 175.0 / 512.0, 575.0 / 13824.0, 44275.0 / 110592.0, 253.0 / 4096.0},
	},
	B: []float64{37.0 / 378.0, 0, 250.0 / 621.0, 125.0 / 594.0, 0, 512.0 / 1771.0},
	E: errorWeights(
		[]float64{37.0 / 378.0, 0, 250.0 / 621.0, 125.0 / 594.0, 0, 512.0 / 1771.0},
		[]float64{2825.0 / 27648.0, 0, 18575.0 / 48384.0, 13525.0 / 55296.0, 277.0 / 14336.0, 1.0 / 4.0},
	),
	ErrOrder: 4,
}

// Runge-Kutta-Fehlberg 4(5) with local extrapolation: the fifth order
// solution is propagated.
var Fehlberg45 = &Tableau{
	Name: "rkf45",
	C:    []float64{0, 1.0 / 4.0, 3.0 / 8.0, 12.0 / 13.0, 1, 1.0 / 2.0},
	A: [][]float64{
		{},
		{1.0 / 4.0},
		{3.0 / 32.0, 9.0 / 32.0},
		{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0},
		{439.0 / 216.0, -8, 3680.0 / 513.0, -845.0 / 4104.0},
		{-8.0 / 27.0, 2, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0},
	},
	B: []float64{16.0 / 135.0, 0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0},
	E: errorWeights(
		[]float64{16.0 / 135.0, 0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0},
		[]float64{25.0 / 216.0, 0, 1408.0 / 2565.0, 2197.0 / 4104.0, -1.0 / 5.0, 0},
	),
	ErrOrder: 4,
}

func NewDormandPrince() *EmbeddedRK { return NewEmbeddedRK(DormandPrince5) }

func NewCashKarp() *EmbeddedRK { return NewEmbeddedRK(CashKarp5) }

func NewFehlberg() *EmbeddedRK { return NewEmbeddedRK(Fehlberg45) }
