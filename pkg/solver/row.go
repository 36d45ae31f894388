package solver

import "math"

const epsilon = 1.0e-8

func nearZero(v float64) bool { return math.Abs(v) < epsilon }

type symbolKind uint8

const (
	invalidSymbol symbolKind = iota
	externalSymbol
	slackSymbol
	errorSymbol
	dummySymbol
)

// symbol is a tableau column. The zero value is the invalid symbol.
type symbol struct {
	id   uint64
	kind symbolKind
}

func (s symbol) valid() bool { return s.kind != invalidSymbol }

// pivotable reports whether s may enter the basis during an artificial
// or marker pivot.
func (s symbol) pivotable() bool { return s.kind == slackSymbol || s.kind == errorSymbol }

// row is "constant + sum(coeff * symbol)", the value of a basic symbol.
type row struct {
	cells    map[symbol]float64
	constant float64
}

func newRow(constant float64) *row {
	return &row{cells: make(map[symbol]float64), constant: constant}
}

func (r *row) copy() *row {
	out := &row{cells: make(map[symbol]float64, len(r.cells)), constant: r.constant}
	for s, c := range r.cells {
		out.cells[s] = c
	}
	return out
}

func (r *row) add(v float64) float64 {
	r.constant += v
	return r.constant
}

func (r *row) insertSymbol(s symbol, coeff float64) {
	c := r.cells[s] + coeff
	if nearZero(c) {
		delete(r.cells, s)
		return
	}
	r.cells[s] = c
}

func (r *row) insertRow(other *row, coeff float64) {
	r.constant += other.constant * coeff
	for s, c := range other.cells {
		r.insertSymbol(s, c*coeff)
	}
}

func (r *row) remove(s symbol) { delete(r.cells, s) }

func (r *row) reverseSign() {
	r.constant = -r.constant
	for s, c := range r.cells {
		r.cells[s] = -c
	}
}

// solveFor rewrites "0 = r" so that s is the subject: "s = r'".
func (r *row) solveFor(s symbol) {
	coeff := -1.0 / r.cells[s]
	delete(r.cells, s)
	r.constant *= coeff
	for k, c := range r.cells {
		r.cells[k] = c * coeff
	}
}

// solveForPair rewrites "lhs = r" (r containing rhs) as "rhs = r'".
func (r *row) solveForPair(lhs, rhs symbol) {
	r.insertSymbol(lhs, -1)
	r.solveFor(rhs)
}

func (r *row) coefficientFor(s symbol) float64 { return r.cells[s] }

func (r *row) substitute(s symbol, other *row) {
	if c, ok := r.cells[s]; ok {
		delete(r.cells, s)
		r.insertRow(other, c)
	}
}
