package solver

import (
	"fmt"
	"strings"
)

// Variable is a solver unknown. Its value is only meaningful after
// [Solver.UpdateVariables].
//
// Variables are identified by pointer; the name is for diagnostics only.
type Variable struct {
	name  string
	value float64
}

// NewVariable creates a named variable with value 0.
func NewVariable(name string) *Variable {
	return &Variable{name: name}
}

// Name returns the diagnostic name of the variable.
func (v *Variable) Name() string { return v.name }

// Value returns the last value written by UpdateVariables.
func (v *Variable) Value() float64 { return v.value }

// SetValue overwrites the cached value. It does not affect any solver.
func (v *Variable) SetValue(x float64) { v.value = x }

// String implements fmt.Stringer.
func (v *Variable) String() string { return v.name }

// Term is a variable multiplied by a coefficient.
type Term struct {
	Variable    *Variable
	Coefficient float64
}

// Expression is a sum of terms plus a constant.
type Expression struct {
	Terms    []Term
	Constant float64
}

// NewExpression builds an expression from a constant and terms.
func NewExpression(constant float64, terms ...Term) Expression {
	return Expression{Terms: terms, Constant: constant}
}

// T is shorthand for a Term.
func T(coefficient float64, v *Variable) Term {
	return Term{Variable: v, Coefficient: coefficient}
}

// reduced merges duplicate variables and drops zero coefficients. The
// order of first appearance is preserved.
func (e Expression) reduced() Expression {
	index := make(map[*Variable]int, len(e.Terms))
	terms := make([]Term, 0, len(e.Terms))
	for _, t := range e.Terms {
		if t.Variable == nil {
			continue
		}
		if i, ok := index[t.Variable]; ok {
			terms[i].Coefficient += t.Coefficient
			continue
		}
		index[t.Variable] = len(terms)
		terms = append(terms, t)
	}
	out := terms[:0]
	for _, t := range terms {
		if !nearZero(t.Coefficient) {
			out = append(out, t)
		}
	}
	return Expression{Terms: out, Constant: e.Constant}
}

// Equal reports whether two expressions have the same terms in the same
// order and the same constant.
func (e Expression) Equal(o Expression) bool {
	if e.Constant != o.Constant || len(e.Terms) != len(o.Terms) {
		return false
	}
	for i := range e.Terms {
		if e.Terms[i] != o.Terms[i] {
			return false
		}
	}
	return true
}

// String renders the expression as "2*a.left + -1*b.left + 10".
func (e Expression) String() string {
	var b strings.Builder
	for i, t := range e.Terms {
		if i > 0 {
			b.WriteString(" + ")
		}
		if t.Coefficient == 1 {
			b.WriteString(t.Variable.name)
		} else {
			fmt.Fprintf(&b, "%g*%s", t.Coefficient, t.Variable.name)
		}
	}
	if e.Constant != 0 || len(e.Terms) == 0 {
		if len(e.Terms) > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%g", e.Constant)
	}
	return b.String()
}
