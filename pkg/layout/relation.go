package layout

import (
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// Relation is the logical relation of a constraint.
type Relation uint8

const (
	Equal Relation = iota
	LessOrEqual
	GreaterOrEqual
)

// String implements fmt.Stringer.
func (r Relation) String() string {
	switch r {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	}
	return "=="
}

// ParseRelation parses "==", "<=" or ">=" (and the aliases "=", "eq", "le",
// "ge").
func ParseRelation(s string) (Relation, error) {
	switch s {
	case "==", "=", "eq":
		return Equal, nil
	case "<=", "le":
		return LessOrEqual, nil
	case ">=", "ge":
		return GreaterOrEqual, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "invalid relation: %q", s)
}

func (r Relation) operator() solver.Operator {
	switch r {
	case LessOrEqual:
		return solver.LE
	case GreaterOrEqual:
		return solver.GE
	}
	return solver.EQ
}

// compile builds "left r right*multiplier + offset" as a solver constraint.
//
// right may be nil for a plain bound. origin is the variable both sides are
// measured from when multiplier != 1; it is nil for dimensions. Scaling an
// absolute position would scale its distance to the solve root, so the
// position is taken relative to origin, scaled, and moved back:
//
//	left r (right - origin)*multiplier + origin + offset
func (r Relation) compile(left, right, origin *solver.Variable, offset, multiplier float64, strength solver.Strength) *solver.Constraint {
	var expr solver.Expression
	switch {
	case right == nil:
		expr = solver.NewExpression(-offset, solver.T(1, left))
	case multiplier == 1:
		expr = solver.NewExpression(-offset, solver.T(1, left), solver.T(-1, right))
	case origin == nil:
		expr = solver.NewExpression(-offset, solver.T(1, left), solver.T(-multiplier, right))
	default:
		expr = solver.NewExpression(-offset,
			solver.T(1, left),
			solver.T(-multiplier, right),
			solver.T(multiplier-1, origin),
		)
	}
	return solver.NewConstraint(expr, r.operator(), strength)
}
