package solver

import "fmt"

// Operator is the relation of a constraint's expression to zero.
type Operator int

const (
	// EQ means expression == 0.
	EQ Operator = iota
	// LE means expression <= 0.
	LE
	// GE means expression >= 0.
	GE
)

// String implements fmt.Stringer.
func (op Operator) String() string {
	switch op {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "=="
	}
}

// Constraint is an immutable linear relation "expression op 0" with a
// strength. Constraints are identified by pointer: adding the same
// relation twice requires two Constraint values.
type Constraint struct {
	expr     Expression
	op       Operator
	strength Strength
}

// NewConstraint creates a constraint. Duplicate variables in expr are
// merged and the strength is clipped to [0, Required].
func NewConstraint(expr Expression, op Operator, strength Strength) *Constraint {
	return &Constraint{
		expr:     expr.reduced(),
		op:       op,
		strength: Clip(strength),
	}
}

// Expression returns the reduced expression.
func (c *Constraint) Expression() Expression { return c.expr }

// Operator returns the relation.
func (c *Constraint) Operator() Operator { return c.op }

// Strength returns the clipped strength.
func (c *Constraint) Strength() Strength { return c.strength }

// Same reports whether c and o describe the same relation at the same
// strength, regardless of identity.
func (c *Constraint) Same(o *Constraint) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.op == o.op && c.strength == o.strength && c.expr.Equal(o.expr)
}

// String implements fmt.Stringer.
func (c *Constraint) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s 0 | %s", c.expr, c.op, c.strength)
}
