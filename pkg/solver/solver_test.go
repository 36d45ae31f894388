package solver

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func commit(t *testing.T, s *Solver, build func(tx *Transaction)) {
	t.Helper()
	tx := s.Begin()
	build(tx)
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	s.UpdateVariables()
}

func eq(strength Strength, constant float64, terms ...Term) *Constraint {
	return NewConstraint(NewExpression(constant, terms...), EQ, strength)
}

func TestSolveSimpleEquality(t *testing.T) {
	s := New()
	x := NewVariable("x")
	commit(t, s, func(tx *Transaction) {
		tx.AddConstraint(eq(Required, -10, T(1, x)))
	})
	if !approx(x.Value(), 10) {
		t.Errorf("x = %v, want 10", x.Value())
	}
}

func TestStrengthOrdering(t *testing.T) {
	tests := []struct {
		name  string
		weak  Strength
		other Strength
		want  float64
	}{
		{"strong beats weak", Weak, Strong, 20},
		{"medium beats weak", Weak, Medium, 20},
		{"required beats strong", Strong, Required, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			x := NewVariable("x")
			commit(t, s, func(tx *Transaction) {
				tx.AddConstraint(eq(tt.weak, -10, T(1, x)))
				tx.AddConstraint(eq(tt.other, -20, T(1, x)))
			})
			if !approx(x.Value(), tt.want) {
				t.Errorf("x = %v, want %v", x.Value(), tt.want)
			}
		})
	}
}

func TestInequalities(t *testing.T) {
	s := New()
	x := NewVariable("x")
	commit(t, s, func(tx *Transaction) {
		tx.AddConstraint(NewConstraint(NewExpression(-100, T(1, x)), LE, Required))
		tx.AddConstraint(NewConstraint(NewExpression(-50, T(1, x)), GE, Required))
		tx.AddConstraint(eq(Weak, -200, T(1, x)))
	})
	if !approx(x.Value(), 100) {
		t.Errorf("x = %v, want 100", x.Value())
	}
}

func TestEditVariables(t *testing.T) {
	s := New()
	left := NewVariable("left")
	width := NewVariable("width")
	right := NewVariable("right")

	commit(t, s, func(tx *Transaction) {
		// right == left + width
		tx.AddConstraint(eq(Required, 0, T(1, right), T(-1, left), T(-1, width)))
		tx.AddEditVariable(left, Strong)
		tx.AddEditVariable(width, Strong)
		tx.SuggestValue(left, 10)
		tx.SuggestValue(width, 90)
	})
	if !approx(right.Value(), 100) {
		t.Fatalf("right = %v, want 100", right.Value())
	}

	commit(t, s, func(tx *Transaction) { tx.SuggestValue(width, 40) })
	if !approx(right.Value(), 50) {
		t.Errorf("right after suggest = %v, want 50", right.Value())
	}

	commit(t, s, func(tx *Transaction) {
		tx.AddConstraint(NewConstraint(NewExpression(-200, T(1, right)), GE, Required))
	})
	if !approx(right.Value(), 200) {
		t.Errorf("right with lower bound = %v, want 200", right.Value())
	}
	if s.NumEditVariables() != 2 {
		t.Errorf("NumEditVariables() = %d, want 2", s.NumEditVariables())
	}
}

func TestRemoveConstraint(t *testing.T) {
	s := New()
	x := NewVariable("x")
	strong := eq(Strong, -20, T(1, x))
	commit(t, s, func(tx *Transaction) {
		tx.AddConstraint(eq(Weak, -10, T(1, x)))
		tx.AddConstraint(strong)
	})
	if !approx(x.Value(), 20) {
		t.Fatalf("x = %v, want 20", x.Value())
	}
	commit(t, s, func(tx *Transaction) { tx.RemoveConstraint(strong) })
	if !approx(x.Value(), 10) {
		t.Errorf("x after removal = %v, want 10", x.Value())
	}
	if s.HasConstraint(strong) {
		t.Error("HasConstraint() = true after removal")
	}
}

func TestCommitUnsatisfiableRollsBack(t *testing.T) {
	s := New()
	x := NewVariable("x")
	base := eq(Required, -5, T(1, x))
	commit(t, s, func(tx *Transaction) { tx.AddConstraint(base) })

	tx := s.Begin()
	tx.RemoveConstraint(base)
	a := eq(Required, -100, T(1, x))
	b := eq(Required, -200, T(1, x))
	tx.AddConstraint(a)
	tx.AddConstraint(b)
	err := tx.Commit()

	if !errors.Is(err, ErrUnsatisfiable) {
		t.Fatalf("Commit() error = %v, want ErrUnsatisfiable", err)
	}
	var ue *UnsatisfiableError
	if !errors.As(err, &ue) || ue.Constraint != b {
		t.Errorf("UnsatisfiableError.Constraint = %v, want %v", ue, b)
	}
	if !s.HasConstraint(base) || s.HasConstraint(a) || s.HasConstraint(b) {
		t.Error("solver state not restored after failed commit")
	}
	s.UpdateVariables()
	if !approx(x.Value(), 5) {
		t.Errorf("x = %v, want 5", x.Value())
	}
}

func TestCommitUnknownRollsBack(t *testing.T) {
	s := New()
	x := NewVariable("x")
	added := eq(Strong, -1, T(1, x))

	tx := s.Begin()
	tx.AddConstraint(added)
	tx.AddEditVariable(x, Weak)
	tx.RemoveConstraint(eq(Strong, 0, T(1, x)))
	err := tx.Commit()

	if !errors.Is(err, ErrUnknownConstraint) {
		t.Fatalf("Commit() error = %v, want ErrUnknownConstraint", err)
	}
	if s.HasConstraint(added) || s.HasEditVariable(x) {
		t.Error("applied operations were not undone")
	}
}

func TestEditVariableErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(tx *Transaction, v *Variable)
		want  error
	}{
		{
			name:  "required strength",
			build: func(tx *Transaction, v *Variable) { tx.AddEditVariable(v, Required) },
			want:  ErrBadRequiredStrength,
		},
		{
			name: "duplicate",
			build: func(tx *Transaction, v *Variable) {
				tx.AddEditVariable(v, Strong)
				tx.AddEditVariable(v, Strong)
			},
			want: ErrDuplicateEditVariable,
		},
		{
			name:  "suggest unknown",
			build: func(tx *Transaction, v *Variable) { tx.SuggestValue(v, 1) },
			want:  ErrUnknownEditVariable,
		},
		{
			name:  "remove unknown",
			build: func(tx *Transaction, v *Variable) { tx.RemoveEditVariable(v) },
			want:  ErrUnknownEditVariable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tx := s.Begin()
			tt.build(tx, NewVariable("v"))
			if err := tx.Commit(); !errors.Is(err, tt.want) {
				t.Errorf("Commit() error = %v, want %v", err, tt.want)
			}
			if s.NumEditVariables() != 0 {
				t.Errorf("NumEditVariables() = %d, want 0", s.NumEditVariables())
			}
		})
	}
}

func TestDeterministicUnderconstrained(t *testing.T) {
	run := func() (float64, float64) {
		s := New()
		a := NewVariable("a")
		b := NewVariable("b")
		tx := s.Begin()
		tx.AddConstraint(eq(Required, -100, T(1, a), T(1, b)))
		tx.AddConstraint(NewConstraint(NewExpression(0, T(1, a)), GE, Required))
		tx.AddConstraint(NewConstraint(NewExpression(0, T(1, b)), GE, Required))
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		s.UpdateVariables()
		return a.Value(), b.Value()
	}
	a1, b1 := run()
	for i := 0; i < 10; i++ {
		a2, b2 := run()
		if a1 != a2 || b1 != b2 {
			t.Fatalf("run %d = (%v, %v), want (%v, %v)", i, a2, b2, a1, b1)
		}
	}
	if !approx(a1+b1, 100) {
		t.Errorf("a + b = %v, want 100", a1+b1)
	}
}

func TestStrengthValues(t *testing.T) {
	if Required != 1_001_001_000 {
		t.Errorf("Required = %v", float64(Required))
	}
	if Strong != 1_000_000 || Medium != 1_000 || Weak != 1 {
		t.Errorf("Strong/Medium/Weak = %v/%v/%v", float64(Strong), float64(Medium), float64(Weak))
	}
	if Clip(Required*2) != Required || Clip(-1) != 0 {
		t.Error("Clip does not clamp to [0, Required]")
	}
	if CreateStrength(2000, 0, 0) != CreateStrength(1000, 0, 0) {
		t.Error("CreateStrength does not clamp components")
	}
}

func TestConstraintReducesTerms(t *testing.T) {
	x := NewVariable("x")
	y := NewVariable("y")
	c := NewConstraint(NewExpression(3, T(1, x), T(2, y), T(-1, x)), EQ, Required)
	expr := c.Expression()
	if len(expr.Terms) != 1 || expr.Terms[0].Variable != y || expr.Terms[0].Coefficient != 2 {
		t.Errorf("Expression() = %v, want 2*y + 3", expr)
	}
	if got := c.String(); got != "2*y + 3 == 0 | required" {
		t.Errorf("String() = %q", got)
	}
	same := NewConstraint(NewExpression(3, T(2, y)), EQ, Required)
	if !c.Same(same) {
		t.Error("Same() = false for structurally equal constraints")
	}
}
