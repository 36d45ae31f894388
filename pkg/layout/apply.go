package layout

import (
	"github.com/matzehuels/anchorlayout/pkg/solver"
)

type opKind uint8

const (
	opRemoveConstraint opKind = iota
	opAddConstraint
	opRemoveEdit
	opAddEdit
	opSuggest
)

var opNames = [...]string{"remove", "add", "remove-edit", "add-edit", "suggest"}

func (k opKind) String() string { return opNames[k] }

// op is one solver call of a pass.
type op struct {
	kind       opKind
	constraint *solver.Constraint
	variable   *solver.Variable
	strength   solver.Strength
	value      float64
	// name labels definitional constraints as "container:name".
	name string
}

// batch is the ordered list of solver calls a pass submits.
type batch []op

func removeConstraint(c *solver.Constraint, name string) op {
	return op{kind: opRemoveConstraint, constraint: c, name: name}
}

func addConstraint(c *solver.Constraint, name string) op {
	return op{kind: opAddConstraint, constraint: c, name: name}
}

func removeEdit(v *solver.Variable) op {
	return op{kind: opRemoveEdit, variable: v}
}

func addEdit(v *solver.Variable, s solver.Strength) op {
	return op{kind: opAddEdit, variable: v, strength: s}
}

func suggestValue(v *solver.Variable, value float64) op {
	return op{kind: opSuggest, variable: v, value: value}
}

// apply submits b to the cache's solver as one transaction. On error the
// solver is left as it was before the call.
func (c *Cache) apply(b batch) error {
	if len(b) == 0 {
		return nil
	}
	tx := c.solver.Begin()
	for _, o := range b {
		switch o.kind {
		case opRemoveConstraint:
			tx.RemoveConstraint(o.constraint)
		case opAddConstraint:
			tx.AddConstraint(o.constraint)
		case opRemoveEdit:
			tx.RemoveEditVariable(o.variable)
		case opAddEdit:
			tx.AddEditVariable(o.variable, o.strength)
		case opSuggest:
			tx.SuggestValue(o.variable, o.value)
		}
	}
	return tx.Commit()
}

// BatchEntry is the printable form of one solver call, used by debug
// dumps.
type BatchEntry struct {
	Op         string  `json:"op"`
	Name       string  `json:"name,omitempty"`
	Constraint string  `json:"constraint,omitempty"`
	Variable   string  `json:"variable,omitempty"`
	Strength   string  `json:"strength,omitempty"`
	Value      float64 `json:"value,omitempty"`
}

func (b batch) entries() []BatchEntry {
	out := make([]BatchEntry, len(b))
	for i, o := range b {
		e := BatchEntry{Op: o.kind.String(), Name: o.name}
		if o.constraint != nil {
			e.Constraint = o.constraint.String()
		}
		if o.variable != nil {
			e.Variable = o.variable.Name()
		}
		switch o.kind {
		case opAddEdit:
			e.Strength = o.strength.String()
		case opSuggest:
			e.Value = o.value
		}
		out[i] = e
	}
	return out
}
