package solver

type opKind int

const (
	opAddConstraint opKind = iota
	opRemoveConstraint
	opAddEdit
	opRemoveEdit
	opSuggest
)

type op struct {
	kind       opKind
	constraint *Constraint
	variable   *Variable
	strength   Strength
	value      float64
}

// undo restores what an applied op changed.
type undo struct {
	op
	prevStrength Strength
	prevValue    float64
}

// Transaction batches solver mutations and applies them atomically.
// A Transaction must not be reused after Commit.
type Transaction struct {
	s   *Solver
	ops []op
}

// AddConstraint queues the addition of c.
func (tx *Transaction) AddConstraint(c *Constraint) {
	tx.ops = append(tx.ops, op{kind: opAddConstraint, constraint: c})
}

// RemoveConstraint queues the removal of c.
func (tx *Transaction) RemoveConstraint(c *Constraint) {
	tx.ops = append(tx.ops, op{kind: opRemoveConstraint, constraint: c})
}

// AddEditVariable queues registering v as an edit variable.
func (tx *Transaction) AddEditVariable(v *Variable, strength Strength) {
	tx.ops = append(tx.ops, op{kind: opAddEdit, variable: v, strength: strength})
}

// RemoveEditVariable queues unregistering the edit variable v.
func (tx *Transaction) RemoveEditVariable(v *Variable) {
	tx.ops = append(tx.ops, op{kind: opRemoveEdit, variable: v})
}

// SuggestValue queues a suggested value for the edit variable v.
func (tx *Transaction) SuggestValue(v *Variable, value float64) {
	tx.ops = append(tx.ops, op{kind: opSuggest, variable: v, value: value})
}

// Len returns the number of queued operations.
func (tx *Transaction) Len() int { return len(tx.ops) }

// Commit applies the queued operations in order. On failure the solver is
// restored to its state before Commit and the first error is returned.
func (tx *Transaction) Commit() error {
	var snap *snapshot
	if tx.addsRequired() {
		snap = tx.s.takeSnapshot()
	}

	applied := make([]undo, 0, len(tx.ops))
	for _, o := range tx.ops {
		u, err := tx.s.apply(o)
		if err != nil {
			if snap != nil {
				tx.s.restore(snap)
			} else {
				tx.s.rollback(applied)
			}
			return err
		}
		applied = append(applied, u)
	}
	tx.ops = nil
	return nil
}

func (tx *Transaction) addsRequired() bool {
	for _, o := range tx.ops {
		if o.kind == opAddConstraint && o.constraint.strength.IsRequired() {
			return true
		}
	}
	return false
}

func (s *Solver) apply(o op) (undo, error) {
	u := undo{op: o}
	switch o.kind {
	case opAddConstraint:
		return u, s.addConstraint(o.constraint)
	case opRemoveConstraint:
		return u, s.removeConstraint(o.constraint)
	case opAddEdit:
		return u, s.addEditVariable(o.variable, o.strength)
	case opRemoveEdit:
		u.prevStrength, u.prevValue, _ = s.editState(o.variable)
		return u, s.removeEditVariable(o.variable)
	case opSuggest:
		_, u.prevValue, _ = s.editState(o.variable)
		return u, s.suggestValue(o.variable, o.value)
	}
	return u, nil
}

// rollback reverts applied operations in reverse order. Reverting a
// successfully applied operation on a previously consistent state cannot
// fail, so errors are ignored.
func (s *Solver) rollback(applied []undo) {
	for i := len(applied) - 1; i >= 0; i-- {
		u := applied[i]
		switch u.kind {
		case opAddConstraint:
			_ = s.removeConstraint(u.constraint)
		case opRemoveConstraint:
			_ = s.addConstraint(u.constraint)
		case opAddEdit:
			_ = s.removeEditVariable(u.variable)
		case opRemoveEdit:
			_ = s.addEditVariable(u.variable, u.prevStrength)
			_ = s.suggestValue(u.variable, u.prevValue)
		case opSuggest:
			_ = s.suggestValue(u.variable, u.prevValue)
		}
	}
}

type snapshot struct {
	constraints map[*Constraint]tag
	rows        map[symbol]*row
	vars        map[*Variable]symbol
	edits       map[*Variable]*editInfo
	objective   *row
	nextID      uint64
}

func (s *Solver) takeSnapshot() *snapshot {
	snap := &snapshot{
		constraints: make(map[*Constraint]tag, len(s.constraints)),
		rows:        make(map[symbol]*row, len(s.rows)),
		vars:        make(map[*Variable]symbol, len(s.vars)),
		edits:       make(map[*Variable]*editInfo, len(s.edits)),
		objective:   s.objective.copy(),
		nextID:      s.nextID,
	}
	for c, t := range s.constraints {
		snap.constraints[c] = t
	}
	for sym, r := range s.rows {
		snap.rows[sym] = r.copy()
	}
	for v, sym := range s.vars {
		snap.vars[v] = sym
	}
	for v, info := range s.edits {
		cp := *info
		snap.edits[v] = &cp
	}
	return snap
}

func (s *Solver) restore(snap *snapshot) {
	s.constraints = snap.constraints
	s.rows = snap.rows
	s.vars = snap.vars
	s.edits = snap.edits
	s.objective = snap.objective
	s.nextID = snap.nextID
	s.infeasible = nil
	s.artificial = nil
}
