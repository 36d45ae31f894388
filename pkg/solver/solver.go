package solver

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

type tag struct {
	marker symbol
	other  symbol
}

type editInfo struct {
	tag        tag
	constraint *Constraint
	strength   Strength
	constant   float64
}

// Solver is an incremental Cassowary solver. It is not safe for concurrent
// use; callers serialize access (one layout pass at a time).
type Solver struct {
	constraints map[*Constraint]tag
	rows        map[symbol]*row
	vars        map[*Variable]symbol
	edits       map[*Variable]*editInfo
	infeasible  []symbol
	objective   *row
	artificial  *row
	nextID      uint64
}

// New creates an empty solver.
func New() *Solver {
	return &Solver{
		constraints: make(map[*Constraint]tag),
		rows:        make(map[symbol]*row),
		vars:        make(map[*Variable]symbol),
		edits:       make(map[*Variable]*editInfo),
		objective:   newRow(0),
	}
}

// Begin opens a transaction. Operations are queued and applied by Commit.
func (s *Solver) Begin() *Transaction {
	return &Transaction{s: s}
}

// HasConstraint reports whether c has been added.
func (s *Solver) HasConstraint(c *Constraint) bool {
	_, ok := s.constraints[c]
	return ok
}

// HasEditVariable reports whether v is an edit variable.
func (s *Solver) HasEditVariable(v *Variable) bool {
	_, ok := s.edits[v]
	return ok
}

// NumConstraints returns the number of constraints currently added,
// excluding the internal constraints backing edit variables.
func (s *Solver) NumConstraints() int { return len(s.constraints) - len(s.edits) }

// NumEditVariables returns the number of registered edit variables.
func (s *Solver) NumEditVariables() int { return len(s.edits) }

// UpdateVariables writes the current solution into every variable the
// solver has seen.
func (s *Solver) UpdateVariables() {
	for v, sym := range s.vars {
		if r, ok := s.rows[sym]; ok {
			v.value = r.constant
		} else {
			v.value = 0
		}
	}
}

func (s *Solver) newSymbol(kind symbolKind) symbol {
	s.nextID++
	return symbol{id: s.nextID, kind: kind}
}

func (s *Solver) addConstraint(c *Constraint) error {
	if _, ok := s.constraints[c]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateConstraint, c)
	}

	r, t := s.createRow(c)
	subject := chooseSubject(r, t)

	if !subject.valid() && allDummies(r) {
		if !nearZero(r.constant) {
			return &UnsatisfiableError{Constraint: c}
		}
		subject = t.marker
	}

	if !subject.valid() {
		ok, err := s.addWithArtificialVariable(r)
		if err != nil {
			return err
		}
		if !ok {
			return &UnsatisfiableError{Constraint: c}
		}
	} else {
		r.solveFor(subject)
		s.substitute(subject, r)
		s.rows[subject] = r
	}

	s.constraints[c] = t
	return s.optimize(s.objective)
}

func (s *Solver) removeConstraint(c *Constraint) error {
	t, ok := s.constraints[c]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConstraint, c)
	}
	delete(s.constraints, c)
	s.removeConstraintEffects(c, t)

	if _, ok := s.rows[t.marker]; ok {
		delete(s.rows, t.marker)
	} else {
		leaving, r := s.markerLeavingRow(t.marker)
		if r == nil {
			return fmt.Errorf("%w: failed to find leaving row", ErrInternal)
		}
		delete(s.rows, leaving)
		r.solveForPair(leaving, t.marker)
		s.substitute(t.marker, r)
	}
	return s.optimize(s.objective)
}

func (s *Solver) addEditVariable(v *Variable, strength Strength) error {
	if _, ok := s.edits[v]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEditVariable, v)
	}
	strength = Clip(strength)
	if strength.IsRequired() {
		return fmt.Errorf("%w: %s", ErrBadRequiredStrength, v)
	}
	c := NewConstraint(NewExpression(0, T(1, v)), EQ, strength)
	if err := s.addConstraint(c); err != nil {
		return err
	}
	s.edits[v] = &editInfo{tag: s.constraints[c], constraint: c, strength: strength}
	return nil
}

func (s *Solver) removeEditVariable(v *Variable) error {
	info, ok := s.edits[v]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEditVariable, v)
	}
	if err := s.removeConstraint(info.constraint); err != nil {
		return err
	}
	delete(s.edits, v)
	return nil
}

func (s *Solver) suggestValue(v *Variable, value float64) error {
	info, ok := s.edits[v]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEditVariable, v)
	}
	delta := value - info.constant
	info.constant = value

	if r, ok := s.rows[info.tag.marker]; ok {
		if r.add(-delta) < 0 {
			s.infeasible = append(s.infeasible, info.tag.marker)
		}
		return s.dualOptimize()
	}
	if r, ok := s.rows[info.tag.other]; ok {
		if r.add(delta) < 0 {
			s.infeasible = append(s.infeasible, info.tag.other)
		}
		return s.dualOptimize()
	}
	for sym, r := range s.rows {
		c := r.coefficientFor(info.tag.marker)
		if c != 0 && r.add(delta*c) < 0 && sym.kind != externalSymbol {
			s.infeasible = append(s.infeasible, sym)
		}
	}
	return s.dualOptimize()
}

// editState returns the strength and last suggested value of v.
func (s *Solver) editState(v *Variable) (Strength, float64, bool) {
	info, ok := s.edits[v]
	if !ok {
		return 0, 0, false
	}
	return info.strength, info.constant, true
}

func (s *Solver) varSymbol(v *Variable) symbol {
	if sym, ok := s.vars[v]; ok {
		return sym
	}
	sym := s.newSymbol(externalSymbol)
	s.vars[v] = sym
	return sym
}

func (s *Solver) createRow(c *Constraint) (*row, tag) {
	r := newRow(c.expr.Constant)
	for _, term := range c.expr.Terms {
		if nearZero(term.Coefficient) {
			continue
		}
		sym := s.varSymbol(term.Variable)
		if basic, ok := s.rows[sym]; ok {
			r.insertRow(basic, term.Coefficient)
		} else {
			r.insertSymbol(sym, term.Coefficient)
		}
	}

	var t tag
	switch c.op {
	case LE, GE:
		coeff := 1.0
		if c.op == GE {
			coeff = -1.0
		}
		slack := s.newSymbol(slackSymbol)
		t.marker = slack
		r.insertSymbol(slack, coeff)
		if !c.strength.IsRequired() {
			errSym := s.newSymbol(errorSymbol)
			t.other = errSym
			r.insertSymbol(errSym, -coeff)
			s.objective.insertSymbol(errSym, float64(c.strength))
		}
	case EQ:
		if !c.strength.IsRequired() {
			plus := s.newSymbol(errorSymbol)
			minus := s.newSymbol(errorSymbol)
			t.marker = plus
			t.other = minus
			r.insertSymbol(plus, -1)
			r.insertSymbol(minus, 1)
			s.objective.insertSymbol(plus, float64(c.strength))
			s.objective.insertSymbol(minus, float64(c.strength))
		} else {
			dummy := s.newSymbol(dummySymbol)
			t.marker = dummy
			r.insertSymbol(dummy, 1)
		}
	}

	if r.constant < 0 {
		r.reverseSign()
	}
	return r, t
}

func chooseSubject(r *row, t tag) symbol {
	var best symbol
	for sym := range r.cells {
		if sym.kind == externalSymbol && (!best.valid() || sym.id < best.id) {
			best = sym
		}
	}
	if best.valid() {
		return best
	}
	if t.marker.pivotable() && r.coefficientFor(t.marker) < 0 {
		return t.marker
	}
	if t.other.pivotable() && r.coefficientFor(t.other) < 0 {
		return t.other
	}
	return symbol{}
}

func allDummies(r *row) bool {
	for sym := range r.cells {
		if sym.kind != dummySymbol {
			return false
		}
	}
	return true
}

func (s *Solver) addWithArtificialVariable(r *row) (bool, error) {
	art := s.newSymbol(slackSymbol)
	s.rows[art] = r.copy()
	s.artificial = r.copy()

	if err := s.optimize(s.artificial); err != nil {
		s.artificial = nil
		return false, err
	}
	success := nearZero(s.artificial.constant)
	s.artificial = nil

	if basic, ok := s.rows[art]; ok {
		delete(s.rows, art)
		if len(basic.cells) == 0 {
			return success, nil
		}
		entering := anyPivotableSymbol(basic)
		if !entering.valid() {
			return false, nil
		}
		basic.solveForPair(art, entering)
		s.substitute(entering, basic)
		s.rows[entering] = basic
	}

	for _, basic := range s.rows {
		basic.remove(art)
	}
	s.objective.remove(art)
	return success, nil
}

func anyPivotableSymbol(r *row) symbol {
	var best symbol
	for sym := range r.cells {
		if sym.pivotable() && (!best.valid() || sym.id < best.id) {
			best = sym
		}
	}
	return best
}

func (s *Solver) substitute(sym symbol, r *row) {
	for key, basic := range s.rows {
		basic.substitute(sym, r)
		if key.kind != externalSymbol && basic.constant < 0 {
			s.infeasible = append(s.infeasible, key)
		}
	}
	s.objective.substitute(sym, r)
	if s.artificial != nil {
		s.artificial.substitute(sym, r)
	}
}

func (s *Solver) optimize(objective *row) error {
	for {
		entering := enteringSymbol(objective)
		if !entering.valid() {
			return nil
		}
		leaving, r := s.leavingRow(entering)
		if r == nil {
			return fmt.Errorf("%w: objective function is unbounded", ErrInternal)
		}
		delete(s.rows, leaving)
		r.solveForPair(leaving, entering)
		s.substitute(entering, r)
		s.rows[entering] = r
	}
}

func (s *Solver) dualOptimize() error {
	for len(s.infeasible) > 0 {
		leaving := s.popInfeasible()
		r, ok := s.rows[leaving]
		if !ok || nearZero(r.constant) || r.constant > 0 {
			continue
		}
		entering := s.dualEnteringSymbol(r)
		if !entering.valid() {
			return fmt.Errorf("%w: dual optimize failed", ErrInternal)
		}
		delete(s.rows, leaving)
		r.solveForPair(leaving, entering)
		s.substitute(entering, r)
		s.rows[entering] = r
	}
	return nil
}

// popInfeasible removes and returns the infeasible symbol with the lowest id.
func (s *Solver) popInfeasible() symbol {
	best := 0
	for i, sym := range s.infeasible {
		if sym.id < s.infeasible[best].id {
			best = i
		}
	}
	sym := s.infeasible[best]
	s.infeasible = slices.Delete(s.infeasible, best, best+1)
	return sym
}

func enteringSymbol(objective *row) symbol {
	var best symbol
	for sym, c := range objective.cells {
		if sym.kind != dummySymbol && c < 0 && (!best.valid() || sym.id < best.id) {
			best = sym
		}
	}
	return best
}

func (s *Solver) dualEnteringSymbol(r *row) symbol {
	var best symbol
	ratio := math.MaxFloat64
	for sym, c := range r.cells {
		if c <= 0 || sym.kind == dummySymbol {
			continue
		}
		v := s.objective.coefficientFor(sym) / c
		if v < ratio || (v == ratio && best.valid() && sym.id < best.id) {
			ratio = v
			best = sym
		}
	}
	return best
}

func (s *Solver) leavingRow(entering symbol) (symbol, *row) {
	var (
		best  symbol
		found *row
	)
	ratio := math.MaxFloat64
	for sym, r := range s.rows {
		if sym.kind == externalSymbol {
			continue
		}
		c := r.coefficientFor(entering)
		if c >= 0 {
			continue
		}
		v := -r.constant / c
		if v < ratio || (v == ratio && found != nil && sym.id < best.id) {
			ratio = v
			best = sym
			found = r
		}
	}
	return best, found
}

func (s *Solver) markerLeavingRow(marker symbol) (symbol, *row) {
	r1, r2 := math.MaxFloat64, math.MaxFloat64
	var first, second, third symbol
	for _, sym := range s.sortedRowSymbols() {
		r := s.rows[sym]
		c := r.coefficientFor(marker)
		if c == 0 {
			continue
		}
		switch {
		case sym.kind == externalSymbol:
			if !third.valid() {
				third = sym
			}
		case c < 0:
			if v := -r.constant / c; v < r1 {
				r1 = v
				first = sym
			}
		default:
			if v := r.constant / c; v < r2 {
				r2 = v
				second = sym
			}
		}
	}
	for _, sym := range []symbol{first, second, third} {
		if sym.valid() {
			return sym, s.rows[sym]
		}
	}
	return symbol{}, nil
}

func (s *Solver) removeConstraintEffects(c *Constraint, t tag) {
	if t.marker.kind == errorSymbol {
		s.removeMarkerEffects(t.marker, c.strength)
	}
	if t.other.kind == errorSymbol {
		s.removeMarkerEffects(t.other, c.strength)
	}
}

func (s *Solver) removeMarkerEffects(marker symbol, strength Strength) {
	if r, ok := s.rows[marker]; ok {
		s.objective.insertRow(r, -float64(strength))
		return
	}
	s.objective.insertSymbol(marker, -float64(strength))
}

// sortedRowSymbols returns the basic symbols ordered by id so that
// iteration-dependent choices are reproducible.
func (s *Solver) sortedRowSymbols() []symbol {
	keys := make([]symbol, 0, len(s.rows))
	for sym := range s.rows {
		keys = append(keys, sym)
	}
	slices.SortFunc(keys, func(a, b symbol) int { return cmp.Compare(a.id, b.id) })
	return keys
}
