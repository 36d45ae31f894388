package layout

import (
	"slices"

	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// namedConstraint is a definitional constraint as registered by one pass.
type namedConstraint struct {
	c        *solver.Constraint
	strength solver.Strength
}

// suggestion is a suggested edit-variable value as registered by one pass.
type suggestion struct {
	v        *solver.Variable
	value    float64
	strength solver.Strength
}

// containerState is one container's contribution to a generation.
type containerState struct {
	name  string
	defs  map[string]namedConstraint
	edits map[string]suggestion
}

func newContainerState(name string) *containerState {
	return &containerState{
		name:  name,
		defs:  make(map[string]namedConstraint),
		edits: make(map[string]suggestion),
	}
}

func (st *containerState) require(name string, c *solver.Constraint) {
	st.defs[name] = namedConstraint{c: c, strength: c.Strength()}
}

func (st *containerState) suggest(name string, v *solver.Variable, value float64, strength solver.Strength) {
	st.edits[name] = suggestion{v: v, value: value, strength: strength}
}

// generation is the complete solver-facing state of one pass.
type generation struct {
	order      []Handle
	containers map[Handle]*containerState
	users      map[definition]*solver.Constraint
	userOrder  []definition
}

func newGeneration() *generation {
	return &generation{
		containers: make(map[Handle]*containerState),
		users:      make(map[definition]*solver.Constraint),
	}
}

func (g *generation) constraintCount() (users, defs, edits int) {
	for _, st := range g.containers {
		defs += len(st.defs)
		edits += len(st.edits)
	}
	return len(g.users), defs, edits
}

// Cache is the incremental diff cache. It remembers what the previous pass
// submitted to its solver so the next pass only submits the difference.
//
// A Cache belongs to one view hierarchy and must not be shared by
// concurrent passes. The zero value is not usable; use NewCache.
type Cache struct {
	solver   *solver.Solver
	current  *generation
	previous *generation
	last     batch
	stats    DiffStats
	passes   int
}

// NewCache creates an empty cache with a fresh solver.
func NewCache() *Cache {
	return &Cache{
		solver:   solver.New(),
		current:  newGeneration(),
		previous: newGeneration(),
	}
}

// Reset drops all state. The next pass submits everything again to a new
// solver.
func (c *Cache) Reset() {
	*c = *NewCache()
}

// Stats returns the diff statistics of the last pass.
func (c *Cache) Stats() DiffStats { return c.stats }

// Passes returns the number of passes applied through the cache.
func (c *Cache) Passes() int { return c.passes }

// begin rotates the generations: the last applied state becomes previous
// and current starts empty.
func (c *Cache) begin() {
	c.previous = c.current
	c.current = newGeneration()
}

// abort discards the generation built by a failed pass.
func (c *Cache) abort() {
	c.current = c.previous
	c.previous = newGeneration()
}

// record fills the current generation from a collected pass.
func (c *Cache) record(p *pass) {
	g := c.current
	for _, ct := range p.order {
		st := newContainerState(ct.name)
		ct.vars.contribute(p.states[ct.handle], p.isTouched(ct), st)
		g.order = append(g.order, ct.handle)
		g.containers[ct.handle] = st
	}
	for _, k := range p.users {
		def := k.definition()
		if _, dup := g.users[def]; dup {
			continue
		}
		if prev, ok := c.previous.users[def]; ok {
			k.compiled = prev
		}
		g.users[def] = k.compile()
		g.userOrder = append(g.userOrder, def)
	}
}

// DiffStats counts the changes one pass submitted.
type DiffStats struct {
	ConstraintsAdded   int `json:"constraints_added" bson:"constraints_added"`
	ConstraintsRemoved int `json:"constraints_removed" bson:"constraints_removed"`
	ConstraintsUpdated int `json:"constraints_updated" bson:"constraints_updated"`
	EditsAdded         int `json:"edits_added" bson:"edits_added"`
	EditsRemoved       int `json:"edits_removed" bson:"edits_removed"`
	EditsUpdated       int `json:"edits_updated" bson:"edits_updated"`
	Resuggested        int `json:"resuggested" bson:"resuggested"`
}

// IsZero reports whether nothing changed.
func (s DiffStats) IsZero() bool { return s == DiffStats{} }

// diff compares the current generation against the previous one.
//
// The batch holds every removal first, then constraint additions, then
// edit-variable additions with their first suggestion, then re-suggestions
// of edit variables whose value alone changed. An updated constraint or
// edit variable is a removal plus an addition.
func (c *Cache) diff() (batch, DiffStats) {
	prev, cur := c.previous, c.current
	var (
		removals, adds, editAdds, suggests batch
		stats                              DiffStats
	)

	for _, def := range prev.userOrder {
		if _, ok := cur.users[def]; !ok {
			removals = append(removals, removeConstraint(prev.users[def], ""))
			stats.ConstraintsRemoved++
		}
	}
	for _, h := range prev.order {
		ps, cs := prev.containers[h], cur.containers[h]
		for _, name := range sortedKeys(ps.defs) {
			old := ps.defs[name]
			if cs != nil {
				if now, ok := cs.defs[name]; ok {
					if now != old {
						removals = append(removals, removeConstraint(old.c, ps.name+":"+name))
					}
					continue
				}
			}
			removals = append(removals, removeConstraint(old.c, ps.name+":"+name))
			stats.ConstraintsRemoved++
		}
		for _, name := range sortedKeys(ps.edits) {
			old := ps.edits[name]
			if cs != nil {
				if now, ok := cs.edits[name]; ok && now.v == old.v && now.strength == old.strength {
					continue
				}
			}
			removals = append(removals, removeEdit(old.v))
			if cs == nil || !hasKey(cs.edits, name) {
				stats.EditsRemoved++
			}
		}
	}

	for _, def := range cur.userOrder {
		if _, ok := prev.users[def]; !ok {
			adds = append(adds, addConstraint(cur.users[def], ""))
			stats.ConstraintsAdded++
		}
	}
	for _, h := range cur.order {
		cs, ps := cur.containers[h], prev.containers[h]
		for _, name := range sortedKeys(cs.defs) {
			now := cs.defs[name]
			var old namedConstraint
			var had bool
			if ps != nil {
				old, had = ps.defs[name]
			}
			switch {
			case !had:
				stats.ConstraintsAdded++
			case old != now:
				stats.ConstraintsUpdated++
			default:
				continue
			}
			adds = append(adds, addConstraint(now.c, cs.name+":"+name))
		}
		for _, name := range sortedKeys(cs.edits) {
			now := cs.edits[name]
			var old suggestion
			var had bool
			if ps != nil {
				old, had = ps.edits[name]
			}
			switch {
			case !had:
				stats.EditsAdded++
			case old.v != now.v || old.strength != now.strength:
				stats.EditsUpdated++
			case old.value != now.value:
				suggests = append(suggests, suggestValue(now.v, now.value))
				stats.Resuggested++
				continue
			default:
				continue
			}
			editAdds = append(editAdds, addEdit(now.v, now.strength), suggestValue(now.v, now.value))
		}
	}

	out := make(batch, 0, len(removals)+len(adds)+len(editAdds)+len(suggests))
	out = append(out, removals...)
	out = append(out, adds...)
	out = append(out, editAdds...)
	out = append(out, suggests...)
	return out, stats
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func hasKey[V any](m map[string]V, k string) bool {
	_, ok := m[k]
	return ok
}
