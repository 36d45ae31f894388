package layout

import (
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// Constraint is a user-declared linear relation between one or two anchors:
//
//	first relation second*multiplier + offset
//
// or, without a second anchor, the bound "first relation offset".
//
// A Constraint is owned by the nearest common ancestor of its anchors'
// containers and is identified by pointer. Its compiled solver form is
// computed on first use and dropped by every mutator.
type Constraint struct {
	owner      *Container
	first      Anchor
	second     Anchor
	relation   Relation
	offset     float64
	multiplier float64
	priority   Priority
	enabled    bool

	compiled *solver.Constraint
}

// Option configures a Constraint at construction.
type Option func(*Constraint)

// WithOffset sets the constant term.
func WithOffset(offset float64) Option {
	return func(c *Constraint) { c.offset = offset }
}

// WithMultiplier scales the second anchor.
func WithMultiplier(m float64) Option {
	return func(c *Constraint) { c.multiplier = m }
}

// WithPriority sets the priority. The default is PriorityRequired.
func WithPriority(p Priority) Option {
	return func(c *Constraint) { c.priority = p }
}

// Disabled creates the constraint switched off.
func Disabled() Option {
	return func(c *Constraint) { c.enabled = false }
}

// Constrain creates "first relation second" and registers it with the
// nearest common ancestor of both containers.
//
// It panics if either anchor is void or the containers share no ancestor.
func Constrain(first Anchor, r Relation, second Anchor, opts ...Option) *Constraint {
	if second == (Anchor{}) {
		panic("layout: Constrain needs a second anchor, use Bound for constants")
	}
	return newConstraint(first, r, second, 0, opts)
}

// Bound creates "first relation value". Options may adjust the priority;
// WithOffset is added to value.
func Bound(first Anchor, r Relation, value float64, opts ...Option) *Constraint {
	return newConstraint(first, r, Anchor{}, value, opts)
}

func newConstraint(first Anchor, r Relation, second Anchor, base float64, opts []Option) *Constraint {
	fc := first.Owner()
	if fc == nil {
		panic(fmt.Sprintf("layout: first anchor %s is void", first))
	}
	owner := fc
	var sc *Container
	if second != (Anchor{}) {
		if sc = second.Owner(); sc == nil {
			panic(fmt.Sprintf("layout: second anchor %s is void", second))
		}
		if owner = commonAncestor(fc, sc); owner == nil {
			panic(fmt.Sprintf("layout: %s and %s share no common ancestor", first, second))
		}
	}

	c := &Constraint{
		owner:      owner,
		first:      first,
		second:     second,
		relation:   r,
		multiplier: 1,
		priority:   PriorityRequired,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.offset += base

	owner.constraints = append(owner.constraints, c)
	fc.referencing = append(fc.referencing, c)
	if sc != nil && sc != fc {
		sc.referencing = append(sc.referencing, c)
	}
	c.markDirty()
	return c
}

// Owner returns the owning container, or nil once destroyed.
func (c *Constraint) Owner() *Container { return c.owner }

// First returns the constrained anchor.
func (c *Constraint) First() Anchor { return c.first }

// Second returns the second anchor and whether there is one.
func (c *Constraint) Second() (Anchor, bool) { return c.second, c.second != (Anchor{}) }

// Relation returns the relation.
func (c *Constraint) Relation() Relation { return c.relation }

// Offset returns the constant term.
func (c *Constraint) Offset() float64 { return c.offset }

// Multiplier returns the factor applied to the second anchor.
func (c *Constraint) Multiplier() float64 { return c.multiplier }

// Priority returns the priority.
func (c *Constraint) Priority() Priority { return c.priority }

// Enabled reports whether the constraint takes part in layout.
func (c *Constraint) Enabled() bool { return c.enabled }

// SetRelation changes the relation.
func (c *Constraint) SetRelation(r Relation) {
	if c.relation != r {
		c.relation = r
		c.invalidate()
	}
}

// SetOffset changes the constant term.
func (c *Constraint) SetOffset(offset float64) {
	if c.offset != offset {
		c.offset = offset
		c.invalidate()
	}
}

// SetMultiplier changes the factor applied to the second anchor.
func (c *Constraint) SetMultiplier(m float64) {
	if c.multiplier != m {
		c.multiplier = m
		c.invalidate()
	}
}

// SetPriority changes the priority.
func (c *Constraint) SetPriority(p Priority) {
	if c.priority != p {
		c.priority = p
		c.invalidate()
	}
}

// SetEnabled switches the constraint on or off.
func (c *Constraint) SetEnabled(on bool) {
	if c.enabled != on {
		c.enabled = on
		c.invalidate()
	}
}

// Destroy unregisters the constraint from its owner and from both anchor
// containers. Destroying twice is a no-op.
func (c *Constraint) Destroy() {
	if c.owner == nil {
		return
	}
	c.owner.detach(c)
	if fc := c.first.Owner(); fc != nil {
		fc.detach(c)
	}
	if sc := c.second.Owner(); sc != nil {
		sc.detach(c)
	}
	c.owner = nil
	c.compiled = nil
}

func (c *Constraint) invalidate() {
	c.compiled = nil
	c.markDirty()
}

func (c *Constraint) markDirty() {
	if c.owner != nil {
		c.owner.needsLayout = true
	}
	if fc := c.first.Owner(); fc != nil {
		fc.needsLayout = true
	}
	if sc := c.second.Owner(); sc != nil {
		sc.needsLayout = true
	}
}

// definition is the structural identity of a constraint: every field that
// determines its compiled form. Two constraints with equal definitions
// compile to the same linear relation.
type definition struct {
	first      Anchor
	second     Anchor
	relation   Relation
	offset     float64
	multiplier float64
	priority   Priority
	relative   Handle
}

// isVoid reports whether either anchor's container is gone.
func (c *Constraint) isVoid() bool {
	if c.first.IsVoid() {
		return true
	}
	return c.second != (Anchor{}) && c.second.IsVoid()
}

// origin returns the container the multiplier is applied relative to, or
// nil when no origin correction is needed.
func (c *Constraint) origin() *Container {
	if c.multiplier == 1 || c.second == (Anchor{}) || c.second.kind.IsDimension() {
		return nil
	}
	return commonAncestor(c.first.Owner(), c.second.Owner())
}

func (c *Constraint) definition() definition {
	d := definition{
		first:      c.first,
		second:     c.second,
		relation:   c.relation,
		offset:     c.offset,
		multiplier: c.multiplier,
		priority:   c.priority,
	}
	if o := c.origin(); o != nil {
		d.relative = o.handle
	}
	return d
}

// compile returns the solver form, or nil if an anchor is void.
func (c *Constraint) compile() *solver.Constraint {
	if c.compiled != nil {
		return c.compiled
	}
	if c.isVoid() {
		return nil
	}
	left := c.first.variable()
	var right, origin *solver.Variable
	if c.second != (Anchor{}) {
		right = c.second.variable()
	}
	if o := c.origin(); o != nil {
		if c.second.kind.Axis() == Horizontal {
			origin = o.vars.anchor(Left)
		} else {
			origin = o.vars.anchor(Top)
		}
	}
	c.compiled = c.relation.compile(left, right, origin, c.offset, c.multiplier, c.priority.Strength())
	return c.compiled
}

// String renders "a.width == b.width * 2 + 10 @750".
func (c *Constraint) String() string {
	s := fmt.Sprintf("%s %s ", c.first, c.relation)
	if c.second != (Anchor{}) {
		s += c.second.String()
		if c.multiplier != 1 {
			s += fmt.Sprintf(" * %g", c.multiplier)
		}
		if c.offset != 0 {
			s += fmt.Sprintf(" %+g", c.offset)
		}
	} else {
		s += fmt.Sprintf("%g", c.offset)
	}
	if c.priority != PriorityRequired {
		s += " @" + c.priority.String()
	}
	if !c.enabled {
		s += " (disabled)"
	}
	return s
}
