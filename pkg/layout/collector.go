package layout

import (
	set "github.com/hashicorp/go-set/v3"

	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// containerPass is what one pass knows about one container.
type containerPass struct {
	c *Container

	// refs are the anchors something in this pass constrains.
	refs anchorMask

	// optOut is the effective opt-out mask; suggested holds the values
	// (left, top, width, height) suggested for the opted-out components.
	optOut          OptOut
	suggested       [4]float64
	suggestStrength [4]solver.Strength

	// baseline is the container whose baseline defines firstBaseline:
	// c itself, its nearest baseline-bearing descendant, or nil.
	// baselineHeight is that baseline measured from c's top.
	baseline       *Container
	baselineHeight float64
}

// pass is the result of collecting a subtree.
type pass struct {
	root      *Container
	order     []*Container
	states    map[Handle]*containerPass
	users     []*Constraint
	// touched holds the containers that take part in the solve and are
	// read back.
	touched   *set.Set[Handle]
	void      []*Constraint
	parentAbs [2]float64
}

// fitting replaces the root's size suggestions for a size-fitting pass.
type fitting struct {
	target Size
	h, v   Priority
}

// collect walks root's subtree once, gathering every container and every
// enabled constraint owned inside it, and decides per container which
// anchors are referenced.
func collect(root *Container, fit *fitting) *pass {
	p := &pass{
		root:   root,
		states: make(map[Handle]*containerPass),
	}
	for a := root.parent; a != nil; a = a.parent {
		p.parentAbs[0] += a.frame.X
		p.parentAbs[1] += a.frame.Y
	}

	walk(root, func(c *Container) bool {
		p.order = append(p.order, c)
		return true
	})
	abs := make(map[Handle][2]float64, len(p.order))
	for _, c := range p.order {
		origin := p.parentAbs
		if c != root {
			origin = abs[c.parent.handle]
		}
		x, y := origin[0]+c.frame.X, origin[1]+c.frame.Y
		abs[c.handle] = [2]float64{x, y}

		cp := &containerPass{c: c, optOut: c.optOut}
		cp.suggested = [4]float64{x, y, c.frame.Width, c.frame.Height}
		for i := range cp.suggestStrength {
			cp.suggestStrength[i] = solver.Strong
		}
		p.states[c.handle] = cp
	}
	p.states[root.handle].optOut = OptOutAll
	if fit != nil {
		fitRoot(p.states[root.handle], fit)
	}

	for _, c := range p.order {
		for _, k := range c.constraints {
			if !k.enabled {
				continue
			}
			if k.isVoid() {
				p.void = append(p.void, k)
				continue
			}
			p.users = append(p.users, k)
			p.reference(k.first)
			if k.second != (Anchor{}) {
				p.reference(k.second)
			}
			if o := k.origin(); o != nil {
				if k.second.kind.Axis() == Horizontal {
					p.reference(o.Left())
				} else {
					p.reference(o.Top())
				}
			}
		}
	}

	for _, c := range p.order {
		cp := p.states[c.handle]
		if !cp.refs.has(FirstBaseline) {
			continue
		}
		if c.hasBaseline {
			cp.baseline, cp.baselineHeight = c, c.baseline
			continue
		}
		cp.baseline, cp.baselineHeight = baselineDescendant(c)
	}

	p.touched = set.New[Handle](len(p.order))
	for _, c := range p.order {
		cp := p.states[c.handle]
		_, intrinsic := c.IntrinsicSize()
		if cp.refs != 0 || cp.optOut != 0 || intrinsic {
			p.touched.Insert(c.handle)
		}
	}
	return p
}

func fitRoot(cp *containerPass, fit *fitting) {
	cp.optOut = OptOutOrigin
	for i, pr := range [2]Priority{fit.h, fit.v} {
		if pr <= 0 {
			continue
		}
		if pr.IsRequired() {
			pr = intrinsicPriority
		}
		cp.optOut |= OptOutWidth << i
		cp.suggestStrength[2+i] = pr.Strength()
	}
	cp.suggested[2] = fit.target.Width
	cp.suggested[3] = fit.target.Height
}

// reference marks an anchor as used by this pass. Anchors outside the
// collected subtree are ignored.
func (p *pass) reference(a Anchor) {
	if cp, ok := p.states[a.handle]; ok {
		cp.refs.add(a.kind)
	}
}

// baselineDescendant returns the first baseline-bearing descendant of c in
// preorder and its baseline measured from c's top, using the descendants'
// current frames. The descendant itself is not drawn into the solve.
func baselineDescendant(c *Container) (*Container, float64) {
	var found *Container
	for _, child := range c.children {
		walk(child, func(x *Container) bool {
			if found != nil {
				return false
			}
			if x.hasBaseline {
				found = x
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	if found == nil {
		return nil, 0
	}
	h := found.baseline
	for x := found; x != c; x = x.parent {
		h += x.frame.Y
	}
	return found, h
}

// isTouched reports whether c takes part in the solve.
func (p *pass) isTouched(c *Container) bool { return p.touched.Contains(c.handle) }

// touchedOrder returns the containers read back after the solve, in
// preorder.
func (p *pass) touchedOrder() []*Container {
	out := make([]*Container, 0, p.touched.Size())
	for _, c := range p.order {
		if p.isTouched(c) {
			out = append(out, c)
		}
	}
	return out
}
