package layout

import (
	"fmt"
	"slices"
)

// Container is a view or a layout guide: anything that owns a variable set
// and can be the target of anchors.
//
// Frames are parent-relative. Guides have frames too but cannot have
// children.
type Container struct {
	tree     *Tree
	handle   Handle
	name     string
	guide    bool
	parent   *Container
	children []*Container

	frame       Rect
	intrinsic   Size
	baseline    float64
	hasBaseline bool
	hugging     [2]Priority
	compression [2]Priority
	optOut      OptOut
	needsLayout bool

	// constraints are owned by this container; referencing holds every
	// constraint with an anchor on this container.
	constraints []*Constraint
	referencing []*Constraint

	vars *variables
}

// AddView creates a child view.
func (c *Container) AddView(name string, frame Rect) *Container {
	return c.addChild(name, frame, false)
}

// AddGuide creates a child layout guide. Guides take part in layout like
// views but cannot contain children.
func (c *Container) AddGuide(name string) *Container {
	return c.addChild(name, Rect{}, true)
}

func (c *Container) addChild(name string, frame Rect, guide bool) *Container {
	c.mustBeAlive()
	if c.guide {
		panic(fmt.Sprintf("layout: guide %q cannot have children", c.name))
	}
	child := c.tree.alloc(name, frame, guide, c)
	c.children = append(c.children, child)
	c.needsLayout = true
	return child
}

func (c *Container) mustBeAlive() {
	if c.tree == nil || c.tree.Lookup(c.handle) != c {
		panic(fmt.Sprintf("layout: container %q has been removed", c.name))
	}
}

// Tree returns the arena the container lives in.
func (c *Container) Tree() *Tree { return c.tree }

// Handle returns the container's slot handle.
func (c *Container) Handle() Handle { return c.handle }

// Name returns the diagnostic name.
func (c *Container) Name() string { return c.name }

// IsGuide reports whether c is a layout guide.
func (c *Container) IsGuide() bool { return c.guide }

// Parent returns the parent container, or nil for a root.
func (c *Container) Parent() *Container { return c.parent }

// Children returns a copy of the child list.
func (c *Container) Children() []*Container { return slices.Clone(c.children) }

// Depth returns the number of ancestors.
func (c *Container) Depth() int {
	d := 0
	for p := c.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsAncestorOf reports whether c is a strict ancestor of o.
func (c *Container) IsAncestorOf(o *Container) bool {
	for p := o.parent; p != nil; p = p.parent {
		if p == c {
			return true
		}
	}
	return false
}

// Frame returns the parent-relative frame.
func (c *Container) Frame() Rect { return c.frame }

// SetFrame replaces the frame and marks the container for layout.
func (c *Container) SetFrame(r Rect) {
	c.frame = r
	c.needsLayout = true
}

// IntrinsicSize returns the natural content size. ok is false when neither
// axis has an intrinsic metric.
func (c *Container) IntrinsicSize() (s Size, ok bool) {
	return c.intrinsic, c.intrinsic.Width >= 0 || c.intrinsic.Height >= 0
}

// SetIntrinsicSize sets the natural content size. Use NoIntrinsicMetric for
// an axis without one.
func (c *Container) SetIntrinsicSize(s Size) {
	c.intrinsic = s
	c.needsLayout = true
}

// Baseline returns the distance from the top to the first baseline, if the
// container bears one.
func (c *Container) Baseline() (float64, bool) { return c.baseline, c.hasBaseline }

// SetBaseline makes the container baseline-bearing.
func (c *Container) SetBaseline(height float64) {
	c.baseline, c.hasBaseline = height, true
	c.needsLayout = true
}

// ClearBaseline removes the container's baseline.
func (c *Container) ClearBaseline() {
	c.baseline, c.hasBaseline = 0, false
	c.needsLayout = true
}

// Hugging returns the content hugging priority for an axis.
func (c *Container) Hugging(a Axis) Priority { return c.hugging[a] }

// SetHugging sets the content hugging priority. Zero disables hugging.
func (c *Container) SetHugging(a Axis, p Priority) {
	c.hugging[a] = p
	c.needsLayout = true
}

// Compression returns the compression resistance priority for an axis.
func (c *Container) Compression(a Axis) Priority { return c.compression[a] }

// SetCompression sets the compression resistance priority. Zero disables
// compression resistance.
func (c *Container) SetCompression(a Axis, p Priority) {
	c.compression[a] = p
	c.needsLayout = true
}

// participates reports whether the intrinsic size constrains the axis: it
// has an intrinsic metric and a hugging or compression priority.
func (c *Container) participates(a Axis) bool {
	value := c.intrinsic.Width
	if a == Vertical {
		value = c.intrinsic.Height
	}
	return value >= 0 && (c.hugging[a] > 0 || c.compression[a] > 0)
}

// OptOut returns the mask of frame components exempt from constraint
// driven layout.
func (c *Container) OptOut() OptOut { return c.optOut }

// SetOptOut replaces the opt-out mask.
func (c *Container) SetOptOut(m OptOut) {
	c.optOut = m
	c.needsLayout = true
}

// NeedsLayout reports whether c changed since the last successful pass.
func (c *Container) NeedsLayout() bool { return c.needsLayout }

// SetNeedsLayout marks c for the next LayoutIfNeeded.
func (c *Container) SetNeedsLayout() { c.needsLayout = true }

// SubtreeNeedsLayout reports whether c or any descendant needs layout.
func (c *Container) SubtreeNeedsLayout() bool {
	dirty := false
	walk(c, func(x *Container) bool {
		dirty = dirty || x.needsLayout
		return !dirty
	})
	return dirty
}

// Anchor returns the anchor of the given kind.
func (c *Container) Anchor(k AnchorKind) Anchor {
	return Anchor{tree: c.tree, handle: c.handle, kind: k}
}

func (c *Container) Width() Anchor         { return c.Anchor(Width) }
func (c *Container) Height() Anchor        { return c.Anchor(Height) }
func (c *Container) Left() Anchor          { return c.Anchor(Left) }
func (c *Container) Top() Anchor           { return c.Anchor(Top) }
func (c *Container) Right() Anchor         { return c.Anchor(Right) }
func (c *Container) Bottom() Anchor        { return c.Anchor(Bottom) }
func (c *Container) CenterX() Anchor       { return c.Anchor(CenterX) }
func (c *Container) CenterY() Anchor       { return c.Anchor(CenterY) }
func (c *Container) FirstBaseline() Anchor { return c.Anchor(FirstBaseline) }

// Constraints returns the constraints owned by c, enabled or not.
func (c *Container) Constraints() []*Constraint { return slices.Clone(c.constraints) }

// EnabledConstraints returns the enabled constraints owned by c.
func (c *Container) EnabledConstraints() []*Constraint {
	out := make([]*Constraint, 0, len(c.constraints))
	for _, k := range c.constraints {
		if k.enabled {
			out = append(out, k)
		}
	}
	return out
}

// HasConstraintReferencing reports whether an enabled constraint anywhere
// in the tree binds the given anchor of c.
func (c *Container) HasConstraintReferencing(k AnchorKind) bool {
	a := c.Anchor(k)
	for _, x := range c.referencing {
		if x.enabled && (x.first == a || x.second == a) {
			return true
		}
	}
	return false
}

// UpdateConstraint changes the offset of the owned constraint binding
// first and second with relation r. second may be the zero Anchor for a
// bound. It panics if no such constraint exists.
func (c *Container) UpdateConstraint(first Anchor, r Relation, second Anchor, offset float64) {
	for _, k := range c.constraints {
		if k.first == first && k.relation == r && k.second == second {
			k.SetOffset(offset)
			return
		}
	}
	panic(fmt.Sprintf("layout: %s has no constraint %s %s %s", c.name, first, r, second))
}

// String implements fmt.Stringer.
func (c *Container) String() string {
	kind := "view"
	if c.guide {
		kind = "guide"
	}
	return fmt.Sprintf("%s %s %s", kind, c.name, c.frame)
}

func (c *Container) detach(k *Constraint) {
	c.constraints = slices.DeleteFunc(c.constraints, func(x *Constraint) bool { return x == k })
	c.referencing = slices.DeleteFunc(c.referencing, func(x *Constraint) bool { return x == k })
	c.needsLayout = true
}
