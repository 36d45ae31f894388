package layout

import (
	"fmt"
	"slices"
)

// Handle is a generation-checked reference to a container slot. A handle
// outlives its container: once the container is removed the slot's
// generation moves on and the handle resolves to nothing.
//
// The zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

// String implements fmt.Stringer.
func (h Handle) String() string { return fmt.Sprintf("#%d@%d", h.index, h.gen) }

type slot struct {
	gen uint32
	c   *Container
}

// Tree is an arena of containers. Containers are addressed by Handle so
// that anchors and caches can refer to them without keeping them alive.
//
// A Tree may hold several disjoint hierarchies. It is not safe for
// concurrent use; layout passes over one tree must be serialized.
type Tree struct {
	slots []slot
	free  []uint32
	live  int
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of live containers.
func (t *Tree) Len() int { return t.live }

// NewRoot creates a parentless view. Its frame is in the coordinate space
// the solver works in.
func (t *Tree) NewRoot(name string, frame Rect) *Container {
	return t.alloc(name, frame, false, nil)
}

// Lookup resolves a handle. It returns nil for stale or zero handles.
func (t *Tree) Lookup(h Handle) *Container {
	if h.gen == 0 || int(h.index) >= len(t.slots) {
		return nil
	}
	s := t.slots[h.index]
	if s.gen != h.gen {
		return nil
	}
	return s.c
}

// Remove destroys c and its subtree. Constraints owned by removed
// containers are destroyed with them. Constraints owned elsewhere that
// reference a removed container become void and are skipped by later
// passes.
func (t *Tree) Remove(c *Container) {
	if c == nil || t.Lookup(c.handle) != c {
		return
	}
	if p := c.parent; p != nil {
		p.children = slices.DeleteFunc(p.children, func(x *Container) bool { return x == c })
		p.needsLayout = true
	}
	c.parent = nil

	var doomed []*Container
	walk(c, func(x *Container) bool {
		doomed = append(doomed, x)
		return true
	})
	for _, x := range doomed {
		for _, k := range slices.Clone(x.constraints) {
			k.Destroy()
		}
	}
	for _, x := range doomed {
		for _, k := range x.referencing {
			if o := k.owner; o != nil && t.Lookup(o.handle) == o {
				o.needsLayout = true
			}
		}
		s := &t.slots[x.handle.index]
		s.c = nil
		s.gen++
		if s.gen == 0 {
			s.gen = 1
		}
		t.free = append(t.free, x.handle.index)
		t.live--
		x.children = nil
		x.referencing = nil
	}
}

func (t *Tree) alloc(name string, frame Rect, guide bool, parent *Container) *Container {
	c := &Container{
		tree:        t,
		name:        name,
		guide:       guide,
		parent:      parent,
		frame:       frame,
		intrinsic:   Size{Width: NoIntrinsicMetric, Height: NoIntrinsicMetric},
		hugging:     [2]Priority{DefaultHugging, DefaultHugging},
		compression: [2]Priority{DefaultCompression, DefaultCompression},
		needsLayout: true,
	}
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[idx].c = c
		c.handle = Handle{index: idx, gen: t.slots[idx].gen}
	} else {
		t.slots = append(t.slots, slot{gen: 1, c: c})
		c.handle = Handle{index: uint32(len(t.slots) - 1), gen: 1}
	}
	c.vars = newVariables(name)
	t.live++
	return c
}

// Walk visits root and its descendants in preorder. Returning false from
// fn skips the children of the visited container.
func (t *Tree) Walk(root *Container, fn func(*Container) bool) {
	if root == nil || t.Lookup(root.handle) != root {
		return
	}
	walk(root, fn)
}

func walk(c *Container, fn func(*Container) bool) {
	if !fn(c) {
		return
	}
	for _, child := range c.children {
		walk(child, fn)
	}
}

// commonAncestor returns the nearest container that is an ancestor of (or
// equal to) both a and b, or nil if they are in disjoint hierarchies.
func commonAncestor(a, b *Container) *Container {
	if a == nil || b == nil || a.tree != b.tree {
		return nil
	}
	da, db := a.Depth(), b.Depth()
	for da > db {
		a = a.parent
		da--
	}
	for db > da {
		b = b.parent
		db--
	}
	for a != b {
		a, b = a.parent, b.parent
	}
	return a
}
