package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// AnchorKind identifies one of the nine geometric attributes of a container.
type AnchorKind uint8

const (
	Width AnchorKind = iota
	Height
	Left
	Top
	Right
	Bottom
	CenterX
	CenterY
	FirstBaseline

	numAnchorKinds = int(FirstBaseline) + 1
)

var anchorKindNames = [numAnchorKinds]string{
	"width", "height", "left", "top", "right", "bottom", "centerX", "centerY", "firstBaseline",
}

// String implements fmt.Stringer.
func (k AnchorKind) String() string {
	if int(k) < numAnchorKinds {
		return anchorKindNames[k]
	}
	return fmt.Sprintf("AnchorKind(%d)", k)
}

// ParseAnchorKind parses an anchor kind name. Matching is case-insensitive
// and accepts "baseline" for FirstBaseline.
func ParseAnchorKind(s string) (AnchorKind, error) {
	if strings.EqualFold(s, "baseline") {
		return FirstBaseline, nil
	}
	for i, name := range anchorKindNames {
		if strings.EqualFold(s, name) {
			return AnchorKind(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidAnchor, "unknown anchor kind: %q", s)
}

// Axis returns the axis the anchor measures along.
func (k AnchorKind) Axis() Axis {
	switch k {
	case Width, Left, Right, CenterX:
		return Horizontal
	}
	return Vertical
}

// IsDimension reports whether the anchor is a size rather than a position.
func (k AnchorKind) IsDimension() bool { return k == Width || k == Height }

// anchorMask is a set of anchor kinds.
type anchorMask uint16

func (m anchorMask) has(k AnchorKind) bool { return m&(1<<k) != 0 }

func (m *anchorMask) add(k AnchorKind) { *m |= 1 << k }

// Anchor identifies one attribute of one container. It holds a handle, not
// a pointer, so anchors never keep containers alive. An anchor whose owner
// has been removed from its tree is void.
//
// Anchors are comparable: two anchors are equal iff they name the same
// container slot generation and the same kind.
type Anchor struct {
	tree   *Tree
	handle Handle
	kind   AnchorKind
}

// Kind returns the anchor's attribute.
func (a Anchor) Kind() AnchorKind { return a.kind }

// Handle returns the owner's handle.
func (a Anchor) Handle() Handle { return a.handle }

// Owner returns the owning container, or nil if the anchor is void.
func (a Anchor) Owner() *Container {
	if a.tree == nil {
		return nil
	}
	return a.tree.Lookup(a.handle)
}

// IsVoid reports whether the owner no longer exists.
func (a Anchor) IsVoid() bool { return a.Owner() == nil }

// variable returns the solver variable backing the anchor, or nil if the
// anchor is void.
func (a Anchor) variable() *solver.Variable {
	c := a.Owner()
	if c == nil {
		return nil
	}
	return c.vars.anchor(a.kind)
}

// String renders the anchor as "name.kind".
func (a Anchor) String() string {
	c := a.Owner()
	if c == nil {
		return fmt.Sprintf("<void %s>.%s", a.handle, a.kind)
	}
	return c.name + "." + a.kind.String()
}
