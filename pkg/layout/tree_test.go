package layout

import (
	"strings"
	"testing"
)

func TestTreeHandles(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 100, 100))
	a := root.AddView("a", Rect{})
	h := a.Handle()

	if got := tree.Lookup(h); got != a {
		t.Fatalf("Lookup() = %v, want %v", got, a)
	}
	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}

	tree.Remove(a)
	if got := tree.Lookup(h); got != nil {
		t.Errorf("Lookup(stale) = %v, want nil", got)
	}
	if !a.Left().IsVoid() {
		t.Error("anchor of removed container is not void")
	}

	b := root.AddView("b", Rect{})
	if b.Handle() == h {
		t.Errorf("reused slot kept generation: %v", b.Handle())
	}
	if b.Handle().index != h.index {
		t.Errorf("slot not reused: got index %d, want %d", b.Handle().index, h.index)
	}
	if got := tree.Lookup(h); got != nil {
		t.Errorf("Lookup(stale) after reuse = %v, want nil", got)
	}
	if !(Handle{}).IsZero() || tree.Lookup(Handle{}) != nil {
		t.Error("zero handle resolved")
	}
}

func TestTreeRemoveSubtree(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 100, 100))
	a := root.AddView("a", Rect{})
	b := a.AddView("b", Rect{})
	c := root.AddView("c", Rect{})

	inner := Constrain(b.Left(), Equal, a.Left())
	outer := Constrain(c.Left(), Equal, b.Right())

	tree.Remove(a)

	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}
	if inner.Owner() != nil {
		t.Error("constraint owned by removed container was not destroyed")
	}
	if outer.Owner() != root {
		t.Errorf("outer.Owner() = %v, want root", outer.Owner())
	}
	if !outer.isVoid() {
		t.Error("constraint referencing removed container is not void")
	}
	if len(root.Children()) != 1 || root.Children()[0] != c {
		t.Errorf("Children() = %v, want [c]", root.Children())
	}
}

func TestWalkPreorder(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", Rect{})
	a := root.AddView("a", Rect{})
	a.AddView("a1", Rect{})
	a.AddGuide("a2")
	root.AddView("b", Rect{})

	var names []string
	tree.Walk(root, func(c *Container) bool {
		names = append(names, c.Name())
		return true
	})
	if got, want := strings.Join(names, ","), "root,a,a1,a2,b"; got != want {
		t.Errorf("Walk order = %s, want %s", got, want)
	}
}

func TestCommonAncestor(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", Rect{})
	a := root.AddView("a", Rect{})
	a1 := a.AddView("a1", Rect{})
	b := root.AddView("b", Rect{})
	other := tree.NewRoot("other", Rect{})

	tests := []struct {
		name string
		x, y *Container
		want *Container
	}{
		{"siblings", a, b, root},
		{"cousin", a1, b, root},
		{"ancestor", a, a1, a},
		{"self", a1, a1, a1},
		{"disjoint", a1, other, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commonAncestor(tt.x, tt.y); got != tt.want {
				t.Errorf("commonAncestor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGuideCannotHaveChildren(t *testing.T) {
	tree := NewTree()
	g := tree.NewRoot("root", Rect{}).AddGuide("g")
	defer func() {
		if recover() == nil {
			t.Error("AddView on a guide did not panic")
		}
	}()
	g.AddView("x", Rect{})
}
