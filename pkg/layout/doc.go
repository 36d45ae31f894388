// Package layout compiles a tree of views and anchor constraints into
// linear constraints, diffs them against the previous layout pass and
// submits only the difference to an incremental solver.
//
// # Views and anchors
//
// A [Tree] is an arena of containers (views and layout guides). Each
// container exposes nine anchors: width, height, left, top, right, bottom,
// centerX, centerY and firstBaseline. Constraints bind anchors:
//
//	tree := layout.NewTree()
//	root := tree.NewRoot("root", layout.R(0, 0, 220, 100))
//	a := root.AddView("a", layout.Rect{})
//	b := root.AddView("b", layout.Rect{})
//
//	layout.Constrain(a.Left(), layout.Equal, root.Left(), layout.WithOffset(10))
//	layout.Constrain(a.Right(), layout.Equal, b.Left())
//	layout.Constrain(b.Right(), layout.Equal, root.Right(), layout.WithOffset(-10))
//	layout.Constrain(a.Width(), layout.Equal, b.Width())
//
// A constraint is owned by the nearest common ancestor of its containers.
// Anchors refer to containers by generation-checked [Handle], so a removed
// container turns its anchors void and constraints that still mention it
// are skipped.
//
// # Passes
//
// [Engine.Solve] runs one pass:
//
//  1. collect: walk the subtree, gather enabled constraints and work out
//     which anchors are referenced
//  2. derive: every container contributes named definitional constraints
//     (right == left + width, intrinsic size, baseline) and edit values
//  3. diff: compare against the previous pass stored in the [Cache]
//  4. apply: submit removals, then additions, then suggestions, as one
//     solver transaction
//  5. read back: copy solved frames into touched containers
//
// Keep one Cache per hierarchy and pass it to every Solve; a second pass
// over an unchanged tree submits nothing. A Cache must not be used by two
// passes at once.
//
// # Errors
//
// Misuse of the API (constraints across disjoint hierarchies, updating a
// constraint that does not exist, using a removed container) panics.
// Conflicting required constraints are not a panic: Solve logs the
// conflict, leaves every frame and the cache as they were, and returns an
// error with code UNSATISFIABLE.
package layout
