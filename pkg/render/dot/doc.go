// Package dot renders view hierarchies and their constraints as Graphviz
// diagrams.
//
// # Usage
//
//	src := dot.ToDOT(root, dot.Options{Constraints: true, Frames: true})
//	svg, err := dot.RenderSVG(src)
//
// Containers become boxes (layout guides are dashed) connected top-down by
// solid hierarchy edges. With Options.Constraints, every enabled user
// constraint between two containers is drawn as a dashed edge labelled with
// its relation, disabled ones in grey, and constant bounds are listed in the
// label of the constrained container.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package dot
