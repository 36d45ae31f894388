// Package pkg provides the libraries behind anchorlayout.
//
// # Overview
//
// Anchorlayout positions a tree of rectangular views from linear anchor
// constraints ("label.left == card.left + 16"). A layout pass compiles the
// hierarchy into a Cassowary constraint system, diffs it against the system
// submitted by the previous pass, applies only the difference to a
// long-lived solver and writes the solved frames back.
//
// The pkg directory is organized into four areas:
//
//  1. [layout] and [solver] - the layout engine and its incremental solver
//  2. [document] - the JSON, TOML and YAML schema that describes a layout
//  3. [pipeline] - solve, fit and graph operations with result caching
//  4. [server], [session], [cache], [store] - the HTTP service and its backends
//
// # Architecture
//
// The typical data flow:
//
//	Document (JSON/TOML/YAML)
//	         ↓
//	    [document] package (decode, build containers and constraints)
//	         ↓
//	    [layout] package (collect, diff, apply, solve, read back)
//	         ↓
//	    frames, fitted sizes, DOT/SVG graphs
//
// # Quick Start
//
//	doc, _ := document.Load("card.yaml")
//	b, _ := document.Build(doc)
//
//	engine := layout.NewEngine(nil)
//	cache := layout.NewCache()
//	if _, err := engine.Solve(b.Root, cache); err != nil {
//	    return err
//	}
//
//	// Resizing and solving again submits only what changed.
//	b.ResizeRoot(480, 0)
//	rep, _ := engine.Solve(b.Root, cache)
//	fmt.Println(rep.Describe())
//
// # Supporting Packages
//
// [errors] carries coded errors mapped to HTTP statuses. [observability]
// holds the hook registries that [observability/metrics] fills with
// Prometheus collectors. [render/dot] draws hierarchies and constraints
// with Graphviz. [config] reads the TOML configuration.
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/layout
// [solver]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/solver
// [document]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/document
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/server
// [session]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/store
// [errors]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/observability
// [observability/metrics]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/observability/metrics
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/render/dot
// [config]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/config
package pkg
