package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Options configures diagram generation.
type Options struct {
	// Constraints draws user constraints in addition to the hierarchy.
	Constraints bool

	// Frames adds each container's frame to its label.
	Frames bool
}

// ToDOT converts root's subtree to Graphviz DOT source.
func ToDOT(root *layout.Container, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var nodes []*layout.Container
	root.Tree().Walk(root, func(c *layout.Container) bool {
		nodes = append(nodes, c)
		return true
	})

	for _, c := range nodes {
		label := fmtLabel(c, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(c), strings.Join(fmtAttrs(c, label), ", "))
	}

	buf.WriteString("\n")
	for _, c := range nodes {
		if c == root {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(c.Parent()), nodeID(c))
	}

	if opts.Constraints {
		buf.WriteString("\n")
		for _, c := range nodes {
			for _, k := range c.Constraints() {
				second, ok := k.Second()
				if !ok || k.First().IsVoid() || second.IsVoid() {
					continue
				}
				attrs := []string{
					fmt.Sprintf("label=%q", relationLabel(k)),
					"style=dashed",
					"constraint=false",
					"fontsize=10",
				}
				if !k.Enabled() {
					attrs = append(attrs, "color=grey", "fontcolor=grey")
				}
				fmt.Fprintf(&buf, "  %q -> %q [%s];\n",
					nodeID(k.First().Owner()), nodeID(second.Owner()), strings.Join(attrs, ", "))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(c *layout.Container) string {
	return c.Name() + c.Handle().String()
}

func fmtLabel(c *layout.Container, opts Options) string {
	lines := []string{c.Name()}
	if opts.Frames {
		lines = append(lines, c.Frame().String())
	}
	if opts.Constraints {
		for _, k := range c.Constraints() {
			if _, ok := k.Second(); ok || k.First().Owner() != c {
				continue
			}
			lines = append(lines, relationLabel(k))
		}
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(c *layout.Container, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if c.IsGuide() {
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=grey30")
	}
	return attrs
}

// relationLabel renders a constraint by anchor kinds only, since the edge
// already names the containers.
func relationLabel(k *layout.Constraint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", k.First().Kind(), k.Relation())
	if second, ok := k.Second(); ok {
		fmt.Fprintf(&b, " %s", second.Kind())
		if m := k.Multiplier(); m != 1 {
			fmt.Fprintf(&b, " * %s", strconv.FormatFloat(m, 'g', -1, 64))
		}
		if off := k.Offset(); off != 0 {
			fmt.Fprintf(&b, " %+g", off)
		}
	} else {
		fmt.Fprintf(&b, " %s", strconv.FormatFloat(k.Offset(), 'g', -1, 64))
	}
	if !k.Priority().IsRequired() {
		fmt.Fprintf(&b, " @%s", k.Priority())
	}
	return b.String()
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
