package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

const requiredDefault = layout.PriorityRequired

// Built is a document materialized into a view tree.
type Built struct {
	Tree        *layout.Tree
	Root        *layout.Container
	Views       map[string]*layout.Container
	Constraints []*layout.Constraint
}

// View returns the container named name.
func (b *Built) View(name string) (*layout.Container, bool) {
	c, ok := b.Views[name]
	return c, ok
}

// ResizeRoot changes the root frame size. Non-positive values keep the
// current component.
func (b *Built) ResizeRoot(width, height float64) {
	f := b.Root.Frame()
	if width > 0 {
		f.Width = width
	}
	if height > 0 {
		f.Height = height
	}
	if f != b.Root.Frame() {
		b.Root.SetFrame(f)
	}
}

// Build validates doc and creates its view tree and constraints.
func Build(doc *Document) (*Built, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "empty document")
	}
	frame, err := rect(doc.Root.Name, doc.Root.Frame)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateViewName(doc.Root.Name); err != nil {
		return nil, err
	}
	if doc.Root.Guide {
		return nil, invalid("root %q cannot be a guide", doc.Root.Name)
	}

	tree := layout.NewTree()
	b := &Built{
		Tree:  tree,
		Root:  tree.NewRoot(doc.Root.Name, frame),
		Views: make(map[string]*layout.Container),
	}
	b.Views[doc.Root.Name] = b.Root
	if err := configure(b.Root, doc.Root); err != nil {
		return nil, err
	}
	if err := b.addChildren(b.Root, doc.Root.Children); err != nil {
		return nil, err
	}
	for i, spec := range doc.Constraints {
		k, err := b.constrain(spec)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "constraint %d", i)
		}
		b.Constraints = append(b.Constraints, k)
	}
	return b, nil
}

func (b *Built) addChildren(parent *layout.Container, views []View) error {
	if parent.IsGuide() && len(views) > 0 {
		return invalid("guide %q cannot have children", parent.Name())
	}
	for _, v := range views {
		if err := errors.ValidateViewName(v.Name); err != nil {
			return err
		}
		if _, dup := b.Views[v.Name]; dup {
			return invalid("duplicate view name %q", v.Name)
		}
		var c *layout.Container
		if v.Guide {
			c = parent.AddGuide(v.Name)
		} else {
			frame, err := rect(v.Name, v.Frame)
			if err != nil {
				return err
			}
			c = parent.AddView(v.Name, frame)
		}
		b.Views[v.Name] = c
		if err := configure(c, v); err != nil {
			return err
		}
		if err := b.addChildren(c, v.Children); err != nil {
			return err
		}
	}
	return nil
}

func configure(c *layout.Container, v View) error {
	switch len(v.Intrinsic) {
	case 0:
	case 2:
		c.SetIntrinsicSize(layout.Size{Width: v.Intrinsic[0], Height: v.Intrinsic[1]})
	default:
		return invalid("view %q: intrinsic needs [width, height]", v.Name)
	}
	if v.Baseline != nil {
		c.SetBaseline(*v.Baseline)
	}
	for _, pair := range []struct {
		field string
		vals  []any
		set   func(layout.Axis, layout.Priority)
	}{
		{"hugging", v.Hugging, c.SetHugging},
		{"compression", v.Compression, c.SetCompression},
	} {
		if len(pair.vals) == 0 {
			continue
		}
		if len(pair.vals) != 2 {
			return invalid("view %q: %s needs [horizontal, vertical]", v.Name, pair.field)
		}
		for axis, raw := range pair.vals {
			p, err := priorityOf(raw, 0)
			if err != nil {
				return invalid("view %q: %s: %v", v.Name, pair.field, err)
			}
			pair.set(layout.Axis(axis), p)
		}
	}
	if len(v.OptOut) > 0 {
		var mask layout.OptOut
		for _, s := range v.OptOut {
			bit, ok := optOutNames[strings.ToLower(s)]
			if !ok {
				return invalid("view %q: unknown opt_out %q", v.Name, s)
			}
			mask |= bit
		}
		c.SetOptOut(mask)
	}
	return nil
}

var optOutNames = map[string]layout.OptOut{
	"left":   layout.OptOutLeft,
	"top":    layout.OptOutTop,
	"width":  layout.OptOutWidth,
	"height": layout.OptOutHeight,
	"origin": layout.OptOutOrigin,
	"size":   layout.OptOutSize,
	"all":    layout.OptOutAll,
}

func (b *Built) constrain(spec Constraint) (*layout.Constraint, error) {
	first, err := b.anchor(spec.First)
	if err != nil {
		return nil, fmt.Errorf("first: %w", err)
	}
	rel, err := layout.ParseRelation(spec.Relation)
	if err != nil {
		return nil, err
	}
	p, err := priorityOf(spec.Priority, requiredDefault)
	if err != nil {
		return nil, err
	}
	opts := []layout.Option{layout.WithPriority(p)}
	if spec.Multiplier != nil {
		opts = append(opts, layout.WithMultiplier(*spec.Multiplier))
	}
	if spec.Enabled != nil && !*spec.Enabled {
		opts = append(opts, layout.Disabled())
	}

	var k *layout.Constraint
	if spec.Second == "" {
		if spec.Multiplier != nil {
			return nil, fmt.Errorf("multiplier requires a second anchor")
		}
		k = layout.Bound(first, rel, spec.Offset, opts...)
	} else {
		second, err := b.anchor(spec.Second)
		if err != nil {
			return nil, fmt.Errorf("second: %w", err)
		}
		if first.Kind().IsDimension() != second.Kind().IsDimension() && !second.Kind().IsDimension() {
			return nil, fmt.Errorf("cannot relate dimension %s to position %s", first, second)
		}
		opts = append(opts, layout.WithOffset(spec.Offset))
		k = layout.Constrain(first, rel, second, opts...)
	}
	if owner := k.Owner().Name(); spec.Owner != "" && spec.Owner != owner {
		k.Destroy()
		return nil, fmt.Errorf("owner %q is not the common ancestor %q", spec.Owner, owner)
	}
	return k, nil
}

// anchor resolves a "view.kind" reference.
func (b *Built) anchor(ref string) (layout.Anchor, error) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return layout.Anchor{}, fmt.Errorf("malformed anchor reference %q", ref)
	}
	c, ok := b.Views[ref[:i]]
	if !ok {
		return layout.Anchor{}, fmt.Errorf("unknown view %q", ref[:i])
	}
	kind, err := layout.ParseAnchorKind(ref[i+1:])
	if err != nil {
		return layout.Anchor{}, err
	}
	return c.Anchor(kind), nil
}

func rect(name string, vals []float64) (layout.Rect, error) {
	switch len(vals) {
	case 0:
		return layout.Rect{}, nil
	case 4:
		return layout.R(vals[0], vals[1], vals[2], vals[3]), nil
	}
	return layout.Rect{}, invalid("view %q: frame needs [x, y, width, height]", name)
}

// priorityOf accepts the numeric types produced by the three decoders and
// tier names.
func priorityOf(v any, def layout.Priority) (layout.Priority, error) {
	switch p := v.(type) {
	case nil:
		return def, nil
	case float64:
		return checked(p)
	case int:
		return checked(float64(p))
	case int64:
		return checked(float64(p))
	case uint64:
		return checked(float64(p))
	case string:
		return layout.ParsePriority(p)
	}
	return 0, fmt.Errorf("invalid priority %v", v)
}

func checked(f float64) (layout.Priority, error) {
	if f < 0 {
		return 0, fmt.Errorf("invalid priority %s", strconv.FormatFloat(f, 'g', -1, 64))
	}
	return layout.Priority(f), nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidDocument, format, args...)
}
