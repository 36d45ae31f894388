package layout

import (
	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// variables is the per-container variable set: one solver variable per
// anchor kind plus the intrinsic size and baseline height inputs.
//
// Definitional constraints are built lazily and kept until their
// parameters change, so consecutive passes hand the diff cache the same
// *solver.Constraint and nothing is resubmitted.
type variables struct {
	anchors        [numAnchorKinds]*solver.Variable
	intrinsic      [2]*solver.Variable
	baselineHeight *solver.Variable

	defs map[string]cachedDef
}

// defParams are the inputs a definitional constraint was built from.
type defParams struct {
	strength solver.Strength
}

type cachedDef struct {
	params defParams
	c      *solver.Constraint
}

func newVariables(name string) *variables {
	v := &variables{defs: make(map[string]cachedDef)}
	for k := range v.anchors {
		v.anchors[k] = solver.NewVariable(name + "." + AnchorKind(k).String())
	}
	v.intrinsic[Horizontal] = solver.NewVariable(name + ".intrinsicWidth")
	v.intrinsic[Vertical] = solver.NewVariable(name + ".intrinsicHeight")
	v.baselineHeight = solver.NewVariable(name + ".baselineHeight")
	return v
}

func (v *variables) anchor(k AnchorKind) *solver.Variable { return v.anchors[k] }

// all returns every variable of the set.
func (v *variables) all() []*solver.Variable {
	out := make([]*solver.Variable, 0, numAnchorKinds+3)
	out = append(out, v.anchors[:]...)
	return append(out, v.intrinsic[Horizontal], v.intrinsic[Vertical], v.baselineHeight)
}

// solvedFrame returns the absolute frame the solver produced.
func (v *variables) solvedFrame() Rect {
	return Rect{
		X:      v.anchors[Left].Value(),
		Y:      v.anchors[Top].Value(),
		Width:  v.anchors[Width].Value(),
		Height: v.anchors[Height].Value(),
	}
}

// def returns the cached constraint for name, rebuilding it when params
// differ from the ones it was built with.
func (v *variables) def(name string, p defParams, build func() *solver.Constraint) *solver.Constraint {
	if d, ok := v.defs[name]; ok && d.params == p {
		return d.c
	}
	c := build()
	v.defs[name] = cachedDef{params: p, c: c}
	return c
}

func expr(constant float64, terms ...solver.Term) solver.Expression {
	return solver.NewExpression(constant, terms...)
}

// contribute registers the definitional constraints and suggested edit
// values of one container for this pass. Untouched containers only keep
// their non-negative size.
func (v *variables) contribute(p *containerPass, touched bool, st *containerState) {
	a := &v.anchors
	required := defParams{strength: solver.Required}

	st.require("width>=0", v.def("width>=0", required, func() *solver.Constraint {
		return solver.NewConstraint(expr(0, solver.T(1, a[Width])), solver.GE, solver.Required)
	}))
	st.require("height>=0", v.def("height>=0", required, func() *solver.Constraint {
		return solver.NewConstraint(expr(0, solver.T(1, a[Height])), solver.GE, solver.Required)
	}))
	if !touched {
		return
	}
	c := p.c

	if p.refs.has(Right) {
		st.require("right==left+width", v.def("right==left+width", required, func() *solver.Constraint {
			return solver.NewConstraint(expr(0, solver.T(1, a[Right]), solver.T(-1, a[Left]), solver.T(-1, a[Width])), solver.EQ, solver.Required)
		}))
	}
	if p.refs.has(Bottom) {
		st.require("bottom==top+height", v.def("bottom==top+height", required, func() *solver.Constraint {
			return solver.NewConstraint(expr(0, solver.T(1, a[Bottom]), solver.T(-1, a[Top]), solver.T(-1, a[Height])), solver.EQ, solver.Required)
		}))
	}
	// Intrinsic participation on an axis implies that axis's center.
	if p.refs.has(CenterX) || c.participates(Horizontal) {
		st.require("centerX==left+width/2", v.def("centerX==left+width/2", required, func() *solver.Constraint {
			return solver.NewConstraint(expr(0, solver.T(1, a[CenterX]), solver.T(-1, a[Left]), solver.T(-0.5, a[Width])), solver.EQ, solver.Required)
		}))
	}
	if p.refs.has(CenterY) || c.participates(Vertical) {
		st.require("centerY==top+height/2", v.def("centerY==top+height/2", required, func() *solver.Constraint {
			return solver.NewConstraint(expr(0, solver.T(1, a[CenterY]), solver.T(-1, a[Top]), solver.T(-0.5, a[Height])), solver.EQ, solver.Required)
		}))
	}
	if p.refs.has(FirstBaseline) {
		v.contributeBaseline(p, st)
	}

	if c.participates(Horizontal) {
		v.contributeIntrinsic(st, Horizontal, c.intrinsic.Width, c.hugging[Horizontal], c.compression[Horizontal])
	}
	if c.participates(Vertical) {
		v.contributeIntrinsic(st, Vertical, c.intrinsic.Height, c.hugging[Vertical], c.compression[Vertical])
	}

	for i, k := range [...]AnchorKind{Left, Top, Width, Height} {
		if p.optOut&(1<<i) == 0 {
			continue
		}
		st.suggest(k.String(), a[k], p.suggested[i], p.suggestStrength[i])
	}
}

// contributeBaseline defines firstBaseline from the baseline height of the
// container or of its nearest baseline-bearing descendant, falling back to
// the bottom edge.
func (v *variables) contributeBaseline(p *containerPass, st *containerState) {
	a := &v.anchors
	required := defParams{strength: solver.Required}
	if p.baseline != nil {
		st.suggest("baselineHeight", v.baselineHeight, p.baselineHeight, intrinsicPriority.Strength())
		st.require("firstBaseline==top+baselineHeight", v.def("firstBaseline==top+baselineHeight", required, func() *solver.Constraint {
			return solver.NewConstraint(expr(0, solver.T(1, a[FirstBaseline]), solver.T(-1, a[Top]), solver.T(-1, v.baselineHeight)), solver.EQ, solver.Required)
		}))
		return
	}
	st.require("firstBaseline==top+height", v.def("firstBaseline==top+height", required, func() *solver.Constraint {
		return solver.NewConstraint(expr(0, solver.T(1, a[FirstBaseline]), solver.T(-1, a[Top]), solver.T(-1, a[Height])), solver.EQ, solver.Required)
	}))
}

// contributeIntrinsic ties a dimension to its intrinsic value: compression
// resistance pushes it up to at least the intrinsic size, hugging pulls it
// down to at most it. Equal priorities collapse into one equality.
func (v *variables) contributeIntrinsic(st *containerState, axis Axis, value float64, hug, comp Priority) {
	dim := v.anchors[Width]
	iv := v.intrinsic[axis]
	names := [3]string{"width==intrinsicWidth", "width>=intrinsicWidth", "width<=intrinsicWidth"}
	edit := "intrinsicWidth"
	if axis == Vertical {
		dim = v.anchors[Height]
		names = [3]string{"height==intrinsicHeight", "height>=intrinsicHeight", "height<=intrinsicHeight"}
		edit = "intrinsicHeight"
	}

	st.suggest(edit, iv, value, intrinsicPriority.Strength())
	tie := func(name string, op solver.Operator, p Priority) {
		s := p.Strength()
		st.require(name, v.def(name, defParams{strength: s}, func() *solver.Constraint {
			return solver.NewConstraint(expr(0, solver.T(1, dim), solver.T(-1, iv)), op, s)
		}))
	}
	if hug == comp {
		tie(names[0], solver.EQ, hug)
		return
	}
	if comp > 0 {
		tie(names[1], solver.GE, comp)
	}
	if hug > 0 {
		tie(names[2], solver.LE, hug)
	}
}
