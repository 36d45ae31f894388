package layout

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

func testEngine(opts ...EngineOption) *Engine {
	return NewEngine(log.New(io.Discard), opts...)
}

func mustSolve(t *testing.T, e *Engine, root *Container, cache *Cache) Report {
	t.Helper()
	rep, err := e.Solve(root, cache)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	return rep
}

func assertFrame(t *testing.T, c *Container, want Rect) {
	t.Helper()
	if diff := cmp.Diff(want, c.Frame(), approx); diff != "" {
		t.Errorf("%s frame mismatch (-want +got):\n%s", c.Name(), diff)
	}
}

// equalWidth builds two siblings splitting a 220 wide parent with 10pt
// margins.
func equalWidth() (root, a, b *Container) {
	tree := NewTree()
	root = tree.NewRoot("p", R(0, 0, 220, 100))
	a = root.AddView("a", Rect{})
	b = root.AddView("b", Rect{})
	Constrain(a.Left(), Equal, root.Left(), WithOffset(10))
	Constrain(a.Right(), Equal, b.Left())
	Constrain(b.Right(), Equal, root.Right(), WithOffset(-10))
	Constrain(a.Width(), Equal, b.Width())
	return root, a, b
}

func TestSolveEqualWidth(t *testing.T) {
	root, a, b := equalWidth()
	mustSolve(t, testEngine(), root, nil)

	assertFrame(t, root, R(0, 0, 220, 100))
	assertFrame(t, a, R(10, 0, 100, 0))
	assertFrame(t, b, R(110, 0, 100, 0))
}

func TestSolveUnchangedPassIsEmpty(t *testing.T) {
	root, _, _ := equalWidth()
	e := testEngine()
	cache := NewCache()

	first := mustSolve(t, e, root, cache)
	if first.Ops == 0 || first.Diff.ConstraintsAdded == 0 {
		t.Fatalf("first pass submitted nothing: %+v", first)
	}

	second := mustSolve(t, e, root, cache)
	if second.Ops != 0 || !second.Diff.IsZero() {
		t.Errorf("second pass = %d ops, diff %+v, want empty", second.Ops, second.Diff)
	}
	if cache.Passes() != 2 {
		t.Errorf("Passes() = %d, want 2", cache.Passes())
	}
}

func TestSolveOneAddedConstraint(t *testing.T) {
	root, a, _ := equalWidth()
	e := testEngine()
	cache := NewCache()
	mustSolve(t, e, root, cache)

	Bound(a.Width(), GreaterOrEqual, 50)
	rep := mustSolve(t, e, root, cache)

	want := DiffStats{ConstraintsAdded: 1}
	if diff := cmp.Diff(want, rep.Diff); diff != "" {
		t.Errorf("diff stats mismatch (-want +got):\n%s", diff)
	}
	if rep.Ops != 1 {
		t.Errorf("Ops = %d, want 1", rep.Ops)
	}
	if cache.Stats() != rep.Diff {
		t.Errorf("Cache.Stats() = %+v, want %+v", cache.Stats(), rep.Diff)
	}
}

func TestSolveMutateAndRevert(t *testing.T) {
	root, a, _ := equalWidth()
	e := testEngine()
	cache := NewCache()
	mustSolve(t, e, root, cache)

	root.UpdateConstraint(a.Left(), Equal, root.Left(), 20)
	rep := mustSolve(t, e, root, cache)
	if rep.Diff.ConstraintsAdded != 1 || rep.Diff.ConstraintsRemoved != 1 {
		t.Errorf("changed offset diff = %+v, want one removal and one addition", rep.Diff)
	}
	assertFrame(t, a, R(20, 0, 95, 0))

	// Changed and changed back before the next pass.
	root.UpdateConstraint(a.Left(), Equal, root.Left(), 30)
	root.UpdateConstraint(a.Left(), Equal, root.Left(), 20)
	rep = mustSolve(t, e, root, cache)
	if rep.Ops != 0 {
		t.Errorf("reverted offset submitted %d ops", rep.Ops)
	}
}

func TestSolveMultiplierIgnoresAbsoluteOffset(t *testing.T) {
	for _, cx := range []float64{50, 150} {
		tree := NewTree()
		p := tree.NewRoot("p", R(0, 0, 400, 400))
		c := p.AddView("c", R(cx, 30, 200, 200))
		c.SetOptOut(OptOutAll)
		b := c.AddView("b", Rect{})
		Bound(b.Width(), Equal, 40)
		Constrain(b.Left(), Equal, c.Left(), WithOffset(10))
		a := p.AddView("a", Rect{})
		Constrain(a.Width(), Equal, b.Width(), WithMultiplier(2))

		mustSolve(t, testEngine(), p, nil)
		if got := a.Frame().Width; got != 80 {
			t.Errorf("c.x = %v: a.width = %v, want 80", cx, got)
		}
		if got := b.Frame().X; got != 10 {
			t.Errorf("c.x = %v: b.x = %v, want 10", cx, got)
		}
	}
}

func TestSolveMultiplierOnPositionsIsRelative(t *testing.T) {
	tree := NewTree()
	p := tree.NewRoot("p", R(100, 0, 400, 400))
	c := p.AddView("c", R(50, 30, 200, 200))
	c.SetOptOut(OptOutAll)
	b := c.AddView("b", Rect{})
	Constrain(b.Left(), Equal, c.Left(), WithOffset(10))
	a := p.AddView("a", Rect{})
	Constrain(a.Left(), Equal, b.Left(), WithMultiplier(2))

	mustSolve(t, testEngine(), p, nil)

	// b sits at x=60 in p's space, so a must sit at x=120 in p's space,
	// whatever p's own position.
	if got := a.Frame().X; got != 120 {
		t.Errorf("a.x = %v, want 120", got)
	}
	assertFrame(t, p, R(100, 0, 400, 400))
}

func TestHuggingCompressionCollapse(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 300))
	v := root.AddView("v", Rect{})
	v.SetIntrinsicSize(Size{Width: 40, Height: 20})
	v.SetHugging(Horizontal, PriorityMedium)
	v.SetCompression(Horizontal, PriorityMedium)
	Constrain(v.Left(), Equal, root.Left())
	Constrain(v.Top(), Equal, root.Top())

	cache := NewCache()
	mustSolve(t, testEngine(), root, cache)

	defs := cache.current.containers[v.Handle()].defs
	if _, ok := defs["width==intrinsicWidth"]; !ok {
		t.Error("missing width==intrinsicWidth")
	}
	for _, name := range []string{"width>=intrinsicWidth", "width<=intrinsicWidth", "height==intrinsicHeight"} {
		if _, ok := defs[name]; ok {
			t.Errorf("unexpected %s", name)
		}
	}
	for _, name := range []string{"height>=intrinsicHeight", "height<=intrinsicHeight"} {
		if _, ok := defs[name]; !ok {
			t.Errorf("missing %s", name)
		}
	}
	assertFrame(t, v, R(0, 0, 40, 20))
}

func TestIntrinsicPriorityChangeUpdates(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 300))
	v := root.AddView("v", Rect{})
	v.SetIntrinsicSize(Size{Width: 40, Height: NoIntrinsicMetric})
	Constrain(v.Left(), Equal, root.Left())
	Constrain(v.Right(), Equal, root.Right(), WithPriority(PriorityMedium))

	e := testEngine()
	cache := NewCache()
	mustSolve(t, e, root, cache)
	// Compression (750) beats the medium trailing pin, hugging (250) does
	// not, so v stretches.
	assertFrame(t, v, R(0, 0, 300, 0))

	v.SetHugging(Horizontal, PriorityHigh - 1)
	rep := mustSolve(t, e, root, cache)
	if rep.Diff.ConstraintsUpdated != 1 || rep.Diff.ConstraintsAdded != 0 || rep.Diff.ConstraintsRemoved != 0 {
		t.Errorf("diff = %+v, want exactly one update", rep.Diff)
	}
	assertFrame(t, v, R(0, 0, 40, 0))
}

func TestSolveConflictingRequiredConstraints(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 300))
	v := root.AddView("v", R(1, 2, 3, 4))
	Constrain(v.Left(), Equal, root.Left())
	Bound(v.Width(), Equal, 100)

	e := testEngine()
	cache := NewCache()
	mustSolve(t, e, root, cache)
	assertFrame(t, v, R(0, 0, 100, 0))

	conflict := Bound(v.Width(), Equal, 200)
	rep, err := e.Solve(root, cache)
	if !errors.Is(err, errors.ErrCodeUnsatisfiable) {
		t.Fatalf("Solve() error = %v, want UNSATISFIABLE", err)
	}
	if rep.Applied || rep.Err == nil {
		t.Errorf("Report = %+v, want rejected with error", rep)
	}
	assertFrame(t, v, R(0, 0, 100, 0))
	if !v.NeedsLayout() {
		t.Error("rejected pass cleared NeedsLayout")
	}

	conflict.Destroy()
	rep = mustSolve(t, e, root, cache)
	if rep.Ops != 0 {
		t.Errorf("pass after removing the conflict submitted %d ops, want 0", rep.Ops)
	}
	assertFrame(t, v, R(0, 0, 100, 0))
}

func TestSolveConflictOnFirstPass(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 300))
	v := root.AddView("v", R(1, 2, 3, 4))
	Bound(v.Width(), Equal, 100)
	Bound(v.Width(), Equal, 200)

	_, err := testEngine().Solve(root, nil)
	if !errors.Is(err, errors.ErrCodeUnsatisfiable) {
		t.Fatalf("Solve() error = %v, want UNSATISFIABLE", err)
	}
	assertFrame(t, v, R(1, 2, 3, 4))
	assertFrame(t, root, R(0, 0, 300, 300))
}

func TestSolveSkipsVoidConstraints(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 300))
	c := root.AddView("c", Rect{})
	d := root.AddView("d", Rect{})
	Constrain(c.Left(), Equal, root.Left(), WithOffset(5))
	Constrain(d.Left(), Equal, c.Right())

	e := testEngine()
	cache := NewCache()
	mustSolve(t, e, root, cache)

	tree.Remove(c)
	rep := mustSolve(t, e, root, cache)
	if rep.VoidConstraints != 2 {
		t.Errorf("VoidConstraints = %d, want 2", rep.VoidConstraints)
	}
	if rep.UserConstraints != 0 {
		t.Errorf("UserConstraints = %d, want 0", rep.UserConstraints)
	}
	if rep.Diff.ConstraintsRemoved == 0 {
		t.Error("removed container's constraints were not withdrawn")
	}
}

func TestSolveBaselineAlignment(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 100))
	l1 := root.AddView("l1", Rect{})
	l1.SetIntrinsicSize(Size{Width: 50, Height: 20})
	l1.SetBaseline(15)
	l2 := root.AddView("l2", Rect{})
	l2.SetIntrinsicSize(Size{Width: 60, Height: 30})
	l2.SetBaseline(24)

	Constrain(l1.Left(), Equal, root.Left(), WithOffset(10))
	Constrain(l1.Top(), Equal, root.Top(), WithOffset(10))
	Constrain(l2.Left(), Equal, l1.Right(), WithOffset(8))
	Constrain(l2.FirstBaseline(), Equal, l1.FirstBaseline())

	mustSolve(t, testEngine(), root, nil)
	assertFrame(t, l1, R(10, 10, 50, 20))
	assertFrame(t, l2, R(68, 1, 60, 30))
}

func TestSolveBaselineFromDescendant(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 100))
	s := root.AddView("s", Rect{})
	l := s.AddView("l", R(5, 5, 30, 12))
	l.SetBaseline(10)

	Constrain(s.Left(), Equal, root.Left())
	Constrain(s.FirstBaseline(), Equal, root.Top(), WithOffset(40))

	e := testEngine()
	cache := NewCache()
	first := mustSolve(t, e, root, cache)
	if first.Touched != 2 {
		t.Errorf("Touched = %d, want 2 (root and s)", first.Touched)
	}

	st := cache.current.containers[s.Handle()]
	if _, ok := st.defs["firstBaseline==top+baselineHeight"]; !ok {
		t.Error("missing firstBaseline==top+baselineHeight")
	}
	if got := st.edits["baselineHeight"].value; got != 15 {
		t.Errorf("suggested baselineHeight = %v, want 15", got)
	}
	if _, ok := cache.current.containers[l.Handle()].defs["firstBaseline==top+baselineHeight"]; ok {
		t.Error("label was drawn into the solve")
	}
	if got := s.Frame().Y; got != 25 {
		t.Errorf("s.y = %v, want 25", got)
	}
	assertFrame(t, l, R(5, 5, 30, 12))

	rep := mustSolve(t, e, root, cache)
	if rep.Ops != 0 {
		t.Errorf("second pass submitted %d ops, want 0", rep.Ops)
	}
	assertFrame(t, l, R(5, 5, 30, 12))
}

func TestSolveResizeResuggests(t *testing.T) {
	root, a, b := equalWidth()
	e := testEngine()
	cache := NewCache()
	mustSolve(t, e, root, cache)

	root.SetFrame(R(0, 0, 320, 100))
	rep := mustSolve(t, e, root, cache)
	if diff := cmp.Diff(DiffStats{Resuggested: 1}, rep.Diff); diff != "" {
		t.Errorf("diff stats mismatch (-want +got):\n%s", diff)
	}
	if rep.Ops != 1 {
		t.Errorf("Ops = %d, want 1", rep.Ops)
	}
	assertFrame(t, a, R(10, 0, 150, 0))
	assertFrame(t, b, R(160, 0, 150, 0))
}

func TestIntrinsicImpliesCenter(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 300))
	v := root.AddView("v", Rect{})
	v.SetIntrinsicSize(Size{Width: 40, Height: NoIntrinsicMetric})
	Constrain(v.Left(), Equal, root.Left(), WithOffset(10))

	cache := NewCache()
	mustSolve(t, testEngine(), root, cache)

	defs := cache.current.containers[v.Handle()].defs
	if _, ok := defs["centerX==left+width/2"]; !ok {
		t.Error("missing centerX==left+width/2")
	}
	if _, ok := defs["centerY==top+height/2"]; ok {
		t.Error("unexpected centerY==top+height/2 without vertical intrinsic size")
	}
	if got := v.vars.anchor(CenterX).Value(); math.Abs(got-30) > 1e-6 {
		t.Errorf("centerX = %v, want 30", got)
	}
}

func TestSolveOptOutChild(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 300, 300))
	fixed := root.AddView("fixed", R(40, 50, 60, 70))
	fixed.SetOptOut(OptOutAll)
	follower := root.AddView("follower", Rect{})
	Constrain(follower.Left(), Equal, fixed.Right(), WithOffset(5))
	Constrain(follower.Top(), Equal, fixed.Top())
	Constrain(follower.Width(), Equal, fixed.Width())

	mustSolve(t, testEngine(), root, nil)
	assertFrame(t, fixed, R(40, 50, 60, 70))
	assertFrame(t, follower, R(105, 50, 60, 0))
}

func TestSizeThatFits(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("root", R(0, 0, 500, 500))
	l := root.AddView("l", Rect{})
	l.SetIntrinsicSize(Size{Width: 80, Height: 20})
	Constrain(l.Left(), Equal, root.Left(), WithOffset(10))
	Constrain(root.Right(), Equal, l.Right(), WithOffset(10))
	Constrain(l.Top(), Equal, root.Top(), WithOffset(5))
	Constrain(root.Bottom(), Equal, l.Bottom(), WithOffset(5))

	e := testEngine()
	cache := NewCache()
	mustSolve(t, e, root, cache)
	before := l.Frame()

	got, err := e.SizeThatFits(root, Size{}, 50, 50)
	if err != nil {
		t.Fatalf("SizeThatFits() error = %v", err)
	}
	if diff := cmp.Diff(Size{Width: 100, Height: 30}, got, approx); diff != "" {
		t.Errorf("SizeThatFits() mismatch (-want +got):\n%s", diff)
	}
	assertFrame(t, root, R(0, 0, 500, 500))
	assertFrame(t, l, before)

	rep := mustSolve(t, e, root, cache)
	if rep.Ops != 0 {
		t.Errorf("pass after SizeThatFits submitted %d ops, want 0", rep.Ops)
	}
}

func TestLayoutIfNeeded(t *testing.T) {
	root, a, _ := equalWidth()
	e := testEngine()
	cache := NewCache()

	rep, err := e.LayoutIfNeeded(root, cache)
	if err != nil || rep.Skipped {
		t.Fatalf("first LayoutIfNeeded() = %+v, %v", rep, err)
	}
	rep, err = e.LayoutIfNeeded(root, cache)
	if err != nil || !rep.Skipped {
		t.Errorf("clean LayoutIfNeeded() = %+v, %v, want skipped", rep, err)
	}

	Bound(a.Height(), Equal, 30)
	rep, err = e.LayoutIfNeeded(root, cache)
	if err != nil || rep.Skipped {
		t.Errorf("dirty LayoutIfNeeded() = %+v, %v, want a pass", rep, err)
	}
	if got := a.Frame().Height; got != 30 {
		t.Errorf("a.height = %v, want 30", got)
	}
}

func TestDebugBatchAndDump(t *testing.T) {
	root, _, _ := equalWidth()
	e := testEngine(WithDebugBatch(true))
	cache := NewCache()
	rep := mustSolve(t, e, root, cache)
	if len(rep.Batch) != rep.Ops {
		t.Fatalf("len(Batch) = %d, want %d", len(rep.Batch), rep.Ops)
	}
	if rep.Batch[0].Op != "add" {
		t.Errorf("first op = %q, want add", rep.Batch[0].Op)
	}

	var buf bytes.Buffer
	if err := e.Dump(&buf, root, cache); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	counts := map[string]int{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var line struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		counts[line.Kind]++
	}
	want := map[string]int{"op": rep.Ops, "container": 3, "variable": 36}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("dump line kinds mismatch (-want +got):\n%s", diff)
	}
}

type recordingHooks struct {
	starts, completes, failures int
}

func (h *recordingHooks) OnPassStart(_ context.Context, _ string, _ int) { h.starts++ }
func (h *recordingHooks) OnPassComplete(_ context.Context, _ string, _ int, _ time.Duration, _ error) {
	h.completes++
}
func (h *recordingHooks) OnTransactionFailed(_ context.Context, _, _ string, _ error) {
	h.failures++
}

func TestEngineHooks(t *testing.T) {
	h := &recordingHooks{}
	e := testEngine(WithHooks(h))
	root, a, _ := equalWidth()
	mustSolve(t, e, root, nil)

	Bound(a.Width(), Equal, 1)
	Bound(a.Width(), Equal, 2)
	if _, err := e.Solve(root, nil); err == nil {
		t.Fatal("Solve() error = nil, want conflict")
	}
	want := recordingHooks{starts: 2, completes: 2, failures: 1}
	if *h != want {
		t.Errorf("hooks = %+v, want %+v", *h, want)
	}
}
