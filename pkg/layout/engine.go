package layout

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/observability"
	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// Engine runs layout passes. It holds no per-hierarchy state: incremental
// state lives in the Cache passed to each call, so one Engine can serve
// any number of hierarchies.
type Engine struct {
	logger     *log.Logger
	hooks      observability.LayoutHooks
	debugBatch bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHooks sends pass events to h instead of the globally registered
// layout hooks.
func WithHooks(h observability.LayoutHooks) EngineOption {
	return func(e *Engine) { e.hooks = h }
}

// WithDebugBatch records the submitted solver calls in Report.Batch.
func WithDebugBatch(on bool) EngineOption {
	return func(e *Engine) { e.debugBatch = on }
}

// NewEngine creates an engine. A nil logger uses log.Default().
func NewEngine(logger *log.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) layoutHooks() observability.LayoutHooks {
	if e.hooks != nil {
		return e.hooks
	}
	return observability.Layout()
}

// Report describes one layout pass.
type Report struct {
	PassID          string        `json:"pass_id"`
	Containers      int           `json:"containers"`
	Touched         int           `json:"touched"`
	UserConstraints int           `json:"user_constraints"`
	Definitional    int           `json:"definitional_constraints"`
	EditVariables   int           `json:"edit_variables"`
	VoidConstraints int           `json:"void_constraints"`
	Diff            DiffStats     `json:"diff"`
	Ops             int           `json:"ops"`
	Duration        time.Duration `json:"duration"`
	Applied         bool          `json:"applied"`
	Skipped         bool          `json:"skipped,omitempty"`
	Batch           []BatchEntry  `json:"batch,omitempty"`
	Err             error         `json:"-"`
}

// Solve runs one full pass over root's subtree. See SolveContext.
func (e *Engine) Solve(root *Container, cache *Cache) (Report, error) {
	return e.SolveContext(context.Background(), root, cache)
}

// SolveContext runs one full pass over root's subtree: collect, diff
// against cache, submit the difference, solve and write frames back.
//
// A nil cache solves with a throwaway cache, submitting everything. When
// the solver rejects the pass (conflicting required constraints) the error
// is logged and returned with code UNSATISFIABLE, frames keep their
// previous values, and cache keeps the state of the last applied pass.
//
// root is treated as opted out entirely: its current frame is suggested at
// strong strength.
func (e *Engine) SolveContext(ctx context.Context, root *Container, cache *Cache) (Report, error) {
	root.mustBeAlive()
	if cache == nil {
		cache = NewCache()
	}
	start := time.Now()
	rep := Report{PassID: uuid.NewString()}
	hooks := e.layoutHooks()

	p := collect(root, nil)
	rep.Containers = len(p.order)
	ctx, span := otel.Tracer("anchorlayout/layout").Start(ctx, "layout.Engine.Solve",
		trace.WithAttributes(
			attribute.String("pass_id", rep.PassID),
			attribute.String("root", root.name),
			attribute.Int("containers", rep.Containers),
		),
	)
	defer span.End()
	hooks.OnPassStart(ctx, rep.PassID, rep.Containers)
	for _, k := range p.void {
		e.logger.Warn("skipping constraint with void anchor", "pass", rep.PassID, "constraint", k)
	}

	cache.begin()
	cache.record(p)
	b, stats := cache.diff()
	e.fillReport(&rep, p, cache.current, b, stats)

	if err := cache.apply(b); err != nil {
		cache.abort()
		rep.Duration = time.Since(start)
		rep.Err = e.transactionFailed(ctx, rep.PassID, err)
		span.RecordError(rep.Err)
		span.SetStatus(codes.Error, "solver rejected pass")
		hooks.OnPassComplete(ctx, rep.PassID, rep.Ops, rep.Duration, rep.Err)
		return rep, rep.Err
	}
	cache.last = b
	cache.stats = stats
	cache.passes++

	cache.solver.UpdateVariables()
	readBack(p)
	for _, c := range p.order {
		c.needsLayout = false
	}

	rep.Applied = true
	rep.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("ops", rep.Ops))
	e.logger.Debug("layout pass",
		"pass", rep.PassID,
		"containers", rep.Containers,
		"ops", rep.Ops,
		"added", stats.ConstraintsAdded,
		"removed", stats.ConstraintsRemoved,
		"updated", stats.ConstraintsUpdated,
		"resuggested", stats.Resuggested,
		"duration", rep.Duration)
	hooks.OnPassComplete(ctx, rep.PassID, rep.Ops, rep.Duration, nil)
	return rep, nil
}

func (e *Engine) fillReport(rep *Report, p *pass, g *generation, b batch, stats DiffStats) {
	rep.UserConstraints, rep.Definitional, rep.EditVariables = g.constraintCount()
	rep.Touched = p.touched.Size()
	rep.VoidConstraints = len(p.void)
	rep.Diff = stats
	rep.Ops = len(b)
	if e.debugBatch {
		rep.Batch = b.entries()
	}
}

func (e *Engine) transactionFailed(ctx context.Context, passID string, err error) error {
	code := errors.ErrCodeInternal
	culprit := ""
	var ue *solver.UnsatisfiableError
	if stderrors.As(err, &ue) {
		code = errors.ErrCodeUnsatisfiable
		culprit = ue.Constraint.String()
	}
	e.logger.Error("layout pass rejected by solver", "pass", passID, "constraint", culprit, "err", err)
	e.layoutHooks().OnTransactionFailed(ctx, passID, culprit, err)
	return errors.Wrap(code, err, "layout pass %s", passID)
}

// LayoutIfNeeded runs a pass only when root or a descendant needs layout.
// A skipped pass returns a Report with Skipped set.
func (e *Engine) LayoutIfNeeded(root *Container, cache *Cache) (Report, error) {
	if !root.SubtreeNeedsLayout() {
		return Report{Skipped: true}, nil
	}
	return e.Solve(root, cache)
}

// SizeThatFits computes the size root would take if it were as close to
// target as the priorities hFit and vFit allow. A priority of zero leaves
// the axis entirely to the constraints.
//
// The pass runs on a fresh solver; no frame, cache or solved value is
// changed.
func (e *Engine) SizeThatFits(root *Container, target Size, hFit, vFit Priority) (Size, error) {
	root.mustBeAlive()
	p := collect(root, &fitting{target: target, h: hFit, v: vFit})

	var saved []float64
	for _, c := range p.order {
		for _, v := range c.vars.all() {
			saved = append(saved, v.Value())
		}
	}
	defer func() {
		i := 0
		for _, c := range p.order {
			for _, v := range c.vars.all() {
				v.SetValue(saved[i])
				i++
			}
		}
	}()

	cache := NewCache()
	cache.begin()
	cache.record(p)
	b, _ := cache.diff()
	if err := cache.apply(b); err != nil {
		return Size{}, e.transactionFailed(context.Background(), "fit", err)
	}
	cache.solver.UpdateVariables()
	f := root.vars.solvedFrame()
	return Size{Width: snap(f.Width), Height: snap(f.Height)}, nil
}

// readBack writes solved frames into every touched container, converting
// from the solver's absolute space into parent-relative frames. Untouched
// containers keep their frames and move with their parents.
func readBack(p *pass) {
	abs := make(map[Handle][2]float64, len(p.order))
	for _, c := range p.order {
		origin := p.parentAbs
		if c != p.root {
			origin = abs[c.parent.handle]
		}
		if !p.isTouched(c) {
			abs[c.handle] = [2]float64{origin[0] + c.frame.X, origin[1] + c.frame.Y}
			continue
		}
		f := c.vars.solvedFrame()
		f.X, f.Y, f.Width, f.Height = snap(f.X), snap(f.Y), snap(f.Width), snap(f.Height)
		abs[c.handle] = [2]float64{f.X, f.Y}
		c.frame = Rect{X: f.X - origin[0], Y: f.Y - origin[1], Width: f.Width, Height: f.Height}
	}
}

// snap removes solver noise below a millionth of a point.
func snap(v float64) float64 {
	r := math.Round(v*1e6) / 1e6
	if r == 0 {
		return 0
	}
	return r
}

// Describe renders a one-line summary of a report for logs and the CLI.
func (r Report) Describe() string {
	if r.Skipped {
		return "skipped (nothing needs layout)"
	}
	status := "applied"
	if !r.Applied {
		status = "rejected"
	}
	return fmt.Sprintf("%s: %d containers, %d ops (+%d -%d ~%d constraints, %d resuggested) in %s",
		status, r.Containers, r.Ops,
		r.Diff.ConstraintsAdded, r.Diff.ConstraintsRemoved, r.Diff.ConstraintsUpdated,
		r.Diff.Resuggested, r.Duration.Round(time.Microsecond))
}
