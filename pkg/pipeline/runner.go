package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/render/dot"
	"github.com/matzehuels/anchorlayout/pkg/store"
)

// Runner encapsulates document solves with caching.
//
// The Runner holds no per-document state, so multiple goroutines can use
// the same Runner with different documents.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Engine *layout.Engine
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Engine: layout.NewEngine(logger),
		Logger: logger,
		TTL:    cache.TTLFrames,
	}
}

// Solve returns the solved frames of doc, from the cache when possible.
func (r *Runner) Solve(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	res := &Result{DocHash: document.Hash(doc)}
	key := r.Keyer.FramesKey(res.DocHash, opts.FramesKeyOpts())
	res.CacheInfo.Key = key

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var frames []document.Frame
			if err := json.Unmarshal(data, &frames); err == nil {
				res.Frames = frames
				res.CacheInfo.Hit = true
				return res, nil
			}
		}
	}

	buildStart := time.Now()
	b, err := document.Build(doc)
	if err != nil {
		return nil, err
	}
	b.ResizeRoot(opts.Width, opts.Height)
	res.Stats.BuildTime = time.Since(buildStart)

	solveStart := time.Now()
	rep, err := r.Engine.SolveContext(ctx, b.Root, nil)
	if err != nil {
		return nil, err
	}
	res.Stats.SolveTime = time.Since(solveStart)
	res.Report = &rep
	res.Frames = document.Frames(b.Root)

	r.Logger.Debug("solved document",
		"hash", res.DocHash[:12],
		"containers", rep.Containers,
		"ops", rep.Ops,
		"duration", res.Stats.SolveTime)

	if data, err := json.Marshal(res.Frames); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		}
	}

	if opts.Persist && r.Store != nil {
		rf := b.Root.Frame()
		snap := &store.Snapshot{
			ID:        store.SnapshotID(res.DocHash, rf.Width, rf.Height),
			DocHash:   res.DocHash,
			Root:      b.Root.Name(),
			Width:     rf.Width,
			Height:    rf.Height,
			Frames:    res.Frames,
			Stats:     rep.Diff,
			Ops:       rep.Ops,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.Store.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
	}
	return res, nil
}

// Fit computes the size doc's root would take at the given target.
func (r *Runner) Fit(ctx context.Context, doc *document.Document, opts FitOptions) (layout.Size, bool, error) {
	opts.SetDefaults()
	key := r.Keyer.FitKey(document.Hash(doc), cache.FitKeyOpts{
		Width:      opts.Width,
		Height:     opts.Height,
		Horizontal: float64(opts.Horizontal),
		Vertical:   float64(opts.Vertical),
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var s layout.Size
		if err := json.Unmarshal(data, &s); err == nil {
			return s, true, nil
		}
	}

	b, err := document.Build(doc)
	if err != nil {
		return layout.Size{}, false, err
	}
	s, err := r.Engine.SizeThatFits(b.Root, layout.Size{Width: opts.Width, Height: opts.Height}, opts.Horizontal, opts.Vertical)
	if err != nil {
		return layout.Size{}, false, err
	}
	if data, err := json.Marshal(s); err == nil {
		_ = r.Cache.Set(ctx, key, data, r.TTL)
	}
	return s, false, nil
}

// Graph renders doc's hierarchy and constraints. With solved set, the
// document is solved first so that labels carry the solved frames.
func (r *Runner) Graph(ctx context.Context, doc *document.Document, format string, solved bool) ([]byte, error) {
	if !ValidFormats[format] {
		return nil, fmt.Errorf("invalid format: %q (must be one of: dot, svg)", format)
	}
	b, err := document.Build(doc)
	if err != nil {
		return nil, err
	}
	if solved {
		if _, err := r.Engine.SolveContext(ctx, b.Root, nil); err != nil {
			return nil, err
		}
	}
	src := dot.ToDOT(b.Root, dot.Options{Constraints: true, Frames: solved})
	if format == FormatDOT {
		return []byte(src), nil
	}
	return dot.RenderSVG(src)
}
