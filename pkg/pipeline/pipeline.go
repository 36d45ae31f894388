// Package pipeline runs layout documents through the engine with result
// caching and snapshot persistence.
//
// The CLI and the HTTP service share this code so that both answer a
// document solve the same way:
//
//  1. Hash the document and look the solved frames up in the cache
//  2. On a miss, build the view tree and run one layout pass
//  3. Store the frames in the cache and, if configured, as a snapshot
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Solve(ctx, doc, pipeline.Options{Width: 800})
//	if err != nil {
//	    return err
//	}
//	for _, f := range res.Frames {
//	    fmt.Println(f.Name, f.X, f.Y, f.Width, f.Height)
//	}
package pipeline

import (
	"time"

	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Graph output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats lists the graph output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// Options configures a solve.
type Options struct {
	// Width and Height override the root frame size when positive.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Refresh bypasses the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Persist saves a snapshot when the runner has a store.
	Persist bool `json:"persist,omitempty"`
}

// Validate rejects negative sizes.
func (o Options) Validate() error {
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "root size must not be negative")
	}
	return nil
}

// FramesKeyOpts returns the cache key parameters of o.
func (o Options) FramesKeyOpts() cache.FramesKeyOpts {
	return cache.FramesKeyOpts{Width: o.Width, Height: o.Height}
}

// FitOptions configures a size-fitting request.
type FitOptions struct {
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Horizontal layout.Priority `json:"horizontal"`
	Vertical   layout.Priority `json:"vertical"`
}

// SetDefaults applies the fitting priorities used when none are given:
// the root is pulled towards the target at a priority just below the
// default compression resistance so content wins.
func (o *FitOptions) SetDefaults() {
	if o.Horizontal == 0 {
		o.Horizontal = DefaultFitPriority
	}
	if o.Vertical == 0 {
		o.Vertical = DefaultFitPriority
	}
}

// DefaultFitPriority is the fitting priority applied by SetDefaults.
const DefaultFitPriority = layout.Priority(50)

// Result contains the outputs of a solve.
type Result struct {
	DocHash   string           `json:"doc_hash"`
	Frames    []document.Frame `json:"frames"`
	Report    *layout.Report   `json:"report,omitempty"`
	Stats     Stats            `json:"stats"`
	CacheInfo CacheInfo        `json:"cache"`
}

// Stats contains timing information.
type Stats struct {
	BuildTime time.Duration `json:"build_time"`
	SolveTime time.Duration `json:"solve_time"`
}

// CacheInfo tracks whether the result came from the cache.
type CacheInfo struct {
	Hit bool   `json:"hit"`
	Key string `json:"key"`
}
