// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout passes, result cache operations, and HTTP
// requests served by the layout service.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps pkg/layout
// free of any metrics backend. A Prometheus implementation lives in the
// metrics subpackage.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    metrics.New(prometheus.DefaultRegisterer).Install()
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnPassStart(ctx, passID, containers)
//	// ... compile, diff, apply ...
//	observability.Layout().OnPassComplete(ctx, passID, ops, duration, err)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout passes.
type LayoutHooks interface {
	// OnPassStart is called after the view tree has been collected.
	OnPassStart(ctx context.Context, passID string, containers int)

	// OnPassComplete is called when a pass finishes. ops is the number of
	// solver operations the pass submitted.
	OnPassComplete(ctx context.Context, passID string, ops int, duration time.Duration, err error)

	// OnTransactionFailed is called when the solver rejects a pass.
	// constraint describes the offending constraint, if known.
	OnTransactionFailed(ctx context.Context, passID, constraint string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the layout service.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnPassStart(context.Context, string, int)                          {}
func (NoopLayoutHooks) OnPassComplete(context.Context, string, int, time.Duration, error) {}
func (NoopLayoutHooks) OnTransactionFailed(context.Context, string, string, error)        {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// hookSet is replaced as a whole on every registration, so readers never
// take a lock.
type hookSet struct {
	layout LayoutHooks
	cache  CacheHooks
	http   HTTPHooks
}

var (
	hooks   atomic.Pointer[hookSet]
	hooksMu sync.Mutex
)

func init() { Reset() }

// update applies fn to a copy of the current set and publishes it.
func update(fn func(*hookSet)) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	next := *hooks.Load()
	fn(&next)
	hooks.Store(&next)
}

// SetLayoutHooks registers layout hooks. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		update(func(s *hookSet) { s.layout = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks { return hooks.Load().layout }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return hooks.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return hooks.Load().http }

// Reset restores the no-op hooks. Tests use it to undo registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks.Store(&hookSet{layout: NoopLayoutHooks{}, cache: NoopCacheHooks{}, http: NoopHTTPHooks{}})
}
