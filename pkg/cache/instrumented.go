package cache

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorlayout/pkg/observability"
)

// Instrumented decorates a Cache with debug logging and the cache hooks
// registered in the observability package.
type Instrumented struct {
	inner  Cache
	logger *log.Logger
}

// NewInstrumented wraps inner. A nil logger uses the default logger.
func NewInstrumented(inner Cache, logger *log.Logger) *Instrumented {
	if logger == nil {
		logger = log.Default()
	}
	return &Instrumented{inner: inner, logger: logger}
}

// Get forwards to the inner cache and records a hit or miss.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "err", err)
		return nil, false, err
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, keyType(key))
		c.logger.Debug("cache hit", "key", key)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
		c.logger.Debug("cache miss", "key", key)
	}
	return data, ok, nil
}

// Set forwards to the inner cache and records the write size.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.inner.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "err", err)
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// Delete forwards to the inner cache.
func (c *Instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Close closes the inner cache.
func (c *Instrumented) Close() error {
	return c.inner.Close()
}

// keyType extracts the key family ("frames", "fit") from a possibly
// scoped key of the form [scope:]family:hash.
func keyType(key string) string {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return "unknown"
	}
	family := key[:i]
	if j := strings.LastIndex(family, ":"); j >= 0 {
		family = family[j+1:]
	}
	return family
}

var _ Cache = (*Instrumented)(nil)
