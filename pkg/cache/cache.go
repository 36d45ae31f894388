// Package cache stores solved layout results keyed by document content.
//
// A solve over an unchanged document with an unchanged root size always
// yields the same frames, so the CLI and the HTTP service consult a Cache
// before running the engine. Three backends are provided:
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: hash-sharded JSON files for CLI usage
//   - [RedisCache]: shared cache for multi-instance servers
//
// Keys are produced by a [Keyer] so that callers never build raw strings.
// [Instrumented] reports hits, misses and writes through the
// observability hooks.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLFrames is the default lifetime of a cached solve result.
const TTLFrames = 24 * time.Hour

// FramesKeyOpts are the solve parameters that change the result of a
// document solve besides the document itself.
type FramesKeyOpts struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// FramesKey is the key of the solved frames of a document.
	FramesKey(docHash string, opts FramesKeyOpts) string

	// FitKey is the key of a size-fitting result of a document.
	FitKey(docHash string, opts FitKeyOpts) string
}

// FitKeyOpts are the parameters of a size-fitting request.
type FitKeyOpts struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FramesKey returns "frames:<sha256(docHash, opts)>".
func (DefaultKeyer) FramesKey(docHash string, opts FramesKeyOpts) string {
	return hashKey("frames", docHash, opts)
}

// FitKey returns "fit:<sha256(docHash, opts)>".
func (DefaultKeyer) FitKey(docHash string, opts FitKeyOpts) string {
	return hashKey("fit", docHash, opts)
}

// hashKey returns "prefix:<sha256 of the JSON encoding of parts>".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache never stores anything. It backs --no-cache and the
// "none" backend.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
