package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants or
// environments can share one backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FramesKey generates a prefixed solved-frames key.
func (k *ScopedKeyer) FramesKey(docHash string, opts FramesKeyOpts) string {
	return k.prefix + k.inner.FramesKey(docHash, opts)
}

// FitKey generates a prefixed size-fitting key.
func (k *ScopedKeyer) FitKey(docHash string, opts FitKeyOpts) string {
	return k.prefix + k.inner.FitKey(docHash, opts)
}
