package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants or
// environments can share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ReportKey generates a prefixed report key.
func (k *ScopedKeyer) ReportKey(diagramHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(diagramHash, opts)
}
