package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each document its own
// namespace in a shared backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "doc:"+Hash(docBytes)[:12]+":")
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

// PageKey generates a prefixed page key.
func (k *ScopedKeyer) PageKey(ref string) string {
	return k.prefix + k.inner.PageKey(ref)
}
