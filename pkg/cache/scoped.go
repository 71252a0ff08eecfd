package cache

// ScopedKeyer prepends a fixed namespace to every key of an inner Keyer,
// so several deployments can share one Redis or Mongo instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a Keyer whose keys start with prefix.
// A nil inner keyer means the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) CropKey(docHash string, opts CropKeyOpts) string {
	return k.prefix + k.inner.CropKey(docHash, opts)
}
