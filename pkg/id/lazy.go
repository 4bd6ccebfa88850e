package id

import "sync"

// Lazy defers building a Generator until first use. Concurrent first calls
// share a single construction; a construction error is returned on every call.
type Lazy struct {
	get func() (*Generator, error)
}

// NewLazy wraps build, which runs at most once.
func NewLazy(build func() (*Generator, error)) *Lazy {
	return &Lazy{get: sync.OnceValues(build)}
}

// NewLazyConfig is NewLazy for a fixed Config.
func NewLazyConfig(cfg Config, opts ...Option) *Lazy {
	return NewLazy(func() (*Generator, error) { return NewGenerator(cfg, opts...) })
}

// Generator returns the shared generator, building it on first call.
func (l *Lazy) Generator() (*Generator, error) { return l.get() }

// NextID builds the generator if needed and returns its next id.
func (l *Lazy) NextID() (ID, error) {
	g, err := l.get()
	if err != nil {
		return 0, err
	}
	return g.NextID()
}
