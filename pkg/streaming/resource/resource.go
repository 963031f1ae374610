// Package resource makes a chunk source restartable by wrapping the recipe that
// creates it — a factory plus its bound arguments — instead of a live producer.
package resource

import (
	"context"
	"sync"

	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
)

// Factory creates a fresh chunk.Source. A ResourceStream calls it once per Open.
type Factory func(ctx context.Context) (chunk.Source, error)

// Opener is implemented by anything that can mint a brand-new chunk.Source on
// demand — the seam consumers use to distinguish a restartable value from a
// one-shot chunk.Source. ResourceStream is the canonical implementation.
type Opener interface {
	Open(ctx context.Context) (chunk.Source, error)
}

// ResourceStream wraps a Factory so each iteration starts a fresh producer. It
// performs no work itself; iterate() (Open) is what invokes the factory.
type ResourceStream struct {
	factory Factory

	once  sync.Once
	inner chunk.Source
}

// NewResourceStream captures factory, performing no work until Open or Next is called.
func NewResourceStream(factory Factory) *ResourceStream {
	return &ResourceStream{factory: factory}
}

// Open invokes the factory, returning a brand-new chunk.Source. Each call is
// independent: no state is shared between the sources it returns.
func (r *ResourceStream) Open(ctx context.Context) (chunk.Source, error) {
	return r.factory(ctx)
}

// Next lets a ResourceStream act as a chunk.Source in its own right: the factory is
// invoked lazily on the first Next call and the resulting source is delegated to for
// every call after. Used this way, the ResourceStream is single-use, same as any
// other chunk.Source — call Open directly to mint an independent, restartable
// source instead.
func (r *ResourceStream) Next(ctx context.Context) (chunk.Chunk, error) {
	var openErr error
	r.once.Do(func() {
		r.inner, openErr = r.factory(ctx)
	})
	if openErr != nil {
		return nil, openErr
	}
	if r.inner == nil {
		// factory already failed on a previous call; once.Do won't run again.
		return nil, chunk.ErrSourceExhausted
	}
	return r.inner.Next(ctx)
}

// Close releases the delegate source opened by Next, if any, and if it implements
// chunk.Closer. Open-minted sources are the caller's responsibility to close.
func (r *ResourceStream) Close() error {
	if r.inner == nil {
		return nil
	}
	return chunk.Close(r.inner)
}
