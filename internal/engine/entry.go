package engine

import (
	"context"

	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
)

// Entry is one resolved (name, chunk source) pair, ready to hand to the ZIP
// stream encoder as a zipstream.Entry. An Entry carries no decoded data — the
// bytes are a lazy chunk.Source, not a value to marshal, since the archive
// never buffers a whole entry.
type Entry struct {
	Name   string
	Source chunk.Source
}

// Resource resolves to exactly one archive Entry: Resolve returns the entry
// name and a chunk source the encoder streams directly, never a decoded value.
type Resource interface {
	Named
	Resolve(ctx context.Context) (Entry, error)
}

// ResourceFunc adapts a plain function into a Resource.
func ResourceFunc(name, kind string, fn func(ctx context.Context) (Entry, error)) Resource {
	return &resourceFunc{name: name, kind: kind, fn: fn}
}

type resourceFunc struct {
	name string
	kind string
	fn   func(ctx context.Context) (Entry, error)
}

func (r *resourceFunc) Name() string { return r.name }
func (r *resourceFunc) Kind() string { return r.kind }
func (r *resourceFunc) Resolve(ctx context.Context) (Entry, error) {
	return r.fn(ctx)
}
