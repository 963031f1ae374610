// Package static supplies archive entry bytes from a literal value embedded in
// a job file, with no external collector needed.
package static

import (
	"context"

	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
)

const ResourceKind = "static"

// NewValueResource builds an engine.Resource that always resolves to value,
// wrapped as a fresh single-chunk Source each call so it stays safe to
// resolve more than once.
func NewValueResource(id, entryName, value string) engine.Resource {
	return engine.ResourceFunc(id, ResourceKind, func(ctx context.Context) (engine.Entry, error) {
		return engine.Entry{Name: entryName, Source: chunk.FromBytes([]byte(value))}, nil
	})
}
