package resource

import (
	"context"

	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
)

// ResourceStreamFunction decorates a chunk-producing factory so that, instead of
// starting the producer, calling the returned function captures args and returns a
// ResourceStream carrying (factory, args) — call-site syntax is unchanged, only the
// return type and the "no work happens yet" behavior differ. Args is curried at
// construction time: the returned closure owns it, not ResourceStream itself.
func ResourceStreamFunction[Args any](
	factory func(ctx context.Context, args Args) (chunk.Source, error),
) func(args Args) *ResourceStream {
	return func(args Args) *ResourceStream {
		return NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
			return factory(ctx, args)
		})
	}
}
