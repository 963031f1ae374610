package file

import (
	"context"
	"fmt"

	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
	"github.com/bundlestream/bundlestream/pkg/streaming/resource"
)

const ResourceKind = "file"

type ReadConfig struct {
	Path string
}

type readArgs struct {
	collector *Collector
	config    ReadConfig
}

// NewReadResource builds an engine.Resource whose every Resolve returns a
// fresh stream that opens path on its first read, making a restart mid-stream
// reread from the start of the file rather than seek an already-partially-
// consumed handle. A missing file is reported by that first read, not by
// Resolve.
func NewReadResource(id, entryName string, collector *Collector, cfg ReadConfig) engine.Resource {
	open := resource.ResourceStreamFunction(openFile)

	return engine.ResourceFunc(id, ResourceKind, func(ctx context.Context) (engine.Entry, error) {
		stream := open(readArgs{collector: collector, config: cfg})
		return engine.Entry{Name: entryName, Source: stream}, nil
	})
}

func openFile(ctx context.Context, args readArgs) (chunk.Source, error) {
	f, err := args.collector.fs.Open(args.config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", args.config.Path, err)
	}

	return chunk.FromReader(f, 0), nil
}
