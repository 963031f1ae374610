// Package file reads archive entry bytes from a local filesystem path.
package file

import (
	"context"

	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/spf13/afero"
)

const CollectorKind = "file"

// Collector holds the filesystem every file resource is read from, so tests
// can substitute an in-memory afero.Fs.
type Collector struct {
	fs afero.Fs
}

func NewCollector(fs afero.Fs) engine.Collector {
	return &Collector{fs: fs}
}

func (c *Collector) Name() string {
	return CollectorKind
}

func (c *Collector) Kind() string {
	return CollectorKind
}

func (c *Collector) Start(ctx context.Context) error {
	return nil
}

func (c *Collector) Close(ctx context.Context) error {
	return nil
}
