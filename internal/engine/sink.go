package engine

import (
	"context"
	"io"
)

// Sink is the destination a finished archive's bytes are written to: stdout, a
// local folder, or an S3 object. The bundle runner calls Write exactly once per
// job, with the full archive byte stream (never buffered) as data.
type Sink interface {
	Named
	Closer
	Write(ctx context.Context, path string, data io.Reader) error
}
