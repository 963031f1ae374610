package zipstream

import "errors"

// ErrDedupFailure wraps any error returned by a Deduplicator's Accept, surfaced on
// the encoder's next Next call. The archive is aborted; the bytes already emitted
// are a valid prefix, not a valid archive.
var ErrDedupFailure = errors.New("zipstream: deduplicator failed to produce a name")

// ErrTooManyEntries is returned if an archive would need more than 0xFFFFFFFF
// central-directory records — beyond what even ZIP64 entry counts afford safely
// given this encoder never writes a disk-spanning archive.
var ErrTooManyEntries = errors.New("zipstream: entry count exceeds supported range")
