package zipstream

import "github.com/bundlestream/bundlestream/pkg/streaming/chunk"

// Entry is one (name, source) pair contributing a local file header, payload, and
// data descriptor to the archive. Entry carries no precomputed size or CRC; both
// are computed while the entry is streamed.
type Entry struct {
	Name   string
	Source chunk.Source
}

// NewEntry constructs an entry descriptor. It performs no I/O.
func NewEntry(name string, source chunk.Source) Entry {
	return Entry{Name: name, Source: source}
}

// entryState is the encoder's internal, per-entry bookkeeping, built once the
// entry's deduplicated name is known and mutated as its payload streams through.
type entryState struct {
	nameBinary       []byte
	flags            uint16
	offset           uint64
	crc              uint32
	sizeCompressed   uint64
	sizeUncompressed uint64
}

func newEntryState(dedupedName string) *entryState {
	return &entryState{
		nameBinary: []byte(dedupedName),
		flags:      flagDataDescriptor | flagUTF8,
	}
}
