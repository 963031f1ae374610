package zipstream

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
	"github.com/bundlestream/bundlestream/pkg/streaming/resource"
)

// Options configures one archive. The zero value selects the default
// deduplicator (DefaultNamePattern/DefaultReconstructor) and deflate compression.
type Options struct {
	// Deduplicator instantiates the per-archive Deduplicator. Nil selects the
	// default deduplicator; set it to NoDeduplicator to disable deduplication
	// entirely (incoming names are then emitted verbatim, duplicates included).
	Deduplicator DeduplicatorFactory

	// Compression is the single compression method applied to every entry.
	Compression CompressionMethod
}

// NoDeduplicator is a DeduplicatorFactory that disables deduplication: names are
// emitted to the archive exactly as given, and duplicates are never rejected.
var NoDeduplicator DeduplicatorFactory = func() Deduplicator { return verbatimDeduplicator{} }

func (o Options) deduplicatorFactory() DeduplicatorFactory {
	if o.Deduplicator != nil {
		return o.Deduplicator
	}
	return DefaultDeduplicator(DefaultNamePattern, DefaultReconstructor)
}

// Encoder streams a ZIP archive from an ordered list of entries. It is itself a
// chunk.Source: construction performs no I/O and pulls no entry source until the
// first Next call.
type Encoder struct {
	entries     []Entry
	dedupeMaker DeduplicatorFactory
	compression CompressionMethod

	once  sync.Once
	pr    *io.PipeReader
	pw    *io.PipeWriter
	ended bool
}

// NewZipStream builds an Encoder over entries. Entries are frozen at construction
// time; the returned Encoder is a single-use chunk.Source unless every entry's
// Source is restartable (see NewZipStreamResource).
func NewZipStream(entries []Entry, opts Options) (*Encoder, error) {
	if opts.Compression != CompressionDeflate && opts.Compression != CompressionStored {
		return nil, fmt.Errorf("zipstream: unsupported compression method %v", opts.Compression)
	}
	return &Encoder{
		entries:     entries,
		dedupeMaker: opts.deduplicatorFactory(),
		compression: opts.Compression,
	}, nil
}

// NewZipStreamResource returns a Resource Stream whose factory re-creates an
// Encoder over the same frozen entries on every Open. Restarting it usefully
// requires every entry's Source to itself be restartable (implement
// resource.Opener); a bare, already-consumed chunk.Source surfaces
// chunk.ErrSourceExhausted on the second run's payload pull instead of silently
// repeating stale or empty data.
func NewZipStreamResource(entries []Entry, opts Options) (*resource.ResourceStream, error) {
	if opts.Compression != CompressionDeflate && opts.Compression != CompressionStored {
		return nil, fmt.Errorf("zipstream: unsupported compression method %v", opts.Compression)
	}
	return resource.NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
		return NewZipStream(entries, opts)
	}), nil
}

// Next implements chunk.Source. The first call starts the archive's single
// producer goroutine; every call after reads whatever bytes it has produced so
// far, blocking until at least one byte is available or the archive ends.
func (e *Encoder) Next(ctx context.Context) (chunk.Chunk, error) {
	if e.ended {
		return nil, chunk.ErrSourceExhausted
	}

	e.once.Do(func() {
		pr, pw := io.Pipe()
		e.pr, e.pw = pr, pw
		go e.produce(ctx, pw)
	})

	buf := make([]byte, 32*1024)
	n, err := e.pr.Read(buf)
	if n > 0 {
		return chunk.Chunk(buf[:n]), nil
	}
	e.ended = true
	if err == io.EOF || err == nil {
		return nil, io.EOF
	}
	return nil, err
}

// Close abandons the archive, releasing the entry source currently in flight (if
// any) and preventing further entries from starting. Safe to call after the
// archive has already ended normally.
func (e *Encoder) Close() error {
	if e.pr == nil {
		return nil
	}
	return e.pr.Close()
}

// produce runs on its own goroutine for the lifetime of one archive, writing the
// full byte stream into pw. It owns the journal and the running archive
// position; nothing else touches either.
func (e *Encoder) produce(ctx context.Context, pw *io.PipeWriter) {
	err := e.encode(ctx, pw)
	pw.CloseWithError(err)
}

func (e *Encoder) encode(ctx context.Context, w io.Writer) error {
	if uint64(len(e.entries)) > 0xFFFFFFFF {
		return ErrTooManyEntries
	}

	dedupe := e.dedupeMaker()

	states := make([]*entryState, len(e.entries))
	var position uint64

	for i, ent := range e.entries {
		name, err := dedupe.Accept(ent.Name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDedupFailure, err)
		}

		st := newEntryState(name)
		st.offset = position
		states[i] = st

		written, err := e.streamEntry(ctx, w, ent, st)
		if err != nil {
			return err
		}
		position += written
	}

	centralDirectoryOffset := position
	var centralDirectorySize uint64

	for _, st := range states {
		header := packCentralDirectoryFileHeader(st, e.compression)
		extra := packZip64ExtraField(st)
		if err := writeAll(w, header, st.nameBinary, extra); err != nil {
			return err
		}
		centralDirectorySize += uint64(len(header)+len(extra)) + uint64(len(st.nameBinary))
	}

	filesCount := uint64(len(states))
	zip64EOCD := packZip64EndOfCentralDirectoryRecord(filesCount, centralDirectoryOffset, centralDirectorySize)
	zip64Locator := packZip64EndOfCentralDirectoryLocator(centralDirectoryOffset + centralDirectorySize)
	eocd := packEndOfCentralDirectoryRecord(filesCount)
	return writeAll(w, zip64EOCD, zip64Locator, eocd)
}

// streamEntry drives one entry's source to completion, emitting its local header,
// payload, and data descriptor, and returns the number of archive bytes it wrote.
// The entry's source is released on every exit path.
func (e *Encoder) streamEntry(ctx context.Context, w io.Writer, ent Entry, st *entryState) (uint64, error) {
	src, err := openEntrySource(ctx, ent.Source)
	if err != nil {
		return 0, err
	}
	defer chunk.Close(src)

	header := packLocalFileHeader(st, e.compression)
	if err := writeAll(w, header, st.nameBinary); err != nil {
		return 0, err
	}

	comp, err := newCompressor(e.compression)
	if err != nil {
		return 0, err
	}

	for {
		c, err := src.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		out, err := comp.process(st, c)
		if err != nil {
			return 0, fmt.Errorf("zipstream: entry %q: %w", ent.Name, err)
		}
		if len(out) > 0 {
			if _, err := w.Write(out); err != nil {
				return 0, err
			}
		}
	}

	tail, err := comp.tail(st)
	if err != nil {
		return 0, fmt.Errorf("zipstream: entry %q: %w", ent.Name, err)
	}
	if len(tail) > 0 {
		if _, err := w.Write(tail); err != nil {
			return 0, err
		}
	}

	descriptor := packDataDescriptor(st)
	if err := writeAll(w, descriptor); err != nil {
		return 0, err
	}

	written := uint64(localFileHeaderLength) + uint64(len(st.nameBinary)) + st.sizeCompressed + uint64(dataDescriptorLength)
	return written, nil
}

// openEntrySource mints a fresh source from src if it is restartable
// (resource.Opener), otherwise uses it directly as a one-shot source.
func openEntrySource(ctx context.Context, src chunk.Source) (chunk.Source, error) {
	if opener, ok := src.(resource.Opener); ok {
		return opener.Open(ctx)
	}
	return src, nil
}

func writeAll(w io.Writer, chunks ...[]byte) error {
	for _, c := range chunks {
		if len(c) == 0 {
			continue
		}
		if _, err := w.Write(c); err != nil {
			return err
		}
	}
	return nil
}
