package chunk

import (
	"context"
	"io"
)

// bytesSource is a Source over a single, fully-buffered chunk. It yields the whole
// slice on the first Next call and io.EOF afterward.
type bytesSource struct {
	data      []byte
	delivered bool
	done      bool
}

// FromBytes wraps an already-buffered byte slice as a single-chunk Source. The slice
// is not copied; callers must not mutate it after passing it in.
func FromBytes(data []byte) Source {
	return &bytesSource{data: data}
}

func (s *bytesSource) Next(_ context.Context) (Chunk, error) {
	if s.done {
		return nil, ErrSourceExhausted
	}
	if s.delivered {
		s.done = true
		return nil, io.EOF
	}
	s.delivered = true
	return Chunk(s.data), nil
}

// readerSource adapts an io.Reader into a Source, reading up to chunkSize bytes per
// Next call. If r implements io.Closer, Close releases it.
type readerSource struct {
	r         io.Reader
	chunkSize int
	pending   error // End or Fail to report on the next call, once any held-back chunk is delivered
	ended     bool
}

const defaultReaderChunkSize = 32 * 1024

// FromReader wraps r as a Source that reads chunkSize-sized chunks. A chunkSize of 0
// uses a 32KiB default. If r implements io.Closer, the returned Source implements
// Closer too and releases r on Close.
func FromReader(r io.Reader, chunkSize int) Source {
	if chunkSize <= 0 {
		chunkSize = defaultReaderChunkSize
	}
	return &readerSource{r: r, chunkSize: chunkSize}
}

func (s *readerSource) Next(_ context.Context) (Chunk, error) {
	if s.ended {
		return nil, ErrSourceExhausted
	}

	if s.pending != nil {
		err := s.pending
		s.ended = true
		return nil, err
	}

	buf := make([]byte, s.chunkSize)
	n, err := s.r.Read(buf)
	if n > 0 {
		// io.Reader may return n > 0 alongside io.EOF (or another error); a Source
		// Next call yields a chunk or End/Fail, never both, so the chunk is
		// delivered now and the error held back for the next call.
		if err != nil {
			s.pending = err
		}
		return Chunk(buf[:n]), nil
	}

	s.ended = true
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (s *readerSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// sourceReader adapts a Source into an io.Reader, the inverse of FromReader. It is
// how a chunk.Source (e.g. a zipstream.Encoder) is handed to io.Reader-shaped
// consumers such as an upload SDK or os.File, without buffering the whole source.
type sourceReader struct {
	ctx context.Context
	src Source
	buf Chunk
	err error
}

// NewReader adapts src into an io.Reader, pulling one chunk at a time via ctx and
// holding back any leftover bytes between Read calls. Read returns io.EOF once src
// signals End; any other error from Next is returned verbatim, unwrapped.
func NewReader(ctx context.Context, src Source) io.Reader {
	return &sourceReader{ctx: ctx, src: src}
}

func (r *sourceReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		chunk, err := r.src.Next(r.ctx)
		if err != nil {
			r.err = err
			if len(chunk) == 0 {
				return 0, err
			}
		}
		r.buf = chunk
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
