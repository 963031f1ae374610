package zipstream

import (
	"bytes"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/flate"
)

// compressor incrementally processes one entry's payload, updating the entry's
// running CRC-32 and compressed/uncompressed sizes as chunks pass through, and
// emits any compressed bytes that result. It is stateful and single-use: one per
// entry, for the duration of that entry's payload loop only.
type compressor interface {
	// process feeds chunk through the compressor, updating st, and returns any
	// output produced. May return nil if the compressor is still buffering.
	process(st *entryState, chunk []byte) ([]byte, error)

	// tail flushes any buffered output once the entry's last chunk has been
	// processed. May return nil.
	tail(st *entryState) ([]byte, error)
}

// storedCompressor passes bytes through unchanged; compressed size tracks
// uncompressed size exactly.
type storedCompressor struct{}

func newStoredCompressor() compressor { return storedCompressor{} }

func (storedCompressor) process(st *entryState, chunk []byte) ([]byte, error) {
	st.crc = crc32.Update(st.crc, crc32.IEEETable, chunk)
	st.sizeUncompressed += uint64(len(chunk))
	st.sizeCompressed = st.sizeUncompressed
	return chunk, nil
}

func (storedCompressor) tail(*entryState) ([]byte, error) { return nil, nil }

// deflateCompressor wraps klauspost/compress/flate, flushing after every chunk so
// compressed output streams out incrementally instead of being withheld until the
// entry's last byte.
type deflateCompressor struct {
	buf *bytes.Buffer
	w   *flate.Writer
}

func newDeflateCompressor() (compressor, error) {
	buf := new(bytes.Buffer)
	w, err := flate.NewWriter(buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("zipstream: create deflate writer: %w", err)
	}
	return &deflateCompressor{buf: buf, w: w}, nil
}

func (d *deflateCompressor) process(st *entryState, chunk []byte) ([]byte, error) {
	st.crc = crc32.Update(st.crc, crc32.IEEETable, chunk)
	st.sizeUncompressed += uint64(len(chunk))

	if _, err := d.w.Write(chunk); err != nil {
		return nil, fmt.Errorf("zipstream: deflate write: %w", err)
	}
	if err := d.w.Flush(); err != nil {
		return nil, fmt.Errorf("zipstream: deflate flush: %w", err)
	}
	out := d.drain()
	st.sizeCompressed += uint64(len(out))
	return out, nil
}

func (d *deflateCompressor) tail(st *entryState) ([]byte, error) {
	if err := d.w.Close(); err != nil {
		return nil, fmt.Errorf("zipstream: deflate close: %w", err)
	}
	out := d.drain()
	st.sizeCompressed += uint64(len(out))
	return out, nil
}

func (d *deflateCompressor) drain() []byte {
	if d.buf.Len() == 0 {
		return nil
	}
	out := make([]byte, d.buf.Len())
	copy(out, d.buf.Bytes())
	d.buf.Reset()
	return out
}

func newCompressor(method CompressionMethod) (compressor, error) {
	switch method {
	case CompressionStored:
		return newStoredCompressor(), nil
	case CompressionDeflate:
		return newDeflateCompressor()
	default:
		return nil, fmt.Errorf("zipstream: unsupported compression method %v", method)
	}
}
