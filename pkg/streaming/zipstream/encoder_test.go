package zipstream

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
	"github.com/bundlestream/bundlestream/pkg/streaming/resource"
)

// drainArchive pulls every chunk from src until End, returning the concatenated
// archive bytes.
func drainArchive(t *testing.T, src chunk.Source) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	for {
		c, err := src.Next(context.Background())
		if err != nil {
			if err == io.EOF {
				return out.Bytes(), nil
			}
			return out.Bytes(), err
		}
		out.Write(c)
	}
}

// extract runs the archive bytes through the standard library's ZIP reader to
// confirm a general-purpose reader can open what the encoder produced.
func extract(t *testing.T, archive []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = data
	}
	return out
}

// orderedNames mirrors extract but preserves the file order recorded in the
// central directory, since map iteration would lose it.
func orderedNames(t *testing.T, archive []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	return names
}

func TestEncoder_RoundTrip_S1_StoredSingleEntry(t *testing.T) {
	enc, err := NewZipStream([]Entry{
		NewEntry("a.txt", chunk.FromBytes([]byte("hi"))),
	}, Options{Compression: CompressionStored})
	require.NoError(t, err)

	archive, err := drainArchive(t, enc)
	require.NoError(t, err)

	minLen := 30 + 5 + 2 + 16 + 46 + 5 + 22
	assert.GreaterOrEqual(t, len(archive), minLen)
	assert.Equal(t, uint32(signatureLocalFileHeader), binaryLE32(archive[:4]))

	files := extract(t, archive)
	assert.Equal(t, map[string][]byte{"a.txt": []byte("hi")}, files)
}

func TestEncoder_RoundTrip_Deflate(t *testing.T) {
	enc, err := NewZipStream([]Entry{
		NewEntry("big.bin", chunk.FromBytes(bytes.Repeat([]byte("abcabcabc "), 5000))),
	}, Options{Compression: CompressionDeflate})
	require.NoError(t, err)

	archive, err := drainArchive(t, enc)
	require.NoError(t, err)

	files := extract(t, archive)
	assert.Equal(t, bytes.Repeat([]byte("abcabcabc "), 5000), files["big.bin"])
}

func TestEncoder_RoundTrip_MultipleEntriesPreserveBytes(t *testing.T) {
	enc, err := NewZipStream([]Entry{
		NewEntry("one.txt", chunk.FromBytes([]byte("one"))),
		NewEntry("two.txt", chunk.FromReader(bytes.NewReader([]byte("two-via-reader")), 4)),
		NewEntry("empty.txt", chunk.FromBytes(nil)),
	}, Options{})
	require.NoError(t, err)

	archive, err := drainArchive(t, enc)
	require.NoError(t, err)

	files := extract(t, archive)
	assert.Equal(t, []byte("one"), files["one.txt"])
	assert.Equal(t, []byte("two-via-reader"), files["two.txt"])
	assert.Equal(t, []byte{}, files["empty.txt"])
}

func TestEncoder_S2_DefaultDedupThreeIdenticalNames(t *testing.T) {
	enc, err := NewZipStream([]Entry{
		NewEntry("a.txt", chunk.FromBytes(nil)),
		NewEntry("a.txt", chunk.FromBytes(nil)),
		NewEntry("a.txt", chunk.FromBytes(nil)),
	}, Options{})
	require.NoError(t, err)

	archive, err := drainArchive(t, enc)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "a (1).txt", "a (2).txt"}, orderedNames(t, archive))
}

func TestEncoder_S3_AbsorbsAlreadyDisambiguatedName(t *testing.T) {
	enc, err := NewZipStream([]Entry{
		NewEntry("a.txt", chunk.FromBytes(nil)),
		NewEntry("a (1).txt", chunk.FromBytes(nil)),
		NewEntry("a.txt", chunk.FromBytes(nil)),
	}, Options{})
	require.NoError(t, err)

	archive, err := drainArchive(t, enc)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "a (1).txt", "a (2).txt"}, orderedNames(t, archive))
}

func TestEncoder_S4_DedupDisabledKeepsDuplicateNames(t *testing.T) {
	enc, err := NewZipStream([]Entry{
		NewEntry("a.txt", chunk.FromBytes([]byte("x"))),
		NewEntry("a.txt", chunk.FromBytes([]byte("y"))),
	}, Options{Deduplicator: NoDeduplicator})
	require.NoError(t, err)

	archive, err := drainArchive(t, enc)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "a.txt"}, orderedNames(t, archive))
}

func TestEncoder_S5_ResourceStreamRestartsIdentically(t *testing.T) {
	rs := resource.NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
		return &twoChunkSource{chunks: [][]byte{[]byte("he"), []byte("llo")}}, nil
	})

	entries := []Entry{NewEntry("greeting.txt", rs)}
	enc1, err := NewZipStream(entries, Options{})
	require.NoError(t, err)
	archive1, err := drainArchive(t, enc1)
	require.NoError(t, err)

	enc2, err := NewZipStream(entries, Options{})
	require.NoError(t, err)
	archive2, err := drainArchive(t, enc2)
	require.NoError(t, err)

	assert.Equal(t, extract(t, archive1), extract(t, archive2))
	assert.Equal(t, map[string][]byte{"greeting.txt": []byte("hello")}, extract(t, archive1))
}

func TestEncoder_S5_BareSourceReuseSurfacesExhausted(t *testing.T) {
	bare := &twoChunkSource{chunks: [][]byte{[]byte("he"), []byte("llo")}}
	entries := []Entry{NewEntry("greeting.txt", bare)}

	enc1, err := NewZipStream(entries, Options{})
	require.NoError(t, err)
	_, err = drainArchive(t, enc1)
	require.NoError(t, err)

	enc2, err := NewZipStream(entries, Options{})
	require.NoError(t, err)
	_, err = drainArchive(t, enc2)
	assert.ErrorIs(t, err, chunk.ErrSourceExhausted)
}

func TestEncoder_S6_EntrySourceFailureAbortsArchive(t *testing.T) {
	boom := errors.New("boom")
	enc, err := NewZipStream([]Entry{
		NewEntry("bad.txt", &failAfterOneChunkSource{chunk: []byte("x"), err: boom}),
	}, Options{})
	require.NoError(t, err)

	_, err = drainArchive(t, enc)
	assert.ErrorIs(t, err, boom)
}

func TestEncoder_S7_EmptyArchiveIsValid(t *testing.T) {
	enc, err := NewZipStream(nil, Options{})
	require.NoError(t, err)

	archive, err := drainArchive(t, enc)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestEncoder_Laziness_ConstructionPullsNothing(t *testing.T) {
	pulled := false
	src := &trackingSource{onNext: func() { pulled = true }}

	_, err := NewZipStream([]Entry{NewEntry("a.txt", src)}, Options{})
	require.NoError(t, err)

	assert.False(t, pulled, "constructing the encoder must not pull any entry source")
}

func TestEncoder_OrderPreservedAcrossEntries(t *testing.T) {
	enc, err := NewZipStream([]Entry{
		NewEntry("z.txt", chunk.FromBytes([]byte("z"))),
		NewEntry("a.txt", chunk.FromBytes([]byte("a"))),
		NewEntry("m.txt", chunk.FromBytes([]byte("m"))),
	}, Options{})
	require.NoError(t, err)

	archive, err := drainArchive(t, enc)
	require.NoError(t, err)

	assert.Equal(t, []string{"z.txt", "a.txt", "m.txt"}, orderedNames(t, archive))
}

func binaryLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

type twoChunkSource struct {
	chunks [][]byte
	idx    int
	done   bool
}

func (s *twoChunkSource) Next(context.Context) (chunk.Chunk, error) {
	if s.done {
		return nil, chunk.ErrSourceExhausted
	}
	if s.idx >= len(s.chunks) {
		s.done = true
		return nil, io.EOF
	}
	c := s.chunks[s.idx]
	s.idx++
	return chunk.Chunk(c), nil
}

type failAfterOneChunkSource struct {
	chunk     []byte
	err       error
	delivered bool
	failed    bool
}

func (s *failAfterOneChunkSource) Next(context.Context) (chunk.Chunk, error) {
	if s.failed {
		return nil, chunk.ErrSourceExhausted
	}
	if !s.delivered {
		s.delivered = true
		return chunk.Chunk(s.chunk), nil
	}
	s.failed = true
	return nil, s.err
}

type trackingSource struct {
	onNext func()
}

func (s *trackingSource) Next(context.Context) (chunk.Chunk, error) {
	s.onNext()
	return nil, io.EOF
}
