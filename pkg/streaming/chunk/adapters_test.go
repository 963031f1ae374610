package chunk

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, src Source) ([]byte, error) {
	t.Helper()
	var out []byte
	for {
		c, err := src.Next(t.Context())
		if err != nil {
			if err == io.EOF {
				return out, nil
			}
			return out, err
		}
		out = append(out, c...)
	}
}

func TestFromBytes_SingleChunkThenEnd(t *testing.T) {
	src := FromBytes([]byte("hello"))

	c, err := src.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, Chunk("hello"), c)

	_, err = src.Next(t.Context())
	assert.ErrorIs(t, err, io.EOF)

	_, err = src.Next(t.Context())
	assert.ErrorIs(t, err, ErrSourceExhausted)
}

func TestFromBytes_Empty(t *testing.T) {
	src := FromBytes(nil)

	c, err := src.Next(t.Context())
	require.NoError(t, err)
	assert.Len(t, c, 0)

	_, err = src.Next(t.Context())
	assert.ErrorIs(t, err, io.EOF)
}

func TestFromReader_ChunksAtSize(t *testing.T) {
	src := FromReader(bytes.NewReader([]byte("abcdefgh")), 3)

	out, err := drain(t, src)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdefgh"), out)

	_, err = src.Next(t.Context())
	assert.ErrorIs(t, err, ErrSourceExhausted)
}

func TestFromReader_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	src := FromReader(&failingReader{err: boom}, 0)

	_, err := src.Next(t.Context())
	assert.ErrorIs(t, err, boom)

	_, err = src.Next(t.Context())
	assert.ErrorIs(t, err, ErrSourceExhausted)
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestFromReader_ClosesUnderlying(t *testing.T) {
	rc := &closeTrackingReader{Reader: bytes.NewReader([]byte("x"))}
	src := FromReader(rc, 0)

	require.NoError(t, Close(src))
	assert.True(t, rc.closed)
}

type closeTrackingReader struct {
	io.Reader
	closed bool
}

func (c *closeTrackingReader) Close() error {
	c.closed = true
	return nil
}

func TestClose_NoopWhenNotCloser(t *testing.T) {
	assert.NoError(t, Close(FromBytes([]byte("x"))))
}
