package resource

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
)

func TestResourceStream_OpenMintsIndependentSources(t *testing.T) {
	calls := 0
	rs := NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
		calls++
		return chunk.FromBytes([]byte("hello")), nil
	})

	src1, err := rs.Open(t.Context())
	require.NoError(t, err)
	src2, err := rs.Open(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)

	c, err := src1.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, chunk.Chunk("hello"), c)

	c, err = src2.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, chunk.Chunk("hello"), c)
}

func TestResourceStream_OpenPropagatesFactoryError(t *testing.T) {
	boom := errors.New("boom")
	rs := NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
		return nil, boom
	})

	_, err := rs.Open(t.Context())
	assert.ErrorIs(t, err, boom)
}

func TestResourceStream_UsedDirectlyAsSourceIsLazyAndSingleUse(t *testing.T) {
	calls := 0
	rs := NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
		calls++
		return chunk.FromBytes([]byte("x")), nil
	})

	assert.Equal(t, 0, calls, "factory must not run before the first Next")

	c, err := rs.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, chunk.Chunk("x"), c)
	assert.Equal(t, 1, calls)

	_, err = rs.Next(t.Context())
	assert.ErrorIs(t, err, io.EOF)

	_, err = rs.Next(t.Context())
	assert.ErrorIs(t, err, chunk.ErrSourceExhausted)
	assert.Equal(t, 1, calls, "factory must run at most once when used as a Source")
}

func TestResourceStream_NextAfterFactoryFailureStaysExhausted(t *testing.T) {
	boom := errors.New("boom")
	rs := NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
		return nil, boom
	})

	_, err := rs.Next(t.Context())
	assert.ErrorIs(t, err, boom)

	_, err = rs.Next(t.Context())
	assert.ErrorIs(t, err, chunk.ErrSourceExhausted)
}

func TestResourceStream_CloseReleasesDelegateFromNext(t *testing.T) {
	closed := false
	rs := NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
		return &closeTrackingSource{Source: chunk.FromBytes([]byte("x")), onClose: func() { closed = true }}, nil
	})

	_, err := rs.Next(t.Context())
	require.NoError(t, err)

	require.NoError(t, rs.Close())
	assert.True(t, closed)
}

func TestResourceStream_CloseNoopBeforeAnyNext(t *testing.T) {
	rs := NewResourceStream(func(ctx context.Context) (chunk.Source, error) {
		t.Fatal("factory must not run")
		return nil, nil
	})
	assert.NoError(t, rs.Close())
}

type closeTrackingSource struct {
	chunk.Source
	onClose func()
}

func (c *closeTrackingSource) Close() error {
	c.onClose()
	return nil
}

// A bare one-shot chunk.Source misused across two "iterations" (Open never called a
// second time) surfaces the misuse as ErrSourceExhausted on the first pull after it
// has signalled End, rather than silently yielding wrong data.
func TestBareSource_ReusedAcrossIterationsExhausts(t *testing.T) {
	src := chunk.FromBytes([]byte("only-once"))

	c, err := src.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, chunk.Chunk("only-once"), c)

	_, err = src.Next(t.Context())
	assert.ErrorIs(t, err, io.EOF)

	_, err = src.Next(t.Context())
	assert.ErrorIs(t, err, chunk.ErrSourceExhausted)
}
