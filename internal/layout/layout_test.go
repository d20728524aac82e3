package layout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/message"
)

func reader(b []byte) *binary.Reader {
	return binary.NewReader(bytes.NewReader(b), binary.DefaultConfig())
}

func TestReadCompact(t *testing.T) {
	r := reader(nil)
	got, err := Read(r, message.NewCompactLayout([]byte{1, 2, 3, 4, 5}), 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	_, err = Read(r, message.NewCompactLayout([]byte{1}), 4)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadContiguous(t *testing.T) {
	file := make([]byte, 64)
	copy(file[32:], "abcdefgh")
	r := reader(file)

	got, err := Read(r, message.NewContiguousLayout(32, 8), 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdefgh"), got)

	got, err = Read(r, message.NewContiguousLayout(32, 0), 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	_, err = Read(r, message.NewContiguousLayout(32, 4), 8)
	assert.ErrorIs(t, err, ErrTruncated)

	got, err = Read(r, message.NewContiguousLayout(binary.Undefined(8), 0), 6)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 6), got)
}

func TestReadChunkedUnsupported(t *testing.T) {
	_, err := Read(reader(nil), &message.DataLayout{Class: message.LayoutChunked}, 1)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestExtent(t *testing.T) {
	r := reader(nil)
	addr, size, ok := Extent(r, message.NewContiguousLayout(4096, 80))
	assert.True(t, ok)
	assert.Equal(t, uint64(4096), addr)
	assert.Equal(t, uint64(80), size)

	_, _, ok = Extent(r, message.NewContiguousLayout(binary.Undefined(8), 0))
	assert.False(t, ok)
	_, _, ok = Extent(r, message.NewCompactLayout([]byte{1}))
	assert.False(t, ok)
}
