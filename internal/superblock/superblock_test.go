package superblock

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRead(t *testing.T) {
	sb := New()
	sb.EOFAddress = 4096
	sb.RootAddress = 48
	raw, err := sb.Encode()
	require.NoError(t, err)
	assert.Len(t, raw, sb.Size())

	got, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, uint8(2), got.Version)
	assert.Equal(t, uint64(4096), got.EOFAddress)
	assert.Equal(t, uint64(48), got.RootAddress)
	assert.Equal(t, sb.ExtensionAddress, got.ExtensionAddress)
	assert.False(t, got.Legacy())
}

func TestReadUserBlock(t *testing.T) {
	sb := New()
	sb.RootAddress = 600
	raw, err := sb.Encode()
	require.NoError(t, err)
	file := append(make([]byte, 512), raw...)

	got, err := Read(bytes.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, int64(512), got.FileOffset)
	assert.Equal(t, uint64(600), got.RootAddress)
}

func TestReadChecksum(t *testing.T) {
	raw, err := New().Encode()
	require.NoError(t, err)
	raw[20] ^= 1
	_, err = Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReadNotHDF5(t *testing.T) {
	_, err := Read(bytes.NewReader(make([]byte, 4096)))
	assert.ErrorIs(t, err, ErrNotHDF5)
	_, err = Read(bytes.NewReader([]byte("short")))
	assert.ErrorIs(t, err, ErrNotHDF5)
}

func TestReadV0(t *testing.T) {
	raw := make([]byte, 96+16)
	copy(raw, Signature)
	raw[13], raw[14] = 8, 8
	le := binary.LittleEndian
	le.PutUint64(raw[24:], 0)
	le.PutUint64(raw[32:], ^uint64(0))
	le.PutUint64(raw[40:], 2048)
	le.PutUint64(raw[48:], ^uint64(0))
	le.PutUint64(raw[56:], 0)
	le.PutUint64(raw[64:], 96)
	le.PutUint32(raw[72:], 1)
	le.PutUint64(raw[80:], 136)
	le.PutUint64(raw[88:], 680)

	sb, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, sb.Legacy())
	assert.Equal(t, uint64(2048), sb.EOFAddress)
	assert.Equal(t, uint64(96), sb.RootAddress)
	assert.Equal(t, uint64(136), sb.RootBTree)
	assert.Equal(t, uint64(680), sb.RootHeap)
}
