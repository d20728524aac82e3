package binary

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	for _, size := range []int{2, 4, 8} {
		cfg := Config{ByteOrder: binary.LittleEndian, OffsetSize: size, LengthSize: size}
		require.NoError(t, cfg.Validate())

		w, buf := NewBufferWriter(cfg)
		require.NoError(t, w.WriteUint8(0xAB))
		require.NoError(t, w.WriteUint16(0x1234))
		require.NoError(t, w.WriteUint32(0xCAFEBABE))
		require.NoError(t, w.WriteOffset(0x0102))
		require.NoError(t, w.WriteLength(w.UndefinedOffset()))
		require.NoError(t, w.WriteZeros(3))

		r := NewReader(bytes.NewReader(buf.Bytes()), cfg)
		u8, err := r.ReadUint8()
		require.NoError(t, err)
		assert.Equal(t, uint8(0xAB), u8)
		u16, err := r.ReadUint16()
		require.NoError(t, err)
		assert.Equal(t, uint16(0x1234), u16)
		u32, err := r.ReadUint32()
		require.NoError(t, err)
		assert.Equal(t, uint32(0xCAFEBABE), u32)
		off, err := r.ReadOffset()
		require.NoError(t, err)
		assert.Equal(t, uint64(0x0102), off)
		undef, err := r.ReadLength()
		require.NoError(t, err)
		assert.True(t, r.IsUndefinedOffset(undef))
		assert.Equal(t, int64(1+2+4+2*size+3), int64(buf.Len()))
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	err := Config{ByteOrder: binary.LittleEndian, OffsetSize: 3, LengthSize: 8}.Validate()
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestReaderAlign(t *testing.T) {
	r := NewReader(bytes.NewReader(make([]byte, 32)), DefaultConfig())
	r.Skip(3)
	r.Align(8)
	assert.Equal(t, int64(8), r.Pos())
	r.Align(8)
	assert.Equal(t, int64(8), r.Pos())
}

func TestBigEndianUint(t *testing.T) {
	buf := make([]byte, 4)
	EncodeUint(buf, 0x01020304, 4, binary.BigEndian)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
	assert.Equal(t, uint64(0x01020304), DecodeUint(buf, 4, binary.BigEndian))
}
