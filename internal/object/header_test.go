package object

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	binpkg "github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/message"
)

func reader(b []byte) *binpkg.Reader {
	return binpkg.NewReader(bytes.NewReader(b), binpkg.DefaultConfig())
}

func TestEncodeReadDataset(t *testing.T) {
	cfg := binpkg.DefaultConfig()
	r := reader(nil)
	dt := message.NewFloatDatatype(8, message.OrderLE)
	ds := message.NewDataspace([]uint64{2, 3})
	attr := message.NewAttribute("units", message.NewStringDatatype(4, message.PadSpacePad, message.CharsetASCII),
		message.NewDataspace([]uint64{1}), []byte("m/s "))
	shared := message.Parse(message.TypeFillValue, []byte{1, 2, 3, 4}, message.FlagShared, r)

	msgs := append(DatasetMessages(ds, dt, message.NewContiguousLayout(4096, 48)), attr, shared)
	raw, err := Encode(cfg, msgs, 0)
	require.NoError(t, err)

	h, err := Read(reader(raw), 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), h.Version)
	assert.Equal(t, uint64(len(raw)), h.Span)
	require.Len(t, h.Messages, 5)

	require.NotNil(t, h.Dataspace())
	assert.Equal(t, []uint64{2, 3}, h.Dataspace().Dimensions)
	require.NotNil(t, h.Datatype())
	assert.True(t, h.Datatype().Equal(dt))
	require.NotNil(t, h.Layout())
	assert.Equal(t, uint64(4096), h.Layout().Address)
	assert.Equal(t, uint64(48), h.Layout().Size)

	attrs := h.Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, "units", attrs[0].Name)
	assert.Equal(t, []byte("m/s "), attrs[0].Data)

	assert.True(t, h.Shared())
	u, ok := h.Find(message.TypeFillValue).(*message.Unknown)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, u.Data)
}

func TestEncodeMinChunk(t *testing.T) {
	cfg := binpkg.DefaultConfig()
	links := []*message.Link{message.NewHardLink("data", 8192)}
	raw, err := Encode(cfg, GroupMessages(links), MinGroupChunk)
	require.NoError(t, err)
	// signature, version, flags, 1-byte chunk size, chunk, checksum
	assert.Equal(t, 4+1+1+1+MinGroupChunk+4, len(raw))

	h, err := Read(reader(raw), 0)
	require.NoError(t, err)
	require.NotNil(t, h.LinkInfo())
	got := h.Links()
	require.Len(t, got, 1)
	assert.Equal(t, "data", got[0].Name)
	assert.Equal(t, uint64(8192), got[0].ObjectAddress)
}

func TestEncodeTinyPadding(t *testing.T) {
	cfg := binpkg.DefaultConfig()
	msgs := []message.Message{message.NewDataspace([]uint64{4})}
	raw, err := Encode(cfg, msgs, 0)
	require.NoError(t, err)
	used := len(raw) - 11

	// Ask for one byte more than the messages need; the NIL filler must
	// still fit a full message prefix.
	raw, err = Encode(cfg, msgs, used+1)
	require.NoError(t, err)
	h, err := Read(reader(raw), 0)
	require.NoError(t, err)
	assert.Len(t, h.Messages, 1)
	assert.Equal(t, used+messageHeaderSize, len(raw)-11)
}

func TestEncodeDropsContinuation(t *testing.T) {
	msgs := []message.Message{
		&message.Continuation{Offset: 1, Length: 2},
		&message.SymbolTable{},
		message.NewScalarDataspace(),
	}
	raw, err := Encode(binpkg.DefaultConfig(), msgs, 0)
	require.NoError(t, err)
	h, err := Read(reader(raw), 0)
	require.NoError(t, err)
	require.Len(t, h.Messages, 1)
	assert.Equal(t, message.TypeDataspace, h.Messages[0].Type())
}

func TestReadChecksumMismatch(t *testing.T) {
	raw, err := Encode(binpkg.DefaultConfig(), []message.Message{message.NewScalarDataspace()}, 0)
	require.NoError(t, err)
	raw[9] ^= 0xFF
	_, err = Read(reader(raw), 0)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReadInvalid(t *testing.T) {
	_, err := Read(reader([]byte("JUNKJUNKJUNKJUNK")), 0)
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

// v1Message frames one version 1 header message.
func v1Message(typ uint16, body []byte) []byte {
	padded := (len(body) + 7) &^ 7
	out := make([]byte, 8+padded)
	binary.LittleEndian.PutUint16(out, typ)
	binary.LittleEndian.PutUint16(out[2:], uint16(padded))
	copy(out[8:], body)
	return out
}

func TestReadV1WithContinuation(t *testing.T) {
	// Continuation block lives at 256.
	cont := make([]byte, 16)
	binary.LittleEndian.PutUint64(cont, 256)
	binary.LittleEndian.PutUint64(cont[8:], 16)

	var body []byte
	body = append(body, v1Message(0x00FE, []byte{0xAA, 0xBB})...)
	body = append(body, v1Message(uint16(message.TypeNIL), make([]byte, 8))...)
	body = append(body, v1Message(uint16(message.TypeObjectHeaderContinuation), cont)...)

	file := make([]byte, 512)
	file[0] = 1
	binary.LittleEndian.PutUint16(file[2:], 3)
	binary.LittleEndian.PutUint32(file[4:], 1)
	binary.LittleEndian.PutUint32(file[8:], uint32(len(body)))
	copy(file[16:], body)
	copy(file[256:], v1Message(0x00FD, []byte{1, 2, 3, 4, 5, 6, 7, 8}))

	h, err := Read(reader(file), 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), h.Version)
	assert.Equal(t, uint64(16+len(body)), h.Span)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, message.Type(0x00FE), h.Messages[0].Type())
	assert.Equal(t, message.Type(0x00FD), h.Messages[1].Type())
	u := h.Messages[0].(*message.Unknown)
	assert.Equal(t, []byte{0xAA, 0xBB, 0, 0, 0, 0, 0, 0}, u.Data)
	assert.False(t, h.Shared())
}
