package object

import (
	"bytes"
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/message"
)

// maxContinuations bounds the continuation chain of one header.
const maxContinuations = 1024

/*
Version 1 header prefix (16 bytes):
  0  version (1)     1  reserved
  2  message count   4  reference count
  8  header size    12  reserved (alignment)
Each message: type(2) size(2) flags(1) reserved(3) data(size, 8-byte padded).
*/
func readV1(r *binpkg.Reader, address uint64) (*Header, error) {
	prefix, err := r.At(int64(address)).ReadBytes(16)
	if err != nil {
		return nil, err
	}
	size := uint64(binary.LittleEndian.Uint32(prefix[8:12]))
	h := &Header{Version: 1, Address: address, Span: 16 + size}

	blocks := []block{{address + 16, size}}
	for i := 0; len(blocks) > 0; i++ {
		if i > maxContinuations {
			return nil, fmt.Errorf("%w: continuation chain too long", ErrInvalidHeader)
		}
		b := blocks[0]
		blocks = blocks[1:]
		data, err := r.At(int64(b.addr)).ReadBytes(int(b.size))
		if err != nil {
			return nil, err
		}
		for off := 0; off+8 <= len(data); {
			typ := message.Type(binary.LittleEndian.Uint16(data[off:]))
			n := int(binary.LittleEndian.Uint16(data[off+2:]))
			flags := data[off+4]
			off += 8
			if off+n > len(data) {
				return nil, fmt.Errorf("%w: v1 message overruns header", ErrInvalidHeader)
			}
			body := data[off : off+n]
			off += (n + 7) &^ 7
			if more, ok := h.add(typ, body, flags, r); ok {
				blocks = append(blocks, more)
			}
		}
	}
	return h, nil
}

/*
Version 2 header:
  "OHDR" version(1) flags(1) [times 16 if flags&0x20] [phase 4 if flags&0x10]
  chunk0 size (1<<(flags&3) bytes) messages... checksum(4)
Each message: type(1) size(2) flags(1) [creation order 2 if flags&0x04] data.
*/
func readV2(r *binpkg.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address) + 4)
	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	flags, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if flags&0x20 != 0 {
		hr.Skip(16)
	}
	if flags&0x10 != 0 {
		hr.Skip(4)
	}
	chunkSize, err := hr.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, err
	}
	start := uint64(hr.Pos())
	prefixLen := start - address
	h := &Header{Version: 2, Address: address, Flags: flags, Span: prefixLen + chunkSize + 4}

	raw, err := r.At(int64(address)).ReadBytes(int(h.Span))
	if err != nil {
		return nil, err
	}
	if err := verify(raw); err != nil {
		return nil, fmt.Errorf("header at %d: %w", address, err)
	}

	orderTracked := flags&0x04 != 0
	blocks := h.parseV2Chunk(raw[prefixLen:prefixLen+chunkSize], orderTracked, r)
	for i := 0; len(blocks) > 0; i++ {
		if i > maxContinuations {
			return nil, fmt.Errorf("%w: continuation chain too long", ErrInvalidHeader)
		}
		b := blocks[0]
		blocks = blocks[1:]
		data, err := r.At(int64(b.addr)).ReadBytes(int(b.size))
		if err != nil {
			return nil, err
		}
		if len(data) < 8 || !bytes.Equal(data[:4], signatureCont) {
			return nil, fmt.Errorf("%w: bad continuation block at %d", ErrInvalidHeader, b.addr)
		}
		if err := verify(data); err != nil {
			return nil, fmt.Errorf("continuation at %d: %w", b.addr, err)
		}
		blocks = append(blocks, h.parseV2Chunk(data[4:len(data)-4], orderTracked, r)...)
	}
	return h, nil
}

func (h *Header) parseV2Chunk(data []byte, orderTracked bool, r *binpkg.Reader) []block {
	headLen := 4
	if orderTracked {
		headLen = 6
	}
	var more []block
	for off := 0; off+headLen <= len(data); {
		typ := message.Type(data[off])
		n := int(binary.LittleEndian.Uint16(data[off+1:]))
		flags := data[off+3]
		off += headLen
		if off+n > len(data) {
			break
		}
		if b, ok := h.add(typ, data[off:off+n], flags, r); ok {
			more = append(more, b)
		}
		off += n
	}
	return more
}

type block struct {
	addr, size uint64
}

// add parses one message body and appends it. A continuation is returned
// as a block to read instead of being stored.
func (h *Header) add(typ message.Type, body []byte, flags uint8, r *binpkg.Reader) (block, bool) {
	if typ == message.TypeNIL {
		return block{}, false
	}
	msg := message.Parse(typ, body, flags, r)
	if c, ok := msg.(*message.Continuation); ok {
		return block{c.Offset, c.Length}, true
	}
	h.Messages = append(h.Messages, msg)
	return block{}, false
}

func verify(raw []byte) error {
	n := len(raw) - 4
	if n < 0 {
		return ErrInvalidHeader
	}
	if binary.LittleEndian.Uint32(raw[n:]) != binpkg.Lookup3Checksum(raw[:n]) {
		return ErrChecksumMismatch
	}
	return nil
}
