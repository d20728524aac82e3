package superblock

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-rfml/internal/binary"
)

// Signature is the 8-byte HDF5 format signature.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

var searchOffsets = []int64{0, 512, 1024, 2048}

var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrChecksumMismatch   = errors.New("superblock checksum mismatch")
)

// Superblock is the decoded file-level metadata.
type Superblock struct {
	Version    uint8
	OffsetSize uint8
	LengthSize uint8
	Flags      uint8

	BaseAddress      uint64
	ExtensionAddress uint64
	EOFAddress       uint64
	RootAddress      uint64

	// Root symbol table entry scratch pad; versions 0 and 1 only.
	RootCacheType uint32
	RootBTree     uint64
	RootHeap      uint64

	// FileOffset is where the signature was found.
	FileOffset int64
}

// New returns the superblock this module writes for a new file.
func New() *Superblock {
	return &Superblock{
		Version:          2,
		OffsetSize:       8,
		LengthSize:       8,
		ExtensionAddress: binary.Undefined(8),
	}
}

// Config returns the reader configuration for the file.
func (sb *Superblock) Config() binary.Config {
	cfg := binary.DefaultConfig()
	cfg.OffsetSize = int(sb.OffsetSize)
	cfg.LengthSize = int(sb.LengthSize)
	return cfg
}

// Legacy reports whether the file uses the version 0/1 layout with symbol
// table groups.
func (sb *Superblock) Legacy() bool { return sb.Version < 2 }

// Read finds and decodes the superblock.
func Read(r io.ReaderAt) (*Superblock, error) {
	sig := make([]byte, 9)
	for _, off := range searchOffsets {
		if _, err := r.ReadAt(sig, off); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if !bytes.Equal(sig[:8], Signature) {
			continue
		}
		var (
			sb  *Superblock
			err error
		)
		switch sig[8] {
		case 0, 1:
			sb, err = readV0(r, off, sig[8])
		case 2, 3:
			sb, err = readV2(r, off, sig[8])
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, sig[8])
		}
		if err != nil {
			return nil, err
		}
		sb.FileOffset = off
		return sb, nil
	}
	return nil, ErrNotHDF5
}

/*
Version 0/1 layout after the signature:
  9  version, free-space version, root entry version, reserved,
     shared header version, offset size, length size, reserved
  16 group leaf K(2) group internal K(2) consistency flags(4)
  24 [v1: indexed storage K(2) reserved(2)]
     base, free-space, EOF, driver info addresses (O each)
     root symbol table entry:
       link name offset(O) header address(O) cache type(4) reserved(4)
       scratch(16) = B-tree address(O) local heap address(O)
*/
func readV0(r io.ReaderAt, off int64, version uint8) (*Superblock, error) {
	head := make([]byte, 16)
	if _, err := r.ReadAt(head, off+8); err != nil {
		return nil, fmt.Errorf("read superblock: %w", err)
	}
	sb := &Superblock{
		Version:    version,
		OffsetSize: head[5],
		LengthSize: head[6],
	}
	if err := sb.Config().Validate(); err != nil {
		return nil, err
	}
	pos := off + 24
	if version == 1 {
		pos += 4
	}
	br := binary.NewReader(r, sb.Config()).At(pos)
	fields := []*uint64{&sb.BaseAddress, nil, &sb.EOFAddress, nil, nil, &sb.RootAddress}
	for _, f := range fields {
		v, err := br.ReadOffset()
		if err != nil {
			return nil, fmt.Errorf("read superblock: %w", err)
		}
		if f != nil {
			*f = v
		}
	}
	ct, err := br.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("read superblock: %w", err)
	}
	sb.RootCacheType = ct
	br.Skip(4)
	if ct == 1 {
		if sb.RootBTree, err = br.ReadOffset(); err != nil {
			return nil, err
		}
		if sb.RootHeap, err = br.ReadOffset(); err != nil {
			return nil, err
		}
	}
	sb.ExtensionAddress = binary.Undefined(int(sb.OffsetSize))
	return sb, nil
}

/*
Version 2/3 layout:
  signature(8) version(1) offset size(1) length size(1) flags(1)
  base, extension, EOF, root header addresses (O each) checksum(4)
*/
func readV2(r io.ReaderAt, off int64, version uint8) (*Superblock, error) {
	head := make([]byte, 12)
	if _, err := r.ReadAt(head, off); err != nil {
		return nil, fmt.Errorf("read superblock: %w", err)
	}
	sb := &Superblock{
		Version:    version,
		OffsetSize: head[9],
		LengthSize: head[10],
		Flags:      head[11],
	}
	if err := sb.Config().Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, sb.Size())
	if _, err := r.ReadAt(raw, off); err != nil {
		return nil, fmt.Errorf("read superblock: %w", err)
	}
	n := len(raw) - 4
	if binary.DecodeUint(raw[n:], 4, sb.Config().ByteOrder) != uint64(binary.Lookup3Checksum(raw[:n])) {
		return nil, ErrChecksumMismatch
	}
	o := int(sb.OffsetSize)
	order := sb.Config().ByteOrder
	for i, f := range []*uint64{&sb.BaseAddress, &sb.ExtensionAddress, &sb.EOFAddress, &sb.RootAddress} {
		*f = binary.DecodeUint(raw[12+i*o:], o, order)
	}
	return sb, nil
}

// Size is the encoded size of a version 2/3 superblock.
func (sb *Superblock) Size() int {
	return 12 + 4*int(sb.OffsetSize) + 4
}

// Encode returns the version 2 encoding of sb, checksum included.
func (sb *Superblock) Encode() ([]byte, error) {
	w, buf := binary.NewBufferWriter(sb.Config())
	w.WriteBytes(Signature)
	w.WriteUint8(2)
	w.WriteUint8(sb.OffsetSize)
	w.WriteUint8(sb.LengthSize)
	w.WriteUint8(sb.Flags)
	for _, v := range []uint64{sb.BaseAddress, sb.ExtensionAddress, sb.EOFAddress, sb.RootAddress} {
		if err := w.WriteOffset(v); err != nil {
			return nil, err
		}
	}
	if err := w.WriteUint32(binary.Lookup3Checksum(buf.Bytes())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
