// Package binary provides the low-level framing used by the HDF5 engine:
// positioned readers and writers with file-dependent offset and length
// widths, and the metadata checksum.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSize is returned when an offset or length width is not 2, 4 or 8.
var ErrInvalidSize = errors.New("invalid offset/length size: must be 2, 4, or 8")

// Config carries the widths in effect for a file. HDF5 metadata is always
// little-endian; ByteOrder exists so tests can exercise both orders.
type Config struct {
	ByteOrder  binary.ByteOrder
	OffsetSize int
	LengthSize int
}

// DefaultConfig is the configuration used before the superblock is known and
// for every file this module writes.
func DefaultConfig() Config {
	return Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: 8,
		LengthSize: 8,
	}
}

// Validate reports whether the widths are ones HDF5 allows.
func (c Config) Validate() error {
	for _, n := range []int{c.OffsetSize, c.LengthSize} {
		if n != 2 && n != 4 && n != 8 {
			return fmt.Errorf("%w: got %d", ErrInvalidSize, n)
		}
	}
	return nil
}

// Reader reads fixed and variable width fields from a position in an
// io.ReaderAt. Readers are cheap; At derives an independent cursor.
type Reader struct {
	r   io.ReaderAt
	cfg Config
	pos int64
}

// NewReader creates a reader positioned at 0.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	return &Reader{r: r, cfg: cfg}
}

// At returns a reader sharing the source but positioned at offset.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, cfg: r.cfg, pos: offset}
}

// WithConfig returns a reader at the same position using cfg.
func (r *Reader) WithConfig(cfg Config) *Reader {
	return &Reader{r: r.r, cfg: cfg, pos: r.pos}
}

// Pos returns the current position.
func (r *Reader) Pos() int64 { return r.pos }

// ReadBytes reads exactly n bytes and advances.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := r.r.ReadAt(buf, r.pos); err != nil {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, r.pos, err)
	}
	r.pos += int64(n)
	return buf, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.ReadUintN(2)
	return uint16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadUintN(4)
	return uint32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	return r.ReadUintN(8)
}

// ReadUintN reads an n-byte unsigned integer.
func (r *Reader) ReadUintN(n int) (uint64, error) {
	buf, err := r.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	return DecodeUint(buf, n, r.cfg.ByteOrder), nil
}

// ReadOffset reads a file address.
func (r *Reader) ReadOffset() (uint64, error) { return r.ReadUintN(r.cfg.OffsetSize) }

// ReadLength reads a length field.
func (r *Reader) ReadLength() (uint64, error) { return r.ReadUintN(r.cfg.LengthSize) }

// IsUndefinedOffset reports whether v is the all-ones "undefined address".
func (r *Reader) IsUndefinedOffset(v uint64) bool {
	return v == Undefined(r.cfg.OffsetSize)
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) { r.pos += n }

// Align advances to the next multiple of alignment.
func (r *Reader) Align(alignment int64) {
	if alignment > 1 && r.pos%alignment != 0 {
		r.pos += alignment - r.pos%alignment
	}
}

func (r *Reader) OffsetSize() int { return r.cfg.OffsetSize }
func (r *Reader) LengthSize() int { return r.cfg.LengthSize }
func (r *Reader) ByteOrder() binary.ByteOrder { return r.cfg.ByteOrder }
func (r *Reader) Config() Config { return r.cfg }
func (r *Reader) Source() io.ReaderAt { return r.r }

// Undefined returns the all-ones sentinel for a field of size bytes.
func Undefined(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<(uint(size)*8) - 1
}

// DecodeUint decodes an unsigned integer of the given width. Widths other
// than 1, 2, 4 and 8 are decoded little-endian.
func DecodeUint(buf []byte, size int, order binary.ByteOrder) uint64 {
	switch size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(order.Uint16(buf))
	case 4:
		return uint64(order.Uint32(buf))
	case 8:
		return order.Uint64(buf)
	}
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

// EncodeUint is the inverse of DecodeUint.
func EncodeUint(buf []byte, v uint64, size int, order binary.ByteOrder) {
	switch size {
	case 1:
		buf[0] = uint8(v)
	case 2:
		order.PutUint16(buf, uint16(v))
	case 4:
		order.PutUint32(buf, uint32(v))
	case 8:
		order.PutUint64(buf, v)
	default:
		for i := 0; i < size; i++ {
			buf[i] = byte(v >> (8 * i))
		}
	}
}
