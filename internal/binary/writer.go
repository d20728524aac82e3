package binary

import (
	"encoding/binary"
	"io"
)

// Writer is the write-side counterpart of Reader.
type Writer struct {
	w   io.WriterAt
	cfg Config
	pos int64
}

// NewWriter creates a writer positioned at 0.
func NewWriter(w io.WriterAt, cfg Config) *Writer {
	return &Writer{w: w, cfg: cfg}
}

// At returns a writer sharing the destination but positioned at offset.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{w: w.w, cfg: w.cfg, pos: offset}
}

// Pos returns the current position.
func (w *Writer) Pos() int64 { return w.pos }

// WriteBytes writes data and advances.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

func (w *Writer) WriteUint16(v uint16) error { return w.WriteUintN(uint64(v), 2) }
func (w *Writer) WriteUint32(v uint32) error { return w.WriteUintN(uint64(v), 4) }
func (w *Writer) WriteUint64(v uint64) error { return w.WriteUintN(v, 8) }

// WriteUintN writes v as an n-byte unsigned integer.
func (w *Writer) WriteUintN(v uint64, n int) error {
	buf := make([]byte, n)
	EncodeUint(buf, v, n, w.cfg.ByteOrder)
	return w.WriteBytes(buf)
}

// WriteOffset writes a file address.
func (w *Writer) WriteOffset(v uint64) error { return w.WriteUintN(v, w.cfg.OffsetSize) }

// WriteLength writes a length field.
func (w *Writer) WriteLength(v uint64) error { return w.WriteUintN(v, w.cfg.LengthSize) }

// UndefinedOffset is the "undefined address" sentinel for this writer.
func (w *Writer) UndefinedOffset() uint64 { return Undefined(w.cfg.OffsetSize) }

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, n))
}

func (w *Writer) OffsetSize() int { return w.cfg.OffsetSize }
func (w *Writer) LengthSize() int { return w.cfg.LengthSize }
func (w *Writer) ByteOrder() binary.ByteOrder { return w.cfg.ByteOrder }
func (w *Writer) Config() Config { return w.cfg }

// Buffer is a growable in-memory io.WriterAt. Metadata blocks are assembled
// in a Buffer so their checksum can be computed before they reach the file.
type Buffer struct {
	buf []byte
}

// WriteAt implements io.WriterAt.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(b.buf) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Bytes returns the buffered contents.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return len(b.buf) }

// NewBufferWriter returns a Writer over a fresh Buffer.
func NewBufferWriter(cfg Config) (*Writer, *Buffer) {
	b := &Buffer{}
	return NewWriter(b, cfg), b
}
