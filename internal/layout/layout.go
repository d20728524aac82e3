// Package layout reads the raw bytes of datasets stored compactly inside
// their object header or contiguously elsewhere in the file.
package layout

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/message"
)

var (
	ErrUnsupported = errors.New("unsupported storage layout")
	ErrTruncated   = errors.New("storage shorter than dataset")
)

// Read returns the first size bytes of a dataset's storage. Contiguous
// storage at the undefined address was never written and reads as zeros.
func Read(r *binary.Reader, l *message.DataLayout, size int) ([]byte, error) {
	switch l.Class {
	case message.LayoutCompact:
		if len(l.CompactData) < size {
			return nil, fmt.Errorf("%w: compact data holds %d of %d bytes", ErrTruncated, len(l.CompactData), size)
		}
		return l.CompactData[:size], nil
	case message.LayoutContiguous:
		if r.IsUndefinedOffset(l.Address) {
			return make([]byte, size), nil
		}
		// version 1 and 2 layouts leave Size at zero
		if l.Size != 0 && l.Size < uint64(size) {
			return nil, fmt.Errorf("%w: contiguous block holds %d of %d bytes", ErrTruncated, l.Size, size)
		}
		return r.At(int64(l.Address)).ReadBytes(size)
	}
	return nil, fmt.Errorf("%w: class %d", ErrUnsupported, l.Class)
}

// Extent returns the file span a layout owns outside its header. ok is
// false for compact storage and unallocated contiguous storage.
func Extent(r *binary.Reader, l *message.DataLayout) (addr, size uint64, ok bool) {
	if l.Class != message.LayoutContiguous || r.IsUndefinedOffset(l.Address) || l.Size == 0 {
		return 0, 0, false
	}
	return l.Address, l.Size, true
}
