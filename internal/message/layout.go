package message

import (
	"encoding/binary"

	binpkg "github.com/robert-malhotra/go-rfml/internal/binary"
)

// LayoutClass is the storage class of a dataset.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

// DataLayout is a data layout message (0x0008). Only compact and contiguous
// layouts are decoded in full; other classes keep just their class.
type DataLayout struct {
	Class       LayoutClass
	CompactData []byte
	Address     uint64
	// Size is the contiguous storage size. Version 1 and 2 layouts do not
	// record it, in which case it is zero and callers derive it from the
	// dataspace and datatype.
	Size uint64
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

// NewContiguousLayout describes size bytes stored at addr.
func NewContiguousLayout(addr, size uint64) *DataLayout {
	return &DataLayout{Class: LayoutContiguous, Address: addr, Size: size}
}

// NewCompactLayout stores data inside the object header.
func NewCompactLayout(data []byte) *DataLayout {
	return &DataLayout{Class: LayoutCompact, CompactData: data}
}

func parseDataLayout(data []byte, r *binpkg.Reader) (*DataLayout, error) {
	if len(data) < 2 {
		return nil, errTruncated("data layout")
	}
	switch data[0] {
	case 1, 2:
		return parseDataLayoutV1(data, r)
	case 3, 4:
		return parseDataLayoutV3(data, r)
	}
	return nil, errVersion("data layout", data[0])
}

// Version 1/2: version, rank, class, 5 reserved bytes, then the address
// (non-compact), rank 4-byte dimensions and for compact a size and the data.
func parseDataLayoutV1(data []byte, r *binpkg.Reader) (*DataLayout, error) {
	if len(data) < 8 {
		return nil, errTruncated("data layout v1")
	}
	rank := int(data[1])
	m := &DataLayout{Class: LayoutClass(data[2])}
	offset := 8
	if m.Class != LayoutCompact {
		o := r.OffsetSize()
		if len(data) < offset+o {
			return nil, errTruncated("data layout v1")
		}
		m.Address = binpkg.DecodeUint(data[offset:], o, r.ByteOrder())
		offset += o
	}
	offset += 4 * rank
	if m.Class == LayoutCompact {
		if len(data) < offset+4 {
			return nil, errTruncated("data layout v1")
		}
		n := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		if len(data) < offset+n {
			return nil, errTruncated("data layout v1 compact data")
		}
		m.CompactData = append([]byte(nil), data[offset:offset+n]...)
	}
	return m, nil
}

func parseDataLayoutV3(data []byte, r *binpkg.Reader) (*DataLayout, error) {
	m := &DataLayout{Class: LayoutClass(data[1])}
	offset := 2
	switch m.Class {
	case LayoutCompact:
		if len(data) < offset+2 {
			return nil, errTruncated("compact layout")
		}
		n := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if len(data) < offset+n {
			return nil, errTruncated("compact layout data")
		}
		m.CompactData = append([]byte(nil), data[offset:offset+n]...)
	case LayoutContiguous:
		o, l := r.OffsetSize(), r.LengthSize()
		if len(data) < offset+o+l {
			return nil, errTruncated("contiguous layout")
		}
		m.Address = binpkg.DecodeUint(data[offset:], o, r.ByteOrder())
		m.Size = binpkg.DecodeUint(data[offset+o:], l, r.ByteOrder())
	}
	return m, nil
}

// Serialize writes a version 3 compact or contiguous layout.
func (m *DataLayout) Serialize(w *binpkg.Writer) error {
	if err := w.WriteBytes([]byte{3, uint8(m.Class)}); err != nil {
		return err
	}
	switch m.Class {
	case LayoutCompact:
		if err := w.WriteUint16(uint16(len(m.CompactData))); err != nil {
			return err
		}
		return w.WriteBytes(m.CompactData)
	default:
		if err := w.WriteOffset(m.Address); err != nil {
			return err
		}
		return w.WriteLength(m.Size)
	}
}

func (m *DataLayout) SerializedSize(w *binpkg.Writer) int {
	if m.Class == LayoutCompact {
		return 4 + len(m.CompactData)
	}
	return 2 + w.OffsetSize() + w.LengthSize()
}
