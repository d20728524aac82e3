package message

import (
	"github.com/robert-malhotra/go-rfml/internal/binary"
)

// DataspaceType is the kind of dataspace.
type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0
	DataspaceSimple DataspaceType = 1
	DataspaceNull   DataspaceType = 2
)

// Dataspace is a dataspace message (0x0001).
type Dataspace struct {
	SpaceType  DataspaceType
	Dimensions []uint64
	MaxDims    []uint64
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// Rank is the number of dimensions.
func (m *Dataspace) Rank() int { return len(m.Dimensions) }

// NumElements is the product of the dimensions.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceNull:
		return 0
	case DataspaceScalar:
		return 1
	}
	n := uint64(1)
	for _, d := range m.Dimensions {
		n *= d
	}
	return n
}

// NewDataspace returns a simple dataspace with fixed extents.
func NewDataspace(dims []uint64) *Dataspace {
	return &Dataspace{SpaceType: DataspaceSimple, Dimensions: append([]uint64(nil), dims...)}
}

// NewScalarDataspace returns a single-element dataspace.
func NewScalarDataspace() *Dataspace {
	return &Dataspace{SpaceType: DataspaceScalar}
}

func parseDataspace(data []byte, r *binary.Reader) (*Dataspace, error) {
	if len(data) < 4 {
		return nil, errTruncated("dataspace")
	}
	version, rank, flags := data[0], int(data[1]), data[2]

	ds := &Dataspace{}
	offset := 4
	switch version {
	case 1:
		offset = 8
		ds.SpaceType = DataspaceSimple
		if rank == 0 {
			ds.SpaceType = DataspaceScalar
		}
	case 2:
		ds.SpaceType = DataspaceType(data[3])
	default:
		return nil, errVersion("dataspace", version)
	}
	if ds.SpaceType != DataspaceSimple {
		return ds, nil
	}

	n := r.LengthSize()
	read := func() ([]uint64, error) {
		out := make([]uint64, rank)
		for i := range out {
			if offset+n > len(data) {
				return nil, errTruncated("dataspace dimensions")
			}
			out[i] = binary.DecodeUint(data[offset:], n, r.ByteOrder())
			offset += n
		}
		return out, nil
	}
	var err error
	if ds.Dimensions, err = read(); err != nil {
		return nil, err
	}
	if flags&0x01 != 0 {
		if ds.MaxDims, err = read(); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Serialize writes a version 2 dataspace.
func (m *Dataspace) Serialize(w *binary.Writer) error {
	var flags uint8
	if len(m.MaxDims) > 0 {
		flags = 0x01
	}
	if err := w.WriteBytes([]byte{2, uint8(len(m.Dimensions)), flags, uint8(m.SpaceType)}); err != nil {
		return err
	}
	for _, d := range m.Dimensions {
		if err := w.WriteLength(d); err != nil {
			return err
		}
	}
	for _, d := range m.MaxDims {
		if err := w.WriteLength(d); err != nil {
			return err
		}
	}
	return nil
}

func (m *Dataspace) SerializedSize(w *binary.Writer) int {
	return 4 + (len(m.Dimensions)+len(m.MaxDims))*w.LengthSize()
}
