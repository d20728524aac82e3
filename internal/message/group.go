package message

import (
	"github.com/robert-malhotra/go-rfml/internal/binary"
)

// LinkInfo is a link info message (0x0002). A defined FractalHeapAddr means
// the group stores its links densely.
type LinkInfo struct {
	Flags                  uint8
	MaxCreationIndex       uint64
	FractalHeapAddr        uint64
	NameIndexBTreeAddr     uint64
	CreationOrderBTreeAddr uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// NewLinkInfo returns link info for a group with compact (header) links.
func NewLinkInfo() *LinkInfo {
	return &LinkInfo{FractalHeapAddr: ^uint64(0), NameIndexBTreeAddr: ^uint64(0)}
}

// Dense reports whether the group's links live in a fractal heap.
func (m *LinkInfo) Dense(r *binary.Reader) bool {
	return !r.IsUndefinedOffset(m.FractalHeapAddr)
}

func parseLinkInfo(data []byte, r *binary.Reader) (*LinkInfo, error) {
	if len(data) < 2 {
		return nil, errTruncated("link info")
	}
	if data[0] != 0 {
		return nil, errVersion("link info", data[0])
	}
	m := &LinkInfo{Flags: data[1]}
	offset := 2
	o := r.OffsetSize()
	if m.Flags&0x01 != 0 {
		if len(data) < offset+8 {
			return nil, errTruncated("link info")
		}
		m.MaxCreationIndex = binary.DecodeUint(data[offset:], 8, r.ByteOrder())
		offset += 8
	}
	if len(data) < offset+2*o {
		return nil, errTruncated("link info")
	}
	m.FractalHeapAddr = binary.DecodeUint(data[offset:], o, r.ByteOrder())
	m.NameIndexBTreeAddr = binary.DecodeUint(data[offset+o:], o, r.ByteOrder())
	offset += 2 * o
	if m.Flags&0x02 != 0 && len(data) >= offset+o {
		m.CreationOrderBTreeAddr = binary.DecodeUint(data[offset:], o, r.ByteOrder())
	}
	return m, nil
}

func (m *LinkInfo) Serialize(w *binary.Writer) error {
	if err := w.WriteBytes([]byte{0, m.Flags}); err != nil {
		return err
	}
	if m.Flags&0x01 != 0 {
		if err := w.WriteUint64(m.MaxCreationIndex); err != nil {
			return err
		}
	}
	for _, addr := range []uint64{m.FractalHeapAddr, m.NameIndexBTreeAddr} {
		if addr == ^uint64(0) {
			addr = w.UndefinedOffset()
		}
		if err := w.WriteOffset(addr); err != nil {
			return err
		}
	}
	if m.Flags&0x02 != 0 {
		return w.WriteOffset(m.CreationOrderBTreeAddr)
	}
	return nil
}

func (m *LinkInfo) SerializedSize(w *binary.Writer) int {
	size := 2 + 2*w.OffsetSize()
	if m.Flags&0x01 != 0 {
		size += 8
	}
	if m.Flags&0x02 != 0 {
		size += w.OffsetSize()
	}
	return size
}

// GroupInfo is a group info message (0x000A). The engine writes the
// default form with no phase-change or estimate fields.
type GroupInfo struct {
	Flags uint8
	Extra []byte
}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

// NewGroupInfo returns the default group info.
func NewGroupInfo() *GroupInfo { return &GroupInfo{} }

func parseGroupInfo(data []byte) (*GroupInfo, error) {
	if len(data) < 2 {
		return nil, errTruncated("group info")
	}
	if data[0] != 0 {
		return nil, errVersion("group info", data[0])
	}
	return &GroupInfo{Flags: data[1], Extra: append([]byte(nil), data[2:]...)}, nil
}

func (m *GroupInfo) Serialize(w *binary.Writer) error {
	if err := w.WriteBytes([]byte{0, m.Flags}); err != nil {
		return err
	}
	return w.WriteBytes(m.Extra)
}

func (m *GroupInfo) SerializedSize(*binary.Writer) int { return 2 + len(m.Extra) }

// DenseAttributes reports whether an attribute info message body (0x0015)
// points at a fractal heap, meaning the object's attributes are not stored
// in its header.
func DenseAttributes(data []byte, r *binary.Reader) bool {
	if len(data) < 2 {
		return false
	}
	offset := 2
	if data[1]&0x01 != 0 {
		offset += 2
	}
	o := r.OffsetSize()
	if len(data) < offset+o {
		return false
	}
	return !r.IsUndefinedOffset(binary.DecodeUint(data[offset:], o, r.ByteOrder()))
}
