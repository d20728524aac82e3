package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-rfml/internal/binary"
)

// LinkType is the kind of link.
type LinkType uint8

const (
	LinkTypeHard     LinkType = 0
	LinkTypeSoft     LinkType = 1
	LinkTypeExternal LinkType = 64
)

// Link is a link message (0x0006).
type Link struct {
	LinkType      LinkType
	Name          string
	ObjectAddress uint64
	SoftLinkValue string
	// Raw holds the link-information bytes of external and user-defined
	// links, which the engine carries but does not interpret.
	Raw []byte
}

func (m *Link) Type() Type { return TypeLink }

func (m *Link) IsHard() bool { return m.LinkType == LinkTypeHard }

// NewHardLink returns a hard link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	return &Link{LinkType: LinkTypeHard, Name: name, ObjectAddress: addr}
}

func parseLink(data []byte, r *binpkg.Reader) (*Link, error) {
	if len(data) < 2 {
		return nil, errTruncated("link")
	}
	if data[0] != 1 {
		return nil, errVersion("link", data[0])
	}
	flags := data[1]
	offset := 2
	need := func(n int) error {
		if offset+n > len(data) {
			return errTruncated("link")
		}
		return nil
	}

	link := &Link{}
	if flags&0x08 != 0 {
		if err := need(1); err != nil {
			return nil, err
		}
		link.LinkType = LinkType(data[offset])
		offset++
	}
	if flags&0x04 != 0 {
		offset += 8 // creation order
	}
	if flags&0x10 != 0 {
		offset++ // name character set
	}

	lenSize := 1 << (flags & 0x03)
	if err := need(lenSize); err != nil {
		return nil, err
	}
	nameLen := int(binpkg.DecodeUint(data[offset:], lenSize, binary.LittleEndian))
	offset += lenSize
	if err := need(nameLen); err != nil {
		return nil, err
	}
	link.Name = string(data[offset : offset+nameLen])
	offset += nameLen

	switch link.LinkType {
	case LinkTypeHard:
		if err := need(r.OffsetSize()); err != nil {
			return nil, err
		}
		link.ObjectAddress = binpkg.DecodeUint(data[offset:], r.OffsetSize(), r.ByteOrder())
	case LinkTypeSoft:
		if err := need(2); err != nil {
			return nil, err
		}
		n := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if err := need(n); err != nil {
			return nil, err
		}
		link.SoftLinkValue = string(data[offset : offset+n])
	default:
		link.Raw = append([]byte(nil), data[offset:]...)
	}
	return link, nil
}

// Serialize writes a version 1 link message.
func (m *Link) Serialize(w *binpkg.Writer) error {
	if len(m.Name) > 0xFFFF {
		return fmt.Errorf("link name too long: %d bytes", len(m.Name))
	}
	flags := uint8(0)
	if len(m.Name) > 0xFF {
		flags = 1
	}
	if m.LinkType != LinkTypeHard {
		flags |= 0x08
	}
	if err := w.WriteBytes([]byte{1, flags}); err != nil {
		return err
	}
	if m.LinkType != LinkTypeHard {
		if err := w.WriteUint8(uint8(m.LinkType)); err != nil {
			return err
		}
	}
	if err := w.WriteUintN(uint64(len(m.Name)), 1<<(flags&0x03)); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(m.Name)); err != nil {
		return err
	}
	switch m.LinkType {
	case LinkTypeHard:
		return w.WriteOffset(m.ObjectAddress)
	case LinkTypeSoft:
		if err := w.WriteUint16(uint16(len(m.SoftLinkValue))); err != nil {
			return err
		}
		return w.WriteBytes([]byte(m.SoftLinkValue))
	default:
		return w.WriteBytes(m.Raw)
	}
}

func (m *Link) SerializedSize(w *binpkg.Writer) int {
	size := 2 + 1 + len(m.Name)
	if len(m.Name) > 0xFF {
		size++
	}
	if m.LinkType != LinkTypeHard {
		size++
	}
	switch m.LinkType {
	case LinkTypeHard:
		size += w.OffsetSize()
	case LinkTypeSoft:
		size += 2 + len(m.SoftLinkValue)
	default:
		size += len(m.Raw)
	}
	return size
}
