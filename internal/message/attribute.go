package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-rfml/internal/binary"
)

// Attribute is an attribute message (0x000C).
type Attribute struct {
	Name      string
	CharSet   CharacterSet
	Datatype  *Datatype
	Dataspace *Dataspace
	Data      []byte
}

func (m *Attribute) Type() Type { return TypeAttribute }

// NewAttribute builds an attribute message. data must already be encoded
// in datatype's representation.
func NewAttribute(name string, datatype *Datatype, dataspace *Dataspace, data []byte) *Attribute {
	return &Attribute{Name: name, Datatype: datatype, Dataspace: dataspace, Data: data}
}

func parseAttribute(data []byte, r *binpkg.Reader) (*Attribute, error) {
	if len(data) < 8 {
		return nil, errTruncated("attribute")
	}
	version, flags := data[0], data[1]
	if flags&0x03 != 0 {
		return nil, fmt.Errorf("attribute with shared datatype or dataspace is not supported")
	}
	nameSize := int(binary.LittleEndian.Uint16(data[2:4]))
	dtSize := int(binary.LittleEndian.Uint16(data[4:6]))
	dsSize := int(binary.LittleEndian.Uint16(data[6:8]))

	attr := &Attribute{}
	offset := 8
	pad := func(n int) int { return n }
	switch version {
	case 1:
		pad = func(n int) int { return (n + 7) &^ 7 }
	case 2:
	case 3:
		attr.CharSet = CharacterSet(data[8])
		offset = 9
	default:
		return nil, errVersion("attribute", version)
	}

	field := func(size int) ([]byte, error) {
		if offset+size > len(data) {
			return nil, errTruncated("attribute")
		}
		b := data[offset : offset+size]
		offset += pad(size)
		return b, nil
	}

	name, err := field(nameSize)
	if err != nil {
		return nil, err
	}
	attr.Name = cString(name)

	dtBytes, err := field(dtSize)
	if err != nil {
		return nil, err
	}
	if attr.Datatype, err = parseDatatype(dtBytes); err != nil {
		return nil, err
	}

	dsBytes, err := field(dsSize)
	if err != nil {
		return nil, err
	}
	if attr.Dataspace, err = parseDataspace(dsBytes, r); err != nil {
		return nil, err
	}

	if offset < len(data) {
		attr.Data = append([]byte(nil), data[offset:]...)
	}
	if want := int(attr.Dataspace.NumElements()) * int(attr.Datatype.Size); len(attr.Data) > want {
		attr.Data = attr.Data[:want]
	}
	return attr, nil
}

// Serialize writes a version 3 attribute.
func (m *Attribute) Serialize(w *binpkg.Writer) error {
	head := make([]byte, 9)
	head[0] = 3
	binary.LittleEndian.PutUint16(head[2:], uint16(len(m.Name)+1))
	binary.LittleEndian.PutUint16(head[4:], uint16(m.Datatype.SerializedSize(w)))
	binary.LittleEndian.PutUint16(head[6:], uint16(m.Dataspace.SerializedSize(w)))
	head[8] = uint8(m.CharSet)
	if err := w.WriteBytes(head); err != nil {
		return err
	}
	if err := w.WriteBytes(append([]byte(m.Name), 0)); err != nil {
		return err
	}
	if err := m.Datatype.Serialize(w); err != nil {
		return err
	}
	if err := m.Dataspace.Serialize(w); err != nil {
		return err
	}
	return w.WriteBytes(m.Data)
}

func (m *Attribute) SerializedSize(w *binpkg.Writer) int {
	return 9 + len(m.Name) + 1 + m.Datatype.SerializedSize(w) + m.Dataspace.SerializedSize(w) + len(m.Data)
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
