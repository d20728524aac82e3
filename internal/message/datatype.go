package message

import (
	"bytes"
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-rfml/internal/binary"
)

// DatatypeClass is the HDF5 datatype class.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0
	ClassFloatPoint DatatypeClass = 1
	ClassTime       DatatypeClass = 2
	ClassString     DatatypeClass = 3
	ClassBitfield   DatatypeClass = 4
	ClassOpaque     DatatypeClass = 5
	ClassCompound   DatatypeClass = 6
	ClassReference  DatatypeClass = 7
	ClassEnum       DatatypeClass = 8
	ClassVarLen     DatatypeClass = 9
	ClassArray      DatatypeClass = 10
)

// ByteOrder is the byte order bit of numeric classes.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

// StringPadding is the padding rule of fixed-length strings.
type StringPadding uint8

const (
	PadNullTerm StringPadding = 0
	PadNullPad  StringPadding = 1
	PadSpacePad StringPadding = 2
)

// CharacterSet is the encoding of string characters.
type CharacterSet uint8

const (
	CharsetASCII CharacterSet = 0
	CharsetUTF8  CharacterSet = 1
)

// Datatype is a datatype message (0x0003). Class-specific fields are decoded
// for the classes the engine converts; Properties always holds the raw
// property bytes so any datatype can be written back unchanged.
type Datatype struct {
	Version   uint8
	Class     DatatypeClass
	ClassBits uint32
	Size      uint32

	ByteOrder     ByteOrder
	Signed        bool
	BitOffset     uint16
	BitPrecision  uint16
	StringPadding StringPadding
	CharSet       CharacterSet

	Properties []byte
}

func (m *Datatype) Type() Type { return TypeDatatype }

func (m *Datatype) IsInteger() bool { return m.Class == ClassFixedPoint }
func (m *Datatype) IsFloat() bool   { return m.Class == ClassFloatPoint }
func (m *Datatype) IsString() bool  { return m.Class == ClassString }

// Equal reports whether two datatypes describe the same encoding.
func (m *Datatype) Equal(o *Datatype) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Class == o.Class && m.ClassBits == o.ClassBits && m.Size == o.Size &&
		bytes.Equal(m.Properties, o.Properties)
}

func (m *Datatype) String() string {
	order := "le"
	if m.ByteOrder == OrderBE {
		order = "be"
	}
	switch m.Class {
	case ClassFixedPoint:
		if m.Signed {
			return fmt.Sprintf("int%d%s", m.Size*8, order)
		}
		return fmt.Sprintf("uint%d%s", m.Size*8, order)
	case ClassFloatPoint:
		return fmt.Sprintf("float%d%s", m.Size*8, order)
	case ClassString:
		pad := [...]string{"nullterm", "nullpad", "spacepad"}
		if int(m.StringPadding) < len(pad) {
			return fmt.Sprintf("string%d/%s", m.Size, pad[m.StringPadding])
		}
		return fmt.Sprintf("string%d", m.Size)
	default:
		return fmt.Sprintf("class%d/%d", m.Class, m.Size)
	}
}

func parseDatatype(data []byte) (*Datatype, error) {
	if len(data) < 8 {
		return nil, errTruncated("datatype")
	}
	dt := &Datatype{
		Version:   data[0] >> 4,
		Class:     DatatypeClass(data[0] & 0x0F),
		ClassBits: uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16,
		Size:      binary.LittleEndian.Uint32(data[4:8]),
	}
	props := data[8:]
	if n := fixedPropertiesSize(dt.Class); n >= 0 {
		if len(props) < n {
			return nil, errTruncated("datatype properties")
		}
		props = props[:n]
	}
	dt.Properties = append([]byte(nil), props...)

	switch dt.Class {
	case ClassFixedPoint, ClassBitfield:
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		dt.Signed = dt.ClassBits&0x08 != 0
		dt.BitOffset = binary.LittleEndian.Uint16(props[0:2])
		dt.BitPrecision = binary.LittleEndian.Uint16(props[2:4])
	case ClassFloatPoint:
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		dt.BitOffset = binary.LittleEndian.Uint16(props[0:2])
		dt.BitPrecision = binary.LittleEndian.Uint16(props[2:4])
	case ClassString:
		dt.StringPadding = StringPadding(dt.ClassBits & 0x0F)
		dt.CharSet = CharacterSet((dt.ClassBits >> 4) & 0x0F)
	}
	return dt, nil
}

// fixedPropertiesSize returns the property length of classes whose
// properties have a fixed size, or -1 if the message length decides.
func fixedPropertiesSize(c DatatypeClass) int {
	switch c {
	case ClassFixedPoint, ClassBitfield:
		return 4
	case ClassFloatPoint:
		return 12
	case ClassString, ClassReference:
		return 0
	case ClassTime:
		return 2
	}
	return -1
}

// Serialize writes the datatype message body.
func (m *Datatype) Serialize(w *binpkg.Writer) error {
	version := m.Version
	if version == 0 {
		version = 1
	}
	head := []byte{
		uint8(m.Class) | version<<4,
		uint8(m.ClassBits), uint8(m.ClassBits >> 8), uint8(m.ClassBits >> 16),
	}
	if err := w.WriteBytes(head); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Size); err != nil {
		return err
	}
	return w.WriteBytes(m.Properties)
}

// SerializedSize is the encoded body length.
func (m *Datatype) SerializedSize(*binpkg.Writer) int { return 8 + len(m.Properties) }

// NewFixedPointDatatype returns an integer type of size bytes.
func NewFixedPointDatatype(size uint32, signed bool, order ByteOrder) *Datatype {
	bits := uint32(order)
	if signed {
		bits |= 0x08
	}
	props := make([]byte, 4)
	binary.LittleEndian.PutUint16(props[2:], uint16(size*8))
	return &Datatype{
		Version:      1,
		Class:        ClassFixedPoint,
		ClassBits:    bits,
		Size:         size,
		ByteOrder:    order,
		Signed:       signed,
		BitPrecision: uint16(size * 8),
		Properties:   props,
	}
}

// NewFloatDatatype returns an IEEE 754 binary32 or binary64 type. The class
// bits and properties match what libhdf5 writes for H5T_IEEE_F32/F64.
func NewFloatDatatype(size uint32, order ByteOrder) *Datatype {
	var props []byte
	var signBit uint32
	switch size {
	case 4:
		signBit = 31
		props = []byte{0, 0, 32, 0, 23, 8, 0, 23, 127, 0, 0, 0}
	default:
		size, signBit = 8, 63
		props = []byte{0, 0, 64, 0, 52, 11, 0, 52, 0xFF, 0x03, 0, 0}
	}
	return &Datatype{
		Version:      1,
		Class:        ClassFloatPoint,
		ClassBits:    uint32(order) | 1<<5 | signBit<<8,
		Size:         size,
		ByteOrder:    order,
		BitPrecision: uint16(size * 8),
		Properties:   props,
	}
}

// NewStringDatatype returns a fixed-length string type.
func NewStringDatatype(size uint32, padding StringPadding, charset CharacterSet) *Datatype {
	return &Datatype{
		Version:       1,
		Class:         ClassString,
		ClassBits:     uint32(padding) | uint32(charset)<<4,
		Size:          size,
		StringPadding: padding,
		CharSet:       charset,
		Properties:    []byte{},
	}
}
