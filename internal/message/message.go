package message

import (
	"github.com/robert-malhotra/go-rfml/internal/binary"
)

// Type is an HDF5 header message type.
type Type uint16

const (
	TypeNIL                      Type = 0x0000
	TypeDataspace                Type = 0x0001
	TypeLinkInfo                 Type = 0x0002
	TypeDatatype                 Type = 0x0003
	TypeFillValueOld             Type = 0x0004
	TypeFillValue                Type = 0x0005
	TypeLink                     Type = 0x0006
	TypeExternalDataFiles        Type = 0x0007
	TypeDataLayout               Type = 0x0008
	TypeGroupInfo                Type = 0x000A
	TypeFilterPipeline           Type = 0x000B
	TypeAttribute                Type = 0x000C
	TypeObjectHeaderContinuation Type = 0x0010
	TypeSymbolTable              Type = 0x0011
	TypeAttributeInfo            Type = 0x0015
)

// FlagShared marks a message whose body lives elsewhere in the file.
const FlagShared = 0x02

// Message is implemented by every header message.
type Message interface {
	Type() Type
}

// Serializable is implemented by messages the engine can write.
type Serializable interface {
	Message
	Serialize(w *binary.Writer) error
	SerializedSize(w *binary.Writer) int
}

// Parse decodes one header message. It never drops a message: anything it
// cannot decode comes back as *Unknown.
func Parse(typ Type, data []byte, flags uint8, r *binary.Reader) Message {
	if flags&FlagShared != 0 {
		return newUnknown(typ, flags, data)
	}

	var (
		msg Message
		err error
	)
	switch typ {
	case TypeDataspace:
		msg, err = parseDataspace(data, r)
	case TypeLinkInfo:
		msg, err = parseLinkInfo(data, r)
	case TypeDatatype:
		msg, err = parseDatatype(data)
	case TypeLink:
		msg, err = parseLink(data, r)
	case TypeDataLayout:
		msg, err = parseDataLayout(data, r)
	case TypeGroupInfo:
		msg, err = parseGroupInfo(data)
	case TypeAttribute:
		msg, err = parseAttribute(data, r)
	case TypeObjectHeaderContinuation:
		msg, err = ParseContinuation(data, r)
	case TypeSymbolTable:
		msg, err = parseSymbolTable(data, r)
	default:
		return newUnknown(typ, flags, data)
	}
	if err != nil {
		return newUnknown(typ, flags, data)
	}
	return msg
}

// Unknown is a message carried through verbatim.
type Unknown struct {
	typ   Type
	Flags uint8
	Data  []byte
}

func newUnknown(typ Type, flags uint8, data []byte) *Unknown {
	return &Unknown{typ: typ, Flags: flags, Data: append([]byte(nil), data...)}
}

func (m *Unknown) Type() Type { return m.typ }

// Shared reports whether the message refers to a shared object elsewhere in
// the file.
func (m *Unknown) Shared() bool { return m.Flags&FlagShared != 0 }

func (m *Unknown) Serialize(w *binary.Writer) error { return w.WriteBytes(m.Data) }

func (m *Unknown) SerializedSize(*binary.Writer) int { return len(m.Data) }

// Continuation points at another block of header messages.
type Continuation struct {
	Offset uint64
	Length uint64
}

func (m *Continuation) Type() Type { return TypeObjectHeaderContinuation }

// ParseContinuation decodes a continuation message body.
func ParseContinuation(data []byte, r *binary.Reader) (*Continuation, error) {
	o, l := r.OffsetSize(), r.LengthSize()
	if len(data) < o+l {
		return nil, errTruncated("continuation")
	}
	return &Continuation{
		Offset: binary.DecodeUint(data, o, r.ByteOrder()),
		Length: binary.DecodeUint(data[o:], l, r.ByteOrder()),
	}, nil
}

// SymbolTable is the legacy (v1 object header) group message pointing at the
// group's B-tree and local heap.
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func parseSymbolTable(data []byte, r *binary.Reader) (*SymbolTable, error) {
	o := r.OffsetSize()
	if len(data) < 2*o {
		return nil, errTruncated("symbol table")
	}
	return &SymbolTable{
		BTreeAddress:     binary.DecodeUint(data, o, r.ByteOrder()),
		LocalHeapAddress: binary.DecodeUint(data[o:], o, r.ByteOrder()),
	}, nil
}
