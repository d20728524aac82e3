package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/go-rfml/internal/message"
)

// Class is the kind of element stored in an attribute or dataset.
type Class uint8

const (
	ClassInteger Class = iota
	ClassFloat
	ClassString
)

// Order is the byte order of numeric elements.
type Order uint8

const (
	LittleEndian Order = iota
	BigEndian
)

// Padding is the padding rule of fixed-length strings.
type Padding uint8

const (
	NullTerm Padding = iota
	NullPad
	SpacePad
)

// Type describes an element type. The zero value is a little-endian 0-byte
// integer and is not valid; use the constructors.
type Type struct {
	Class   Class
	Size    int
	Order   Order
	Signed  bool
	Padding Padding
}

// Int returns a signed integer type of size bytes.
func Int(size int, order Order) Type {
	return Type{Class: ClassInteger, Size: size, Order: order, Signed: true}
}

// Uint returns an unsigned integer type of size bytes.
func Uint(size int, order Order) Type {
	return Type{Class: ClassInteger, Size: size, Order: order}
}

// Int32 is a 4-byte signed integer.
func Int32(order Order) Type { return Int(4, order) }

// Float returns an IEEE 754 type of 4 or 8 bytes.
func Float(size int, order Order) Type {
	return Type{Class: ClassFloat, Size: size, Order: order}
}

// Float64 is an IEEE 754 double.
func Float64(order Order) Type { return Float(8, order) }

// FixedString is an ASCII string of exactly size bytes, space padded.
func FixedString(size int) Type {
	return Type{Class: ClassString, Size: size, Padding: SpacePad}
}

// String renders the type as e.g. "int32le", "float64be" or
// "string8/spacepad".
func (t Type) String() string {
	dt, err := t.datatype()
	if err != nil {
		return fmt.Sprintf("invalid(%d/%d)", t.Class, t.Size)
	}
	return dt.String()
}

// Validate reports whether the engine can store values of t.
func (t Type) Validate() error {
	_, err := t.datatype()
	return err
}

func (t Type) datatype() (*message.Datatype, error) {
	order := message.OrderLE
	if t.Order == BigEndian {
		order = message.OrderBE
	}
	switch t.Class {
	case ClassInteger:
		switch t.Size {
		case 1, 2, 4, 8:
			return message.NewFixedPointDatatype(uint32(t.Size), t.Signed, order), nil
		}
	case ClassFloat:
		switch t.Size {
		case 4, 8:
			return message.NewFloatDatatype(uint32(t.Size), order), nil
		}
	case ClassString:
		if t.Size > 0 && t.Padding <= SpacePad {
			return message.NewStringDatatype(uint32(t.Size), message.StringPadding(t.Padding), message.CharsetASCII), nil
		}
	}
	return nil, fmt.Errorf("%w: element type class %d size %d", ErrUnsupported, t.Class, t.Size)
}

func typeOf(dt *message.Datatype) (Type, error) {
	if dt == nil {
		return Type{}, fmt.Errorf("%w: missing datatype", ErrUnsupported)
	}
	order := LittleEndian
	if dt.ByteOrder == message.OrderBE {
		order = BigEndian
	}
	t := Type{Size: int(dt.Size), Order: order}
	switch dt.Class {
	case message.ClassFixedPoint:
		t.Class, t.Signed = ClassInteger, dt.Signed
	case message.ClassFloatPoint:
		t.Class = ClassFloat
	case message.ClassString:
		t = Type{Class: ClassString, Size: int(dt.Size), Padding: Padding(dt.StringPadding)}
	default:
		return Type{}, fmt.Errorf("%w: datatype %s", ErrUnsupported, dt)
	}
	if err := t.Validate(); err != nil {
		return Type{}, err
	}
	return t, nil
}
