package dtype

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/robert-malhotra/go-rfml/internal/message"
)

var (
	ErrUnsupportedType = errors.New("unsupported datatype")
	ErrIncompatible    = errors.New("values incompatible with datatype")
)

// ByteOrder returns the byte order of numeric elements of dt.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.ByteOrder == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Supported reports whether values of dt can be converted.
func Supported(dt *message.Datatype) error {
	if dt == nil {
		return fmt.Errorf("%w: nil datatype", ErrUnsupportedType)
	}
	switch dt.Class {
	case message.ClassFixedPoint:
		switch dt.Size {
		case 1, 2, 4, 8:
			return nil
		}
	case message.ClassFloatPoint:
		switch dt.Size {
		case 4, 8:
			return nil
		}
	case message.ClassString:
		if dt.Size > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
}

// Len returns the number of elements in a supported slice.
func Len(values any) (int, error) {
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice {
		return 0, fmt.Errorf("%w: %T is not a slice", ErrIncompatible, values)
	}
	return v.Len(), nil
}

// Encode converts values, a slice of a numeric type or of string, into the
// raw representation of dt.
func Encode(dt *message.Datatype, values any) ([]byte, error) {
	if err := Supported(dt); err != nil {
		return nil, err
	}
	src := reflect.ValueOf(values)
	if src.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: %T is not a slice", ErrIncompatible, values)
	}
	size := int(dt.Size)
	out := make([]byte, src.Len()*size)
	if dt.Class == message.ClassString {
		if src.Type().Elem().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: cannot store %T as %s", ErrIncompatible, values, dt)
		}
		for i := 0; i < src.Len(); i++ {
			if err := encodeString(dt, src.Index(i).String(), out[i*size:(i+1)*size]); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
		return out, nil
	}

	order := ByteOrder(dt)
	for i := 0; i < src.Len(); i++ {
		elem := src.Index(i)
		buf := out[i*size : (i+1)*size]
		var err error
		if dt.Class == message.ClassFloatPoint {
			err = encodeFloat(elem, buf, order)
		} else {
			err = encodeInt(elem, buf, order, dt.Signed)
		}
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

// encodeInt stores elem in len(buf) bytes. Floats are truncated toward
// zero; values outside the range of the target width are rejected.
func encodeInt(elem reflect.Value, buf []byte, order binary.ByteOrder, signed bool) error {
	width := uint(len(buf)) * 8
	var bits uint64
	switch elem.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := elem.Int()
		if !intFits(v, width, signed) {
			return fmt.Errorf("%w: %d overflows %s", ErrIncompatible, v, intName(width, signed))
		}
		bits = uint64(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := elem.Uint()
		if !uintFits(v, width, signed) {
			return fmt.Errorf("%w: %d overflows %s", ErrIncompatible, v, intName(width, signed))
		}
		bits = v
	case reflect.Float32, reflect.Float64:
		f := math.Trunc(elem.Float())
		if !floatFits(f, width, signed) {
			return fmt.Errorf("%w: %g overflows %s", ErrIncompatible, elem.Float(), intName(width, signed))
		}
		if signed {
			bits = uint64(int64(f))
		} else {
			bits = uint64(f)
		}
	default:
		return fmt.Errorf("%w: cannot store %s as integer", ErrIncompatible, elem.Kind())
	}
	putUint(buf, bits, order)
	return nil
}

func intFits(v int64, width uint, signed bool) bool {
	if !signed {
		return v >= 0 && uintFits(uint64(v), width, false)
	}
	if width >= 64 {
		return true
	}
	lim := int64(1) << (width - 1)
	return v >= -lim && v < lim
}

func uintFits(v uint64, width uint, signed bool) bool {
	if signed {
		width--
	}
	return width >= 64 || v < uint64(1)<<width
}

func floatFits(f float64, width uint, signed bool) bool {
	if math.IsNaN(f) {
		return false
	}
	if signed {
		lim := math.Ldexp(1, int(width)-1)
		return f >= -lim && f < lim
	}
	return f >= 0 && f < math.Ldexp(1, int(width))
}

func intName(width uint, signed bool) string {
	if signed {
		return fmt.Sprintf("int%d", width)
	}
	return fmt.Sprintf("uint%d", width)
}

func encodeFloat(elem reflect.Value, buf []byte, order binary.ByteOrder) error {
	var f float64
	switch elem.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(elem.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f = float64(elem.Uint())
	case reflect.Float32, reflect.Float64:
		f = elem.Float()
	default:
		return fmt.Errorf("%w: cannot store %s as float", ErrIncompatible, elem.Kind())
	}
	if len(buf) == 4 {
		order.PutUint32(buf, math.Float32bits(float32(f)))
	} else {
		order.PutUint64(buf, math.Float64bits(f))
	}
	return nil
}

func putUint(buf []byte, v uint64, order binary.ByteOrder) {
	switch len(buf) {
	case 1:
		buf[0] = byte(v)
	case 2:
		order.PutUint16(buf, uint16(v))
	case 4:
		order.PutUint32(buf, uint32(v))
	case 8:
		order.PutUint64(buf, v)
	}
}

func encodeString(dt *message.Datatype, s string, buf []byte) error {
	if len(s) > len(buf) {
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrIncompatible, s, len(buf))
	}
	n := copy(buf, s)
	if dt.StringPadding == message.PadSpacePad {
		for i := n; i < len(buf); i++ {
			buf[i] = ' '
		}
	}
	return nil
}

// Decode converts raw into the natural slice type of dt. Trailing bytes
// that do not form a whole element are ignored.
func Decode(dt *message.Datatype, raw []byte) (any, error) {
	if err := Supported(dt); err != nil {
		return nil, err
	}
	size := int(dt.Size)
	n := len(raw) / size
	order := ByteOrder(dt)

	switch dt.Class {
	case message.ClassString:
		out := make([]string, n)
		for i := range out {
			out[i] = decodeString(dt, raw[i*size:(i+1)*size])
		}
		return out, nil
	case message.ClassFloatPoint:
		if size == 4 {
			out := make([]float32, n)
			for i := range out {
				out[i] = math.Float32frombits(order.Uint32(raw[i*4:]))
			}
			return out, nil
		}
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
		return out, nil
	}
	return decodeInts(dt, raw, n, order), nil
}

func decodeInts(dt *message.Datatype, raw []byte, n int, order binary.ByteOrder) any {
	switch {
	case dt.Size == 1 && dt.Signed:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(raw[i])
		}
		return out
	case dt.Size == 1:
		return append([]uint8(nil), raw[:n]...)
	case dt.Size == 2 && dt.Signed:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(order.Uint16(raw[i*2:]))
		}
		return out
	case dt.Size == 2:
		out := make([]uint16, n)
		for i := range out {
			out[i] = order.Uint16(raw[i*2:])
		}
		return out
	case dt.Size == 4 && dt.Signed:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(order.Uint32(raw[i*4:]))
		}
		return out
	case dt.Size == 4:
		out := make([]uint32, n)
		for i := range out {
			out[i] = order.Uint32(raw[i*4:])
		}
		return out
	case dt.Signed:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(order.Uint64(raw[i*8:]))
		}
		return out
	default:
		out := make([]uint64, n)
		for i := range out {
			out[i] = order.Uint64(raw[i*8:])
		}
		return out
	}
}

func decodeString(dt *message.Datatype, b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if dt.StringPadding == message.PadSpacePad {
		b = bytes.TrimRight(b, " ")
	}
	return string(b)
}

// Float64s converts any numeric slice to []float64.
func Float64s(values any) ([]float64, error) {
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: %T is not a slice", ErrIncompatible, values)
	}
	out := make([]float64, v.Len())
	for i := range out {
		e := v.Index(i)
		switch e.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = float64(e.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out[i] = float64(e.Uint())
		case reflect.Float32, reflect.Float64:
			out[i] = e.Float()
		default:
			return nil, fmt.Errorf("%w: %T is not numeric", ErrIncompatible, values)
		}
	}
	return out, nil
}

// Natural returns the datatype a slice is stored as when no explicit type is
// given. Strings get the width of the longest value.
func Natural(values any, order message.ByteOrder) (*message.Datatype, error) {
	switch v := values.(type) {
	case []float64:
		return message.NewFloatDatatype(8, order), nil
	case []float32:
		return message.NewFloatDatatype(4, order), nil
	case []int8:
		return message.NewFixedPointDatatype(1, true, order), nil
	case []int16:
		return message.NewFixedPointDatatype(2, true, order), nil
	case []int32:
		return message.NewFixedPointDatatype(4, true, order), nil
	case []int64, []int:
		return message.NewFixedPointDatatype(8, true, order), nil
	case []uint8:
		return message.NewFixedPointDatatype(1, false, order), nil
	case []uint16:
		return message.NewFixedPointDatatype(2, false, order), nil
	case []uint32:
		return message.NewFixedPointDatatype(4, false, order), nil
	case []uint64, []uint:
		return message.NewFixedPointDatatype(8, false, order), nil
	case []string:
		width := 1
		for _, s := range v {
			if len(s) > width {
				width = len(s)
			}
		}
		return message.NewStringDatatype(uint32(width), message.PadSpacePad, message.CharsetASCII), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrIncompatible, values)
}
