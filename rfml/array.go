package rfml

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-rfml/hdf5"
)

// Array is a dense row-major array. Data is a slice of a numeric type or
// of strings and holds the product of Shape elements.
type Array struct {
	Shape []int
	Data  any
}

// Zeros returns a float64 array of the given shape.
func Zeros(shape ...int) Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return Array{Shape: shape, Data: make([]float64, n)}
}

// ElementType is the on-disk element type of an attribute or dataset.
type ElementType = hdf5.Type

// NameType is the type of datafield_names entries.
var NameType = hdf5.FixedString(NameWidth)

// Endian is the byte order numeric values are written in.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// ParseEndian accepts "little-endian" and "big-endian". The empty string
// means little-endian.
func ParseEndian(s string) (Endian, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "little-endian", "little":
		return LittleEndian, nil
	case "big-endian", "big":
		return BigEndian, nil
	}
	return 0, fmt.Errorf("unknown endian %q", s)
}

func (e Endian) String() string {
	if e == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

func (e Endian) order() hdf5.Order {
	if e == BigEndian {
		return hdf5.BigEndian
	}
	return hdf5.LittleEndian
}

// dataOf accepts either an Array or a bare slice.
func dataOf(v any) any {
	if a, ok := v.(Array); ok {
		return a.Data
	}
	return v
}
