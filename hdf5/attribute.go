package hdf5

import (
	"github.com/robert-malhotra/go-rfml/internal/dtype"
	"github.com/robert-malhotra/go-rfml/internal/message"
)

// Attribute is a small typed array attached to a group or dataset.
type Attribute struct {
	msg *message.Attribute
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.msg.Name }

// Type returns the element type.
func (a *Attribute) Type() (Type, error) { return typeOf(a.msg.Datatype) }

// Shape returns the attribute extents; empty for a scalar.
func (a *Attribute) Shape() []int {
	out := make([]int, len(a.msg.Dataspace.Dimensions))
	for i, v := range a.msg.Dataspace.Dimensions {
		out[i] = int(v)
	}
	return out
}

// Len returns the number of elements.
func (a *Attribute) Len() int { return int(a.msg.Dataspace.NumElements()) }

// Raw returns the encoded value.
func (a *Attribute) Raw() []byte { return a.msg.Data }

// Values decodes the value into its natural Go slice type, flattened.
func (a *Attribute) Values() (any, error) {
	return dtype.Decode(a.msg.Datatype, a.msg.Data)
}
