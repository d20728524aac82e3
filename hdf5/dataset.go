package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/go-rfml/internal/dtype"
	"github.com/robert-malhotra/go-rfml/internal/layout"
	"github.com/robert-malhotra/go-rfml/internal/message"
)

// Dataset is an HDF5 dataset.
type Dataset struct {
	node
}

// Shape returns the extents of the dataset. A scalar dataset has an empty
// shape.
func (d *Dataset) Shape() []int {
	ds := d.header.Dataspace()
	if ds == nil {
		return nil
	}
	out := make([]int, len(ds.Dimensions))
	for i, v := range ds.Dimensions {
		out[i] = int(v)
	}
	return out
}

// Len returns the number of elements.
func (d *Dataset) Len() int {
	ds := d.header.Dataspace()
	if ds == nil {
		return 0
	}
	return int(ds.NumElements())
}

// Type returns the element type.
func (d *Dataset) Type() (Type, error) {
	return typeOf(d.header.Datatype())
}

// rawStorage returns the datatype and storage of a dataset whose bytes can
// be read directly.
func (d *Dataset) rawStorage() (*message.Datatype, *message.DataLayout, error) {
	dt := d.header.Datatype()
	if dt == nil {
		return nil, nil, fmt.Errorf("%w: unreadable datatype on %s", ErrUnsupported, d.path)
	}
	if d.header.Has(message.TypeFilterPipeline) {
		return nil, nil, fmt.Errorf("%w: filtered dataset %s", ErrUnsupported, d.path)
	}
	l := d.header.Layout()
	if l == nil {
		return nil, nil, fmt.Errorf("%w: unreadable layout on %s", ErrUnsupported, d.path)
	}
	switch l.Class {
	case message.LayoutCompact, message.LayoutContiguous:
		return dt, l, nil
	}
	return nil, nil, fmt.Errorf("%w: layout class %d on %s", ErrUnsupported, l.Class, d.path)
}

// storage is rawStorage restricted to element types the engine converts.
func (d *Dataset) storage() (*message.Datatype, *message.DataLayout, error) {
	dt, l, err := d.rawStorage()
	if err != nil {
		return nil, nil, err
	}
	if err := dtype.Supported(dt); err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %v", d.path, ErrUnsupported, err)
	}
	return dt, l, nil
}

// Raw returns the stored bytes of every element.
func (d *Dataset) Raw() ([]byte, error) {
	dt, l, err := d.storage()
	if err != nil {
		return nil, err
	}
	return d.readRaw(dt, l)
}

func (d *Dataset) readRaw(dt *message.Datatype, l *message.DataLayout) ([]byte, error) {
	raw, err := layout.Read(d.file.reader, l, d.Len()*int(dt.Size))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.path, err)
	}
	return raw, nil
}

// Values returns the data in the natural Go slice type of the element
// type, in row-major order.
func (d *Dataset) Values() (any, error) {
	dt, _, err := d.storage()
	if err != nil {
		return nil, err
	}
	raw, err := d.Raw()
	if err != nil {
		return nil, err
	}
	return dtype.Decode(dt, raw)
}

// Write replaces every element. values are converted to the stored element
// type; the type and shape never change.
func (d *Dataset) Write(values any) error {
	if err := d.file.checkWritable(); err != nil {
		return err
	}
	dt, storage, err := d.storage()
	if err != nil {
		return err
	}
	n, err := dtype.Len(values)
	if err != nil {
		return err
	}
	if n != d.Len() {
		return fmt.Errorf("%s: %d values for %d elements: %w", d.path, n, d.Len(), ErrShape)
	}
	raw, err := dtype.Encode(dt, values)
	if err != nil {
		return fmt.Errorf("%s: %w", d.path, err)
	}

	if storage.Class == message.LayoutCompact {
		return d.replaceLayout(message.NewCompactLayout(raw))
	}
	if len(raw) == 0 {
		return nil
	}
	if d.file.reader.IsUndefinedOffset(storage.Address) || storage.Size < uint64(len(raw)) {
		addr, err := d.file.writeData(raw)
		if err != nil {
			return err
		}
		if addr, size, ok := layout.Extent(d.file.reader, storage); ok {
			d.file.allocator.Free(addr, size)
		}
		return d.replaceLayout(message.NewContiguousLayout(addr, uint64(len(raw))))
	}
	if _, err := d.file.file.WriteAt(raw, int64(storage.Address)); err != nil {
		return fmt.Errorf("writing %s: %w", d.path, err)
	}
	return nil
}

func (d *Dataset) replaceLayout(l *message.DataLayout) error {
	msgs := make([]message.Message, len(d.header.Messages))
	for i, m := range d.header.Messages {
		if m.Type() == message.TypeDataLayout {
			m = l
		}
		msgs[i] = m
	}
	return d.rewrite(msgs)
}
