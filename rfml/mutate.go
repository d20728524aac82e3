package rfml

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robert-malhotra/go-rfml/hdf5"
	"github.com/robert-malhotra/go-rfml/internal/dtype"
)

// bookkeeping is the pair of attributes that describe /data.
type bookkeeping struct {
	names []string
	dims  []int32
}

func readBookkeeping(g *hdf5.Group) (bookkeeping, error) {
	a, err := g.Attr(AttrFieldNames)
	if err != nil {
		return bookkeeping{}, err
	}
	v, err := a.Values()
	if err != nil {
		return bookkeeping{}, err
	}
	names, ok := v.([]string)
	if !ok {
		return bookkeeping{}, fmt.Errorf("%w: %s is not a string attribute", ErrIntegrity, AttrFieldNames)
	}

	a, err = g.Attr(AttrDimensions)
	if err != nil {
		return bookkeeping{}, err
	}
	v, err = a.Values()
	if err != nil {
		return bookkeeping{}, err
	}
	dims, err := int32s(v)
	if err != nil {
		return bookkeeping{}, fmt.Errorf("%w: %s: %v", ErrIntegrity, AttrDimensions, err)
	}
	if len(dims) != 4 {
		return bookkeeping{}, fmt.Errorf("%w: %s has %d entries, want 4", ErrIntegrity, AttrDimensions, len(dims))
	}
	return bookkeeping{names: names, dims: dims}, nil
}

func (b bookkeeping) values() []attrValue {
	return []attrValue{
		{name: AttrFieldNames, data: b.names},
		{name: AttrDimensions, data: b.dims},
	}
}

func int32s(v any) ([]int32, error) {
	if out, ok := v.([]int32); ok {
		return out, nil
	}
	f, err := dtype.Float64s(v)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(f))
	for i, x := range f {
		out[i] = int32(x)
	}
	return out, nil
}

// verifyInvariant checks that datafield_names names exactly the datasets
// under /data and that dimensions[3] counts them.
func verifyInvariant(f *hdf5.File) error {
	g, err := f.OpenGroup(DataGroup)
	if err != nil {
		return err
	}
	b, err := readBookkeeping(g)
	if err != nil {
		return err
	}
	if int(b.dims[3]) != len(b.names) {
		return fmt.Errorf("%w: %s[3] is %d but %d names are tracked", ErrIntegrity, AttrDimensions, b.dims[3], len(b.names))
	}
	members, err := g.Members()
	if err != nil {
		return err
	}
	var datasets []string
	for _, m := range members {
		if _, err := g.OpenDataset(m); err == nil {
			datasets = append(datasets, m)
		}
	}
	tracked := slices.Clone(b.names)
	slices.Sort(tracked)
	slices.Sort(datasets)
	if !slices.Equal(tracked, datasets) {
		return fmt.Errorf("%w: tracked %v, stored %v", ErrIntegrity, tracked, datasets)
	}
	return nil
}

// checkFieldName rejects names that cannot round trip through the
// space-padded datafield_names attribute.
func checkFieldName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty field name")
	case len(name) > NameWidth:
		return fmt.Errorf("field name %q is longer than %d bytes", name, NameWidth)
	case strings.TrimRight(name, " ") != name:
		return fmt.Errorf("field name %q has trailing spaces", name)
	}
	return nil
}

// padShape extends shape with trailing ones to three extents.
func padShape(shape []int) ([]int32, error) {
	if len(shape) > 3 {
		return nil, fmt.Errorf("%w: shape %v has more than 3 extents", ErrIntegrity, shape)
	}
	out := []int32{1, 1, 1}
	for i, d := range shape {
		out[i] = int32(d)
	}
	return out, nil
}

// AddDataset writes a new field into /data and records it in
// datafield_names and dimensions. The array must match the spatial
// extents in dimensions. The dataset and both attributes are written in
// one session, so if any step fails the file is left unchanged.
func (s *Store) AddDataset(path, parentPath, name string, t ElementType, a Array) (err error) {
	defer s.observe("add_dataset", path, hdf5.JoinPath(parentPath, name))(&err)
	if !s.IsConventionFile(path) {
		return ErrNotConventionFile
	}
	if hdf5.CleanPath(parentPath) != DataGroup {
		return fmt.Errorf("%w: fields live in %s, not %s", ErrIntegrity, DataGroup, parentPath)
	}
	if err := checkFieldName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	err = s.update(path, func(f *hdf5.File) error {
		g, err := f.OpenGroup(DataGroup)
		if err != nil {
			return err
		}
		b, err := readBookkeeping(g)
		if err != nil {
			return err
		}
		shape, err := padShape(a.Shape)
		if err != nil {
			return err
		}
		if !slices.Equal(shape, b.dims[:3]) {
			return fmt.Errorf("%w: shape %v does not match %s %v", ErrIntegrity, a.Shape, AttrDimensions, b.dims[:3])
		}
		if _, err := WriteDataset(g, name, t, a); err != nil {
			return err
		}
		b.names = append(b.names, name)
		b.dims[3]++
		return replaceValues(f, DataGroup, b.values(), verifyInvariant)
	})
	if err != nil {
		return err
	}
	return s.reclaim(path)
}

// RemoveDataset deletes a dataset. When the file is a convention file and
// the dataset is a field in /data, datafield_names and dimensions are
// updated to match. A field missing from datafield_names is an integrity
// error and nothing is deleted.
//
// The file is reclaimed once after the delete and once more after the
// bookkeeping update. If the second step fails, the dataset is gone while
// the attributes still list it.
func (s *Store) RemoveDataset(path, parentPath, name string) (err error) {
	defer s.observe("remove_dataset", path, hdf5.JoinPath(parentPath, name))(&err)
	convention := s.IsConventionFile(path)

	var (
		b       bookkeeping
		tracked bool
	)
	err = s.update(path, func(f *hdf5.File) error {
		g, err := f.OpenGroup(parentPath)
		if err != nil {
			return err
		}
		if _, err := g.OpenDataset(name); err != nil {
			return err
		}
		if convention && g.Path() == DataGroup {
			if b, err = readBookkeeping(g); err != nil {
				return err
			}
			i := slices.Index(b.names, name)
			if i < 0 {
				return fmt.Errorf("%w: %s is not listed in %s %v", ErrIntegrity, name, AttrFieldNames, b.names)
			}
			b.names = slices.Delete(b.names, i, i+1)
			b.dims[3]--
			tracked = true
		}
		return g.Unlink(name)
	})
	if err != nil {
		return err
	}
	if err := s.reclaim(path); err != nil {
		return err
	}
	if !tracked {
		return nil
	}
	if err := s.replaceAttributeValues(path, DataGroup, b.values(), verifyInvariant); err != nil {
		return fmt.Errorf("dataset removed, bookkeeping failed: %w", err)
	}
	return nil
}

// ReadVariables returns datafield_names.
func (s *Store) ReadVariables(path string) (names []string, err error) {
	defer s.observe("read_variables", path, DataGroup)(&err)
	err = s.view(path, func(f *hdf5.File) error {
		g, ok := conventionGroup(f)
		if !ok {
			return ErrNotConventionFile
		}
		b, err := readBookkeeping(g)
		names = b.names
		return err
	})
	return names, err
}

// ReadDimensions returns the four entries of dimensions.
func (s *Store) ReadDimensions(path string) (dims []int32, err error) {
	defer s.observe("read_dimensions", path, DataGroup)(&err)
	err = s.view(path, func(f *hdf5.File) error {
		g, ok := conventionGroup(f)
		if !ok {
			return ErrNotConventionFile
		}
		b, err := readBookkeeping(g)
		dims = b.dims
		return err
	})
	return dims, err
}
