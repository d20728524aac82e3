package rfml

import (
	"github.com/robert-malhotra/go-rfml/hdf5"
)

// WriteDataset creates a contiguous dataset under g holding a encoded as
// t. It does no convention bookkeeping.
func WriteDataset(g *hdf5.Group, name string, t ElementType, a Array) (*hdf5.Dataset, error) {
	ds, err := g.CreateDataset(name, t, a.Shape, a.Data)
	if err != nil {
		return nil, translate(err)
	}
	return ds, nil
}

// WriteDataset is the file-level form of WriteDataset.
func (s *Store) WriteDataset(path, parentPath, name string, t ElementType, a Array) (err error) {
	defer s.observe("write_dataset", path, hdf5.JoinPath(parentPath, name))(&err)
	return s.update(path, func(f *hdf5.File) error {
		g, err := f.OpenGroup(parentPath)
		if err != nil {
			return err
		}
		_, err = WriteDataset(g, name, t, a)
		return err
	})
}

// ReadDataset returns the values and shape of a dataset.
func (s *Store) ReadDataset(path, parentPath, name string) (a Array, err error) {
	defer s.observe("read_dataset", path, hdf5.JoinPath(parentPath, name))(&err)
	err = s.view(path, func(f *hdf5.File) error {
		ds, err := f.OpenDataset(hdf5.JoinPath(parentPath, name))
		if err != nil {
			return err
		}
		v, err := ds.Values()
		if err != nil {
			return err
		}
		a = Array{Shape: ds.Shape(), Data: v}
		return nil
	})
	return a, err
}

// OverwriteDataset replaces the values of a dataset in place. data, an
// Array or a bare slice, is converted to the stored element type; type and
// shape on disk never change. Only the element count is checked.
func (s *Store) OverwriteDataset(path, parentPath, name string, data any) (err error) {
	defer s.observe("overwrite_dataset", path, hdf5.JoinPath(parentPath, name))(&err)
	return s.update(path, func(f *hdf5.File) error {
		ds, err := f.OpenDataset(hdf5.JoinPath(parentPath, name))
		if err != nil {
			return err
		}
		return ds.Write(dataOf(data))
	})
}

// DatasetType returns the stored element type of a dataset.
func (s *Store) DatasetType(path, groupPath, name string) (t ElementType, err error) {
	defer s.observe("dataset_type", path, hdf5.JoinPath(groupPath, name))(&err)
	err = s.view(path, func(f *hdf5.File) error {
		ds, err := f.OpenDataset(hdf5.JoinPath(groupPath, name))
		if err != nil {
			return err
		}
		t, err = ds.Type()
		return err
	})
	return t, err
}
