package rfml

import (
	"github.com/robert-malhotra/go-rfml/hdf5"
)

func attrObject(parentPath, name string) string {
	return hdf5.CleanPath(parentPath) + "@" + name
}

// ReadAttribute returns the value of the attribute name on the group or
// dataset at parentPath, as a one-dimensional array in the natural slice
// type of the stored elements.
func (s *Store) ReadAttribute(path, parentPath, name string) (a Array, err error) {
	defer s.observe("read_attribute", path, attrObject(parentPath, name))(&err)
	err = s.view(path, func(f *hdf5.File) error {
		attr, err := openAttribute(f, parentPath, name)
		if err != nil {
			return err
		}
		v, err := attr.Values()
		if err != nil {
			return err
		}
		a = Array{Shape: []int{attr.Len()}, Data: v}
		return nil
	})
	return a, err
}

// AttributeType returns the stored element type of an attribute.
func (s *Store) AttributeType(path, parentPath, name string) (t ElementType, err error) {
	defer s.observe("attribute_type", path, attrObject(parentPath, name))(&err)
	err = s.view(path, func(f *hdf5.File) error {
		attr, err := openAttribute(f, parentPath, name)
		if err != nil {
			return err
		}
		t, err = attr.Type()
		return err
	})
	return t, err
}

func openAttribute(f *hdf5.File, parentPath, name string) (*hdf5.Attribute, error) {
	obj, err := f.Object(parentPath)
	if err != nil {
		return nil, err
	}
	return obj.Attr(name)
}

// WriteNewAttribute creates a one-dimensional attribute holding data
// encoded as t. It returns ErrAlreadyExists, writing nothing, if the name
// is taken.
func (s *Store) WriteNewAttribute(path, parentPath, name string, t ElementType, data any) (err error) {
	defer s.observe("write_new_attribute", path, attrObject(parentPath, name))(&err)
	return s.update(path, func(f *hdf5.File) error {
		obj, err := f.Object(parentPath)
		if err != nil {
			return err
		}
		_, err = obj.CreateAttribute(name, t, dataOf(data))
		return err
	})
}

// ReplaceAttributeValue swaps the value of an existing attribute and then
// reclaims the space the old value occupied. The stored element type is
// kept; data is converted to it.
func (s *Store) ReplaceAttributeValue(path, parentPath, name string, data any) (err error) {
	defer s.observe("replace_attribute_value", path, attrObject(parentPath, name))(&err)
	return s.replaceAttributeValues(path, parentPath, []attrValue{{name: name, data: dataOf(data)}}, nil)
}

type attrValue struct {
	name string
	data any
}

// replaceAttributeValues replaces several attributes of one object in a
// single session followed by one reclamation pass. check, if set, runs
// before the file is closed; if it fails nothing is committed.
func (s *Store) replaceAttributeValues(path, parentPath string, values []attrValue, check func(*hdf5.File) error) error {
	err := s.update(path, func(f *hdf5.File) error {
		return replaceValues(f, parentPath, values, check)
	})
	if err != nil {
		return err
	}
	return s.reclaim(path)
}

func replaceValues(f *hdf5.File, parentPath string, values []attrValue, check func(*hdf5.File) error) error {
	obj, err := f.Object(parentPath)
	if err != nil {
		return err
	}
	for _, v := range values {
		if _, err := obj.ReplaceAttribute(v.name, v.data); err != nil {
			return err
		}
	}
	if check != nil {
		return check(f)
	}
	return nil
}
