package hdf5

import (
	"errors"
	"io/fs"
)

// WalkFunc is called for each object during traversal. obj is a *Group or
// a *Dataset, or nil when err reports that the object could not be opened.
// Returning fs.SkipAll stops the walk without error; any other non-nil
// error stops it and is returned by Walk.
type WalkFunc func(path string, obj Object, err error) error

// Walk visits g and everything below it, depth first, parents before
// children. An object reachable through several hard links is visited once.
//
//	hdf5.Walk(f.Root(), func(path string, obj hdf5.Object, err error) error {
//	    if ds, ok := obj.(*hdf5.Dataset); ok {
//	        fmt.Println(path, ds.Shape())
//	    }
//	    return err
//	})
func Walk(g *Group, fn WalkFunc) error {
	err := walkGroup(g, fn, map[uint64]bool{})
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func walkGroup(g *Group, fn WalkFunc, seen map[uint64]bool) error {
	seen[g.addr] = true
	if err := fn(g.path, g, nil); err != nil {
		return err
	}
	members, err := g.Members()
	if err != nil {
		return fn(g.path, nil, err)
	}
	for _, name := range members {
		obj, err := g.child(name)
		if err != nil {
			if err := fn(JoinPath(g.path, name), nil, err); err != nil {
				return err
			}
			continue
		}
		if seen[obj.Address()] {
			continue
		}
		switch o := obj.(type) {
		case *Group:
			if err := walkGroup(o, fn, seen); err != nil {
				return err
			}
		case *Dataset:
			seen[o.addr] = true
			if err := fn(o.path, o, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// AttrInfo describes one attribute found by WalkAttrs.
type AttrInfo struct {
	ObjectPath string
	Name       string
	Attr       *Attribute
	// Value is the decoded value, nil if Err is set.
	Value any
	Err   error
}

// WalkAttrs calls fn for every attribute of every object in the file.
func (f *File) WalkAttrs(fn func(AttrInfo) error) error {
	if f.closed {
		return ErrClosed
	}
	return Walk(f.root, func(path string, obj Object, err error) error {
		if err != nil {
			return err
		}
		attrs, err := obj.Attrs()
		if err != nil {
			return fn(AttrInfo{ObjectPath: path, Err: err})
		}
		for _, a := range attrs {
			info := AttrInfo{ObjectPath: path, Name: a.Name(), Attr: a}
			info.Value, info.Err = a.Values()
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	})
}
