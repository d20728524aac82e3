package rfml

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/robert-malhotra/go-rfml/hdf5"
)

// GridConfig is the content of a solver configuration file. X, Y and Z
// are face coordinates. An empty Mask means zeros of shape
// (len(Y)-1, len(X)-1).
type GridConfig struct {
	SimulationName string
	X, Y, Z        []float64
	Cylindrical    bool
	Periodicity    [3]int32
	Mask           Array
}

// Midpoints returns the pairwise averages of adjacent coordinates.
func Midpoints(a []float64) []float64 {
	if len(a) < 2 {
		return []float64{}
	}
	mid := make([]float64, len(a)-1)
	floats.AddTo(mid, a[:len(a)-1], a[1:])
	floats.Scale(0.5, mid)
	return mid
}

// WriteConfig creates a configuration file at path. Its /data group holds
// simulation_name, parameters, the mask and the grid coordinates with
// their midpoints. Configuration files carry no field bookkeeping and so
// are not convention files.
func (s *Store) WriteConfig(path string, cfg GridConfig, endian Endian) (err error) {
	defer s.observe("write_config", path, DataGroup)(&err)
	for _, axis := range []struct {
		name string
		v    []float64
	}{{"x", cfg.X}, {"y", cfg.Y}, {"z", cfg.Z}} {
		if len(axis.v) == 0 {
			return fmt.Errorf("%s has no coordinates", axis.name)
		}
	}
	if len(cfg.SimulationName) > SimulationNameWidth {
		return fmt.Errorf("simulation name is longer than %d bytes", SimulationNameWidth)
	}

	order := endian.order()
	nx, ny, nz := len(cfg.X)-1, len(cfg.Y)-1, len(cfg.Z)-1
	icyl := int32(0)
	if cfg.Cylindrical {
		icyl = 1
	}
	params := []int32{icyl, cfg.Periodicity[0], cfg.Periodicity[1], cfg.Periodicity[2], int32(nx), int32(ny), int32(nz)}

	mask := cfg.Mask
	if mask.Data == nil {
		mask = Array{Shape: []int{ny, nx}, Data: make([]int32, ny*nx)}
	}

	return s.create(path, func(f *hdf5.File) error {
		g, err := f.Root().CreateGroup("data")
		if err != nil {
			return err
		}
		if _, err := g.CreateAttribute(AttrSimulationName, hdf5.FixedString(SimulationNameWidth), []string{cfg.SimulationName}); err != nil {
			return err
		}
		if _, err := g.CreateAttribute(AttrParameters, hdf5.Int32(order), params); err != nil {
			return err
		}
		if _, err := WriteDataset(g, "mask", hdf5.Int32(order), mask); err != nil {
			return err
		}
		coords := []struct {
			name string
			v    []float64
		}{
			{"x", cfg.X}, {"y", cfg.Y}, {"z", cfg.Z},
			{"xm", Midpoints(cfg.X)}, {"ym", Midpoints(cfg.Y)}, {"zm", Midpoints(cfg.Z)},
		}
		for _, c := range coords {
			a := Array{Shape: []int{len(c.v)}, Data: c.v}
			if _, err := WriteDataset(g, c.name, hdf5.Float64(order), a); err != nil {
				return err
			}
		}
		return nil
	})
}

// Field is one named array of a snapshot.
type Field struct {
	Name string
	Array
}

// WriteSnapshot creates a convention file at path holding fields in /data,
// in the given order, with time_variables = [dt, t0]. All fields must
// share one shape of at most three extents. Integer arrays keep their
// natural width; everything else is stored as float64.
func (s *Store) WriteSnapshot(path string, fields []Field, t0, dt float64, endian Endian) (err error) {
	defer s.observe("write_snapshot", path, DataGroup)(&err)
	if len(fields) == 0 {
		return fmt.Errorf("snapshot has no fields")
	}
	names := make([]string, len(fields))
	for i, fd := range fields {
		if err := checkFieldName(fd.Name); err != nil {
			return err
		}
		if slices.Contains(names[:i], fd.Name) {
			return fmt.Errorf("duplicate field %q", fd.Name)
		}
		if !slices.Equal(fd.Shape, fields[0].Shape) {
			return fmt.Errorf("field %q has shape %v, want %v", fd.Name, fd.Shape, fields[0].Shape)
		}
		names[i] = fd.Name
	}
	shape, err := padShape(fields[0].Shape)
	if err != nil {
		return err
	}
	dims := append(shape, int32(len(fields)))

	order := endian.order()
	types := make([]ElementType, len(fields))
	for i, fd := range fields {
		if types[i], err = fieldType(fd.Data, order); err != nil {
			return fmt.Errorf("field %q: %w", fd.Name, err)
		}
	}

	return s.create(path, func(f *hdf5.File) error {
		g, err := f.Root().CreateGroup("data")
		if err != nil {
			return err
		}
		if _, err := g.CreateAttribute(AttrFieldNames, NameType, names); err != nil {
			return err
		}
		if _, err := g.CreateAttribute(AttrDimensions, hdf5.Int32(order), dims); err != nil {
			return err
		}
		if _, err := g.CreateAttribute(AttrTimeVariables, hdf5.Float64(order), []float64{dt, t0}); err != nil {
			return err
		}
		for i, fd := range fields {
			if _, err := WriteDataset(g, fd.Name, types[i], fd.Array); err != nil {
				return err
			}
		}
		return nil
	})
}

func fieldType(data any, order hdf5.Order) (ElementType, error) {
	switch data.(type) {
	case []int8:
		return hdf5.Int(1, order), nil
	case []int16:
		return hdf5.Int(2, order), nil
	case []int32:
		return hdf5.Int(4, order), nil
	case []int64, []int:
		return hdf5.Int(8, order), nil
	case []uint8:
		return hdf5.Uint(1, order), nil
	case []uint16:
		return hdf5.Uint(2, order), nil
	case []uint32:
		return hdf5.Uint(4, order), nil
	case []uint64, []uint:
		return hdf5.Uint(8, order), nil
	case []float64, []float32:
		return hdf5.Float64(order), nil
	}
	return ElementType{}, fmt.Errorf("unsupported field data %T", data)
}
