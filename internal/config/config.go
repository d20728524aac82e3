// Package config loads the TOML files that drive the rfml command line
// tool: grid descriptions for solver configuration files and field lists
// for snapshot files.
package config

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalid is returned by the Validate methods.
var ErrInvalid = errors.New("invalid configuration")

const (
	LittleEndian = "little-endian"
	BigEndian    = "big-endian"
)

// FieldNameWidth is the widest field name a snapshot can store.
const FieldNameWidth = 8

// Axis is one grid direction: N cells spanning [Lo, Hi].
type Axis struct {
	Lo float64
	Hi float64
	N  int
}

// Faces returns the N+1 evenly spaced face coordinates of the axis.
func (a Axis) Faces() []float64 {
	return floats.Span(make([]float64, a.N+1), a.Lo, a.Hi)
}

func (a Axis) validate(name string) error {
	if a.N < 1 {
		return fmt.Errorf("%w: %s.n must be at least 1, got %d", ErrInvalid, name, a.N)
	}
	if !(a.Hi > a.Lo) {
		return fmt.Errorf("%w: %s.hi (%g) must exceed %s.lo (%g)", ErrInvalid, name, a.Hi, name, a.Lo)
	}
	return nil
}

// Grid describes a solver configuration file.
type Grid struct {
	SimulationName string
	X, Y, Z        Axis
	Cylindrical    bool
	Periodicity    [3]int32
	Endian         string
}

func DefaultGrid() Grid {
	return Grid{
		SimulationName: "nga",
		X:              Axis{Lo: 0, Hi: 1, N: 16},
		Y:              Axis{Lo: 0, Hi: 1, N: 16},
		Z:              Axis{Lo: 0, Hi: 1, N: 1},
		Endian:         LittleEndian,
	}
}

func (g Grid) Validate() error {
	if strings.TrimSpace(g.SimulationName) == "" {
		return fmt.Errorf("%w: simulation_name is empty", ErrInvalid)
	}
	if len(g.SimulationName) > 64 {
		return fmt.Errorf("%w: simulation_name is longer than 64 bytes", ErrInvalid)
	}
	for _, a := range []struct {
		name string
		axis Axis
	}{{"x", g.X}, {"y", g.Y}, {"z", g.Z}} {
		if err := a.axis.validate(a.name); err != nil {
			return err
		}
	}
	for i, p := range g.Periodicity {
		if p != 0 && p != 1 {
			return fmt.Errorf("%w: periodicity[%d] must be 0 or 1, got %d", ErrInvalid, i, p)
		}
	}
	return validateEndian(g.Endian)
}

// Snapshot describes a zero-filled solver state file.
type Snapshot struct {
	Fields []string
	Shape  []int
	T0     float64
	Dt     float64
	Endian string
}

func DefaultSnapshot() Snapshot {
	return Snapshot{
		Fields: []string{"U", "V", "W", "P"},
		Shape:  []int{16, 16, 1},
		Dt:     1e-3,
		Endian: LittleEndian,
	}
}

func (s Snapshot) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalid)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f == "" || len(f) > FieldNameWidth {
			return fmt.Errorf("%w: field name %q must be 1 to %d bytes", ErrInvalid, f, FieldNameWidth)
		}
		if strings.TrimRight(f, " ") != f {
			return fmt.Errorf("%w: field name %q has trailing spaces", ErrInvalid, f)
		}
		if seen[f] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalid, f)
		}
		seen[f] = true
	}
	if len(s.Shape) == 0 || len(s.Shape) > 3 {
		return fmt.Errorf("%w: shape must have 1 to 3 extents, got %v", ErrInvalid, s.Shape)
	}
	for _, n := range s.Shape {
		if n < 1 {
			return fmt.Errorf("%w: shape extents must be positive, got %v", ErrInvalid, s.Shape)
		}
	}
	if s.Dt < 0 {
		return fmt.Errorf("%w: dt must not be negative", ErrInvalid)
	}
	return validateEndian(s.Endian)
}

func validateEndian(e string) error {
	switch e {
	case LittleEndian, BigEndian:
		return nil
	}
	return fmt.Errorf("%w: endian must be %q or %q, got %q", ErrInvalid, LittleEndian, BigEndian, e)
}
