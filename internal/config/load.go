package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type axisFile struct {
	Lo float64 `toml:"lo"`
	Hi float64 `toml:"hi"`
	N  int     `toml:"n"`
}

type gridFile struct {
	SimulationName string   `toml:"simulation_name"`
	X              axisFile `toml:"x"`
	Y              axisFile `toml:"y"`
	Z              axisFile `toml:"z"`
	Cylindrical    bool     `toml:"cylindrical"`
	Periodicity    []int32  `toml:"periodicity"`
	Endian         string   `toml:"endian"`
}

type snapshotFile struct {
	Fields []string `toml:"fields"`
	Shape  []int    `toml:"shape"`
	T0     float64  `toml:"t0"`
	Dt     float64  `toml:"dt"`
	Endian string   `toml:"endian"`
}

// LoadGrid reads a grid file. Keys missing from the file keep their
// DefaultGrid values.
func LoadGrid(path string) (Grid, error) {
	cfg := DefaultGrid()

	var raw gridFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Grid{}, fmt.Errorf("load grid config: %w", err)
	}

	if meta.IsDefined("simulation_name") {
		cfg.SimulationName = strings.TrimSpace(raw.SimulationName)
	}
	mergeAxis(meta, "x", raw.X, &cfg.X)
	mergeAxis(meta, "y", raw.Y, &cfg.Y)
	mergeAxis(meta, "z", raw.Z, &cfg.Z)
	if meta.IsDefined("cylindrical") {
		cfg.Cylindrical = raw.Cylindrical
	}
	if meta.IsDefined("periodicity") {
		if len(raw.Periodicity) != 3 {
			return Grid{}, fmt.Errorf("%w: periodicity needs 3 values, got %d", ErrInvalid, len(raw.Periodicity))
		}
		copy(cfg.Periodicity[:], raw.Periodicity)
	}
	if meta.IsDefined("endian") {
		cfg.Endian = strings.TrimSpace(raw.Endian)
	}

	if err := cfg.Validate(); err != nil {
		return Grid{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func mergeAxis(meta toml.MetaData, key string, raw axisFile, dst *Axis) {
	if meta.IsDefined(key, "lo") {
		dst.Lo = raw.Lo
	}
	if meta.IsDefined(key, "hi") {
		dst.Hi = raw.Hi
	}
	if meta.IsDefined(key, "n") {
		dst.N = raw.N
	}
}

// LoadSnapshot reads a snapshot file. Keys missing from the file keep
// their DefaultSnapshot values.
func LoadSnapshot(path string) (Snapshot, error) {
	cfg := DefaultSnapshot()

	var raw snapshotFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot config: %w", err)
	}

	if meta.IsDefined("fields") {
		cfg.Fields = normalizeFields(raw.Fields)
	}
	if meta.IsDefined("shape") {
		cfg.Shape = raw.Shape
	}
	if meta.IsDefined("t0") {
		cfg.T0 = raw.T0
	}
	if meta.IsDefined("dt") {
		cfg.Dt = raw.Dt
	}
	if meta.IsDefined("endian") {
		cfg.Endian = strings.TrimSpace(raw.Endian)
	}

	if err := cfg.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func normalizeFields(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if v := strings.TrimSpace(f); v != "" {
			out = append(out, v)
		}
	}
	return out
}
