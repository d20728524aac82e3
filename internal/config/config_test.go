package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadGridDefaults(t *testing.T) {
	cfg, err := LoadGrid(writeTOML(t, ""))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultGrid(), cfg); diff != "" {
		t.Errorf("defaults changed (-want +got):\n%s", diff)
	}
}

func TestLoadGridOverrides(t *testing.T) {
	cfg, err := LoadGrid(writeTOML(t, `
simulation_name = " channel "
cylindrical = true
periodicity = [1, 0, 1]
endian = "big-endian"

[x]
hi = 2.0
n = 4

[z]
lo = -1.0
`))
	require.NoError(t, err)
	assert.Equal(t, "channel", cfg.SimulationName)
	assert.True(t, cfg.Cylindrical)
	assert.Equal(t, [3]int32{1, 0, 1}, cfg.Periodicity)
	assert.Equal(t, BigEndian, cfg.Endian)
	assert.Equal(t, Axis{Lo: 0, Hi: 2, N: 4}, cfg.X)
	assert.Equal(t, DefaultGrid().Y, cfg.Y)
	assert.Equal(t, Axis{Lo: -1, Hi: 1, N: 1}, cfg.Z)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, cfg.X.Faces())
}

func TestLoadGridInvalid(t *testing.T) {
	tests := map[string]string{
		"periodicity length": `periodicity = [1, 0]`,
		"periodicity value":  `periodicity = [2, 0, 0]`,
		"empty name":         `simulation_name = "  "`,
		"axis cells":         "[y]\nn = 0",
		"axis bounds":        "[x]\nlo = 3.0",
		"endian":             `endian = "middle"`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadGrid(writeTOML(t, body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadGridMissingFile(t *testing.T) {
	_, err := LoadGrid(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSnapshot(t *testing.T) {
	cfg, err := LoadSnapshot(writeTOML(t, `
fields = ["U", " V ", ""]
shape = [8, 4]
t0 = 1.5
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"U", "V"}, cfg.Fields)
	assert.Equal(t, []int{8, 4}, cfg.Shape)
	assert.Equal(t, 1.5, cfg.T0)
	assert.Equal(t, DefaultSnapshot().Dt, cfg.Dt)
	assert.Equal(t, LittleEndian, cfg.Endian)
}

func TestLoadSnapshotInvalid(t *testing.T) {
	tests := map[string]string{
		"no fields":  `fields = []`,
		"long name":  `fields = ["VELOCITYX"]`,
		"duplicate":  `fields = ["U", "U"]`,
		"trailing":   `fields = ["U "]`,
		"rank":       `shape = [1, 1, 1, 1]`,
		"zero shape": `shape = [0]`,
		"dt":         `dt = -1.0`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSnapshot(writeTOML(t, body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
