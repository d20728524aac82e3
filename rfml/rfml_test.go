package rfml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/robert-malhotra/go-rfml/hdf5"
)

// countingReclaimer counts passes and delegates to the real repacker.
type countingReclaimer struct {
	calls int
}

func (c *countingReclaimer) Reclaim(path string) error {
	c.calls++
	return Repacker{}.Reclaim(path)
}

func newStore() (*Store, *countingReclaimer) {
	r := &countingReclaimer{}
	return New(WithReclaimer(r)), r
}

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// writeOneField writes a snapshot with C = zeros(10,10,10), t0 = 0 and
// dt = 2e-7.
func writeOneField(t *testing.T, s *Store) string {
	t.Helper()
	path := tempPath(t, "snap.h5")
	require.NoError(t, s.WriteSnapshot(path, []Field{{Name: "C", Array: Zeros(10, 10, 10)}}, 0, 2e-7, LittleEndian))
	return path
}

func TestWriteSnapshotLayout(t *testing.T) {
	s, _ := newStore()
	path := writeOneField(t, s)

	assert.True(t, s.IsConventionFile(path))
	dims, err := s.ReadDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 10, 10, 1}, dims)
	names, err := s.ReadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, names)
	tv, err := s.ReadAttribute(path, DataGroup, AttrTimeVariables)
	require.NoError(t, err)
	assert.Equal(t, []float64{2e-7, 0}, tv.Data)

	typ, err := s.AttributeType(path, DataGroup, AttrFieldNames)
	require.NoError(t, err)
	assert.Equal(t, "string8/spacepad", typ.String())

	c, err := s.ReadDataset(path, DataGroup, "C")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 10}, c.Shape)
	assert.Len(t, c.Data, 1000)
}

func TestWriteSnapshotBigEndianAndIntegers(t *testing.T) {
	s, _ := newStore()
	path := tempPath(t, "be.h5")
	fields := []Field{
		{Name: "rho", Array: Array{Shape: []int{2, 2}, Data: []float32{1, 2, 3, 4}}},
		{Name: "flag", Array: Array{Shape: []int{2, 2}, Data: []int16{0, 1, 0, 1}}},
	}
	require.NoError(t, s.WriteSnapshot(path, fields, 1, 0.5, BigEndian))

	dims, err := s.ReadDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 2, 1, 2}, dims)
	typ, err := s.DatasetType(path, DataGroup, "rho")
	require.NoError(t, err)
	assert.Equal(t, hdf5.Float64(hdf5.BigEndian), typ)
	typ, err = s.DatasetType(path, DataGroup, "flag")
	require.NoError(t, err)
	assert.Equal(t, hdf5.Int(2, hdf5.BigEndian), typ)
	typ, err = s.AttributeType(path, DataGroup, AttrDimensions)
	require.NoError(t, err)
	assert.Equal(t, "int32be", typ.String())
}

func TestWriteSnapshotRejects(t *testing.T) {
	s, _ := newStore()
	tests := map[string][]Field{
		"empty":     nil,
		"long name": {{Name: "VELOCITYX", Array: Zeros(1)}},
		"trailing":  {{Name: "U ", Array: Zeros(1)}},
		"duplicate": {{Name: "U", Array: Zeros(1)}, {Name: "U", Array: Zeros(1)}},
		"shape":     {{Name: "U", Array: Zeros(2)}, {Name: "V", Array: Zeros(3)}},
		"rank":      {{Name: "U", Array: Zeros(1, 1, 1, 1)}},
		"strings":   {{Name: "U", Array: Array{Shape: []int{1}, Data: []string{"x"}}}},
	}
	for name, fields := range tests {
		t.Run(name, func(t *testing.T) {
			path := tempPath(t, "bad.h5")
			require.Error(t, s.WriteSnapshot(path, fields, 0, 1, LittleEndian))
			_, err := os.Stat(path)
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestIsConventionFile(t *testing.T) {
	s, _ := newStore()
	assert.True(t, s.IsConventionFile(writeOneField(t, s)))
	assert.False(t, s.IsConventionFile(tempPath(t, "missing.h5")))

	junk := tempPath(t, "junk.h5")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not hdf5"), 0o644))
	assert.False(t, s.IsConventionFile(junk))

	// /data with only one of the two marker attributes
	partial := tempPath(t, "partial.h5")
	f, err := hdf5.Create(partial)
	require.NoError(t, err)
	g, err := f.Root().CreateGroup("data")
	require.NoError(t, err)
	_, err = g.CreateAttribute(AttrDimensions, hdf5.Int32(hdf5.LittleEndian), []int32{1, 1, 1, 0})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.False(t, s.IsConventionFile(partial))

	empty := tempPath(t, "empty.h5")
	f, err = hdf5.Create(empty)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.False(t, s.IsConventionFile(empty))
}

func TestAttributeRoundTrip(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)

	require.NoError(t, s.WriteNewAttribute(path, DataGroup, "units", hdf5.FixedString(8), []string{"m", "kg/m3"}))
	got, err := s.ReadAttribute(path, DataGroup, "units")
	require.NoError(t, err)
	if diff := cmp.Diff(Array{Shape: []int{2}, Data: []string{"m", "kg/m3"}}, got); diff != "" {
		t.Errorf("attribute mismatch (-want +got):\n%s", diff)
	}

	err = s.WriteNewAttribute(path, DataGroup, "units", hdf5.FixedString(8), []string{"s"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	got, err = s.ReadAttribute(path, DataGroup, "units")
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "kg/m3"}, got.Data)

	// attributes on a dataset
	require.NoError(t, s.WriteNewAttribute(path, "/data/C", "scale", hdf5.Float64(hdf5.BigEndian), []float64{1.5}))
	got, err = s.ReadAttribute(path, "/data/C", "scale")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, got.Data)

	_, err = s.ReadAttribute(path, DataGroup, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ReadAttribute(path, "/nope", "units")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, r.calls)
}

func TestReplaceAttributeKeepsType(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)
	require.NoError(t, s.WriteNewAttribute(path, DataGroup, "steps", hdf5.Int32(hdf5.LittleEndian), []int32{1, 2}))

	for i, v := range []any{[]int{5, 6, 7}, []float64{8.9}, []int64{-3}} {
		require.NoError(t, s.ReplaceAttributeValue(path, DataGroup, "steps", v))
		typ, err := s.AttributeType(path, DataGroup, "steps")
		require.NoError(t, err)
		assert.Equal(t, hdf5.Int32(hdf5.LittleEndian), typ)
		assert.Equal(t, i+1, r.calls)
	}
	got, err := s.ReadAttribute(path, DataGroup, "steps")
	require.NoError(t, err)
	assert.Equal(t, Array{Shape: []int{1}, Data: []int32{-3}}, got)

	err = s.ReplaceAttributeValue(path, DataGroup, "missing", []int{1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, r.calls)
}

func TestOverwriteDatasetKeepsType(t *testing.T) {
	s, _ := newStore()
	path := writeOneField(t, s)
	require.NoError(t, s.WriteDataset(path, "/", "series", hdf5.Float64(hdf5.LittleEndian),
		Array{Shape: []int{3}, Data: []float64{0, 0, 0}}))

	in := []float32{1.1, 2.5, -3.3}
	require.NoError(t, s.OverwriteDataset(path, "/", "series", in))

	typ, err := s.DatasetType(path, "/", "series")
	require.NoError(t, err)
	assert.Equal(t, hdf5.Float64(hdf5.LittleEndian), typ)
	got, err := s.ReadDataset(path, "/", "series")
	require.NoError(t, err)
	assert.Equal(t, []float64{float64(in[0]), float64(in[1]), float64(in[2])}, got.Data)

	err = s.OverwriteDataset(path, "/", "series", Array{Shape: []int{2}, Data: []float64{1, 2}})
	assert.ErrorIs(t, err, hdf5.ErrShape)
	err = s.WriteDataset(path, "/", "series", hdf5.Float64(hdf5.LittleEndian), Array{Shape: []int{1}, Data: []float64{1}})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAddDataset(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)

	tData := make([]float64, 1000)
	for i := range tData {
		tData[i] = float64(i)
	}
	require.NoError(t, s.AddDataset(path, DataGroup, "T", hdf5.Float64(hdf5.LittleEndian),
		Array{Shape: []int{10, 10, 10}, Data: tData}))
	assert.Equal(t, 1, r.calls)

	dims, err := s.ReadDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, int32(2), dims[3])
	names, err := s.ReadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "T"}, names)
	got, err := s.ReadDataset(path, DataGroup, "T")
	require.NoError(t, err)
	assert.Equal(t, tData, got.Data)
}

func TestAddDatasetRejects(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)
	f64 := hdf5.Float64(hdf5.LittleEndian)

	assert.ErrorIs(t, s.AddDataset(path, DataGroup, "P", f64, Zeros(10, 10)), ErrIntegrity)
	assert.ErrorIs(t, s.AddDataset(path, DataGroup, "PRESSURE1", f64, Zeros(10, 10, 10)), ErrIntegrity)
	assert.ErrorIs(t, s.AddDataset(path, DataGroup, "P ", f64, Zeros(10, 10, 10)), ErrIntegrity)
	assert.ErrorIs(t, s.AddDataset(path, DataGroup, "", f64, Zeros(10, 10, 10)), ErrIntegrity)
	assert.ErrorIs(t, s.AddDataset(path, "/", "P", f64, Zeros(10, 10, 10)), ErrIntegrity)
	assert.ErrorIs(t, s.AddDataset(path, DataGroup, "C", f64, Zeros(10, 10, 10)), ErrAlreadyExists)

	cfg := tempPath(t, "cfg.h5")
	require.NoError(t, s.WriteConfig(cfg, GridConfig{X: []float64{0, 1}, Y: []float64{0, 1}, Z: []float64{0, 1}}, LittleEndian))
	assert.ErrorIs(t, s.AddDataset(cfg, DataGroup, "P", f64, Zeros(1)), ErrNotConventionFile)

	assert.Zero(t, r.calls)
	names, err := s.ReadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, names)
}

func TestAddDatasetFailedCheckCommitsNothing(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)
	require.NoError(t, s.WriteDataset(path, DataGroup, "stray", hdf5.Int32(hdf5.LittleEndian),
		Array{Shape: []int{1}, Data: []int32{1}}))
	before, err := os.Stat(path)
	require.NoError(t, err)

	err = s.AddDataset(path, DataGroup, "T", hdf5.Float64(hdf5.LittleEndian), Zeros(10, 10, 10))
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Zero(t, r.calls)

	names, err := s.ReadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, names)
	dims, err := s.ReadDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 10, 10, 1}, dims)
	_, err = s.ReadDataset(path, DataGroup, "T")
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.Size(), after.Size())
}

func TestReplaceFailedCheckCommitsNothing(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)
	boom := errors.New("check failed")

	err := s.replaceAttributeValues(path, DataGroup,
		[]attrValue{{name: AttrTimeVariables, data: []float64{9, 9}}},
		func(*hdf5.File) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, r.calls)

	got, err := s.ReadAttribute(path, DataGroup, AttrTimeVariables)
	require.NoError(t, err)
	assert.Equal(t, []float64{2e-7, 0}, got.Data)
}

func TestReplaceAttributeOutOfRange(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)

	err := s.ReplaceAttributeValue(path, DataGroup, AttrDimensions, []float64{10, 10, 10, 1e12})
	assert.ErrorIs(t, err, hdf5.ErrIncompatible)
	err = s.ReplaceAttributeValue(path, DataGroup, AttrDimensions, []int64{10, 10, 10, 3e9})
	assert.ErrorIs(t, err, hdf5.ErrIncompatible)
	err = s.ReplaceAttributeValue(path, DataGroup, AttrFieldNames, []string{"TOOLONGNAME"})
	assert.ErrorIs(t, err, hdf5.ErrIncompatible)
	assert.Zero(t, r.calls)

	dims, err := s.ReadDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 10, 10, 1}, dims)
	names, err := s.ReadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, names)
}

func TestRemoveDataset(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)

	require.NoError(t, s.RemoveDataset(path, DataGroup, "C"))
	assert.Equal(t, 2, r.calls)

	dims, err := s.ReadDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, int32(0), dims[3])
	names, err := s.ReadVariables(path)
	require.NoError(t, err)
	assert.Empty(t, names)
	_, err = s.ReadDataset(path, DataGroup, "C")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, s.IsConventionFile(path))

	assert.ErrorIs(t, s.RemoveDataset(path, DataGroup, "C"), ErrNotFound)
	assert.Equal(t, 2, r.calls)
}

func TestRemoveUntrackedDataset(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)
	require.NoError(t, s.WriteDataset(path, DataGroup, "stray", hdf5.Int32(hdf5.LittleEndian),
		Array{Shape: []int{1}, Data: []int32{1}}))

	err := s.RemoveDataset(path, DataGroup, "stray")
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Zero(t, r.calls)
	_, err = s.ReadDataset(path, DataGroup, "stray")
	assert.NoError(t, err)
}

func TestRemoveOutsideData(t *testing.T) {
	s, r := newStore()
	path := writeOneField(t, s)
	require.NoError(t, s.WriteDataset(path, "/", "extra", hdf5.Int32(hdf5.LittleEndian),
		Array{Shape: []int{2}, Data: []int32{1, 2}}))

	require.NoError(t, s.RemoveDataset(path, "/", "extra"))
	assert.Equal(t, 1, r.calls)
	names, err := s.ReadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, names)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	s, _ := newStore()
	path := writeOneField(t, s)
	dimsBefore, err := s.ReadDimensions(path)
	require.NoError(t, err)
	namesBefore, err := s.ReadVariables(path)
	require.NoError(t, err)

	require.NoError(t, s.AddDataset(path, DataGroup, "T", hdf5.Float64(hdf5.LittleEndian), Zeros(10, 10, 10)))
	require.NoError(t, s.RemoveDataset(path, DataGroup, "T"))

	dims, err := s.ReadDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, dimsBefore, dims)
	names, err := s.ReadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, namesBefore, names)
}

func TestWriteConfig(t *testing.T) {
	s, _ := newStore()
	path := tempPath(t, "config.h5")
	x := floats.Span(make([]float64, 6), -1, 1)
	y := floats.Span(make([]float64, 4), 0, 3)
	z := []float64{0, 1}
	cfg := GridConfig{
		SimulationName: "channel",
		X:              x, Y: y, Z: z,
		Cylindrical: true,
		Periodicity: [3]int32{1, 0, 1},
	}
	require.NoError(t, s.WriteConfig(path, cfg, LittleEndian))
	assert.False(t, s.IsConventionFile(path))

	params, err := s.ReadAttribute(path, DataGroup, AttrParameters)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 1, 0, 1, 5, 3, 1}, params.Data)

	name, err := s.ReadAttribute(path, DataGroup, AttrSimulationName)
	require.NoError(t, err)
	assert.Equal(t, []string{"channel"}, name.Data)
	typ, err := s.AttributeType(path, DataGroup, AttrSimulationName)
	require.NoError(t, err)
	assert.Equal(t, hdf5.FixedString(64), typ)

	xm, err := s.ReadDataset(path, DataGroup, "xm")
	require.NoError(t, err)
	want := make([]float64, len(x)-1)
	for i := range want {
		want[i] = (x[i] + x[i+1]) / 2
	}
	assert.InDeltaSlice(t, want, xm.Data, 1e-15)

	mask, err := s.ReadDataset(path, DataGroup, "mask")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, mask.Shape)
	assert.Equal(t, make([]int32, 15), mask.Data)

	gotX, err := s.ReadDataset(path, DataGroup, "x")
	require.NoError(t, err)
	assert.Equal(t, x, gotX.Data)
}

func TestOpError(t *testing.T) {
	s, _ := newStore()
	path := writeOneField(t, s)
	_, err := s.ReadAttribute(path, DataGroup, "nope")

	var opErr *OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "read_attribute", opErr.Op)
	assert.Equal(t, path, opErr.Path)
	assert.Equal(t, "/data@nope", opErr.Object)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, hdf5.ErrNotFound)
	assert.Contains(t, err.Error(), "rfml read_attribute")
}

func TestReclaimFailureSurfaces(t *testing.T) {
	boom := errors.New("disk full")
	s := New(WithReclaimer(ReclaimFunc(func(string) error { return boom })))
	path := writeOneField(t, s)
	err := s.ReplaceAttributeValue(path, DataGroup, AttrTimeVariables, []float64{1, 2})
	assert.ErrorIs(t, err, boom)
}

func TestParseEndian(t *testing.T) {
	for in, want := range map[string]Endian{
		"":              LittleEndian,
		"little-endian": LittleEndian,
		"Big-Endian":    BigEndian,
	} {
		got, err := ParseEndian(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEndian("middle-endian")
	assert.Error(t, err)
	assert.Equal(t, "big-endian", BigEndian.String())
}

func TestMidpoints(t *testing.T) {
	assert.Equal(t, []float64{0.5, 2}, Midpoints([]float64{0, 1, 3}))
	assert.Empty(t, Midpoints([]float64{1}))
}
