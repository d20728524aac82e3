package dtype

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-rfml/internal/message"
)

func TestEncodeDecodeNumeric(t *testing.T) {
	tests := []struct {
		name string
		dt   *message.Datatype
		in   any
		want any
	}{
		{"int32le", message.NewFixedPointDatatype(4, true, message.OrderLE), []int32{-1, 0, 7}, []int32{-1, 0, 7}},
		{"int32be", message.NewFixedPointDatatype(4, true, message.OrderBE), []int32{-1, 0, 7}, []int32{-1, 0, 7}},
		{"uint16", message.NewFixedPointDatatype(2, false, message.OrderLE), []int{1, 65535}, []uint16{1, 65535}},
		{"int8", message.NewFixedPointDatatype(1, true, message.OrderLE), []int64{-128, 127}, []int8{-128, 127}},
		{"uint8", message.NewFixedPointDatatype(1, false, message.OrderLE), []uint8{0, 255}, []uint8{0, 255}},
		{"int64be", message.NewFixedPointDatatype(8, true, message.OrderBE), []int32{-5}, []int64{-5}},
		{"uint64", message.NewFixedPointDatatype(8, false, message.OrderLE), []uint64{1 << 63}, []uint64{1 << 63}},
		{"float64le", message.NewFloatDatatype(8, message.OrderLE), []float64{2e-7, -1.5}, []float64{2e-7, -1.5}},
		{"float64be", message.NewFloatDatatype(8, message.OrderBE), []float64{2e-7, -1.5}, []float64{2e-7, -1.5}},
		{"float32", message.NewFloatDatatype(4, message.OrderLE), []float64{0.5, 3}, []float32{0.5, 3}},
		{"int from float truncates", message.NewFixedPointDatatype(4, true, message.OrderLE), []float64{1.9, -1.9, 0.2}, []int32{1, -1, 0}},
		{"float from int", message.NewFloatDatatype(8, message.OrderLE), []int32{3, -4}, []float64{3, -4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.dt, tt.in)
			require.NoError(t, err)
			n, _ := Len(tt.in)
			assert.Len(t, raw, n*int(tt.dt.Size))
			got, err := Decode(tt.dt, raw)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestByteOrderOnDisk(t *testing.T) {
	raw, err := Encode(message.NewFixedPointDatatype(4, true, message.OrderBE), []int32{1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 1}, raw)

	raw, err = Encode(message.NewFixedPointDatatype(4, true, message.OrderLE), []int32{1})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0}, raw)
}

func TestStrings(t *testing.T) {
	space := message.NewStringDatatype(8, message.PadSpacePad, message.CharsetASCII)
	raw, err := Encode(space, []string{"C", "TEMPERAT"})
	require.NoError(t, err)
	assert.Equal(t, []byte("C       TEMPERAT"), raw)
	got, err := Decode(space, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "TEMPERAT"}, got)

	_, err = Encode(space, []string{"C", "TEMPERATURE"})
	assert.ErrorIs(t, err, ErrIncompatible)

	null := message.NewStringDatatype(4, message.PadNullPad, message.CharsetASCII)
	raw, err = Encode(null, []string{"ab"})
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 0, 0}, raw)
	got, err = Decode(null, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab"}, got)
}

func TestEncodeIncompatible(t *testing.T) {
	_, err := Encode(message.NewFloatDatatype(8, message.OrderLE), []string{"x"})
	assert.ErrorIs(t, err, ErrIncompatible)
	_, err = Encode(message.NewStringDatatype(8, message.PadSpacePad, message.CharsetASCII), []int32{1})
	assert.ErrorIs(t, err, ErrIncompatible)
	_, err = Encode(message.NewFloatDatatype(8, message.OrderLE), 3.0)
	assert.ErrorIs(t, err, ErrIncompatible)
	_, err = Encode(&message.Datatype{Class: message.ClassCompound, Size: 8}, []int32{1})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestEncodeOverflow(t *testing.T) {
	i32 := message.NewFixedPointDatatype(4, true, message.OrderLE)
	u8 := message.NewFixedPointDatatype(1, false, message.OrderLE)
	i64 := message.NewFixedPointDatatype(8, true, message.OrderBE)
	tests := []struct {
		name string
		dt   *message.Datatype
		in   any
	}{
		{"float above int32", i32, []float64{10, 1e12}},
		{"float 3e9 into int32", i32, []float64{3e9}},
		{"float below int32", i32, []float64{-3e9}},
		{"int64 above int32", i32, []int64{1 << 31}},
		{"uint above int32", i32, []uint32{1 << 31}},
		{"negative into uint8", u8, []int{-1}},
		{"int above uint8", u8, []int{256}},
		{"negative float into uint8", u8, []float64{-1}},
		{"NaN", i32, []float64{math.NaN()}},
		{"uint64 above int64", i64, []uint64{1 << 63}},
		{"float at int64 limit", i64, []float64{math.Ldexp(1, 63)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.dt, tt.in)
			assert.ErrorIs(t, err, ErrIncompatible)
		})
	}

	raw, err := Encode(i32, []float64{2147483647.5, -2147483648})
	require.NoError(t, err)
	got, err := Decode(i32, raw)
	require.NoError(t, err)
	assert.Equal(t, []int32{math.MaxInt32, math.MinInt32}, got)

	raw, err = Encode(u8, []int64{0, 255})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255}, raw)
}

func TestNatural(t *testing.T) {
	dt, err := Natural([]int32{1}, message.OrderBE)
	require.NoError(t, err)
	assert.Equal(t, "int32be", dt.String())

	dt, err = Natural([]string{"a", "abcd"}, message.OrderLE)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), dt.Size)

	_, err = Natural([]bool{true}, message.OrderLE)
	assert.Error(t, err)
}

func TestFloat64s(t *testing.T) {
	got, err := Float64s([]int16{1, -2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2}, got)
	_, err = Float64s([]string{"a"})
	assert.ErrorIs(t, err, ErrIncompatible)
}
