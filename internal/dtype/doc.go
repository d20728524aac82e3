// Package dtype converts between Go slices and the raw bytes of HDF5
// fixed-point, floating-point and fixed-length string elements.
//
// Encoding coerces: any numeric slice can be written into any numeric
// datatype. Floats written to an integer type truncate toward zero, and
// float widths go through float64. Strings are truncated or padded to the
// element size according to the datatype's padding rule.
//
// Decoding returns the Go slice type natural to the datatype:
//
//	HDF5 class     | Go type
//	---------------|--------------------------------
//	fixed-point    | []int8 ... []int64, []uint8 ... []uint64
//	floating-point | []float32, []float64
//	string         | []string with padding removed
package dtype
