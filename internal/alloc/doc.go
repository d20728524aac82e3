// Package alloc hands out file space for an HDF5 file being modified.
//
// Space is only ever taken at the end of the file. Blocks that a rewrite
// abandons are recorded with [Allocator.Free] but never reused: they stay
// in the file as dead bytes until the file is repacked. [Allocator.Dead]
// reports how many bytes that is.
package alloc
