// Package object reads and writes HDF5 object headers.
//
// Version 1 headers (as written by libhdf5 for superblock v0/v1 files) and
// version 2 "OHDR" headers are read, including continuation blocks. Messages
// from every chunk are flattened into a single list so callers never see
// continuations.
//
// Only version 2 headers are written. [Encode] produces a complete header
// with its checksum in memory; the caller decides where it goes. A header is
// never edited in place: a changed object gets a fresh header and the old one
// becomes dead space until the file is repacked.
package object
