// Package hdf5 is a small pure Go HDF5 engine: enough of the format to read
// files written by libhdf5 and h5py, and to create and modify files made of
// groups, compact attributes and contiguous datasets.
//
// Modification never edits metadata in place. A changed object gets a new
// header at the end of the file and every group on its path is relinked, so
// the old bytes become dead space. [RepackFile] rewrites a file into a fresh,
// densely packed copy.
package hdf5

import (
	"errors"

	"github.com/robert-malhotra/go-rfml/internal/dtype"
)

var (
	ErrNotHDF5      = errors.New("not an HDF5 file")
	ErrNotFound     = errors.New("object not found")
	ErrExists       = errors.New("object already exists")
	ErrNotDataset   = errors.New("object is not a dataset")
	ErrNotGroup     = errors.New("object is not a group")
	ErrUnsupported  = errors.New("unsupported feature")
	ErrInvalidPath  = errors.New("invalid path")
	ErrClosed       = errors.New("file is closed")
	ErrReadOnly     = errors.New("file is not writable")
	ErrShape        = errors.New("element count does not match shape")
	ErrLegacyLayout = errors.New("legacy file layout cannot be modified in place; repack first")

	// ErrIncompatible means values cannot be stored in a datatype without
	// overflow or truncation.
	ErrIncompatible = dtype.ErrIncompatible
)
