// Package rfml reads and writes files that follow the RFML convention: an
// HDF5 file whose top-level group /data carries a "dimensions" attribute
// (three spatial extents and a field count) and a "datafield_names"
// attribute naming every dataset stored in the group.
//
// A Store performs each operation in its own session. The file is opened,
// changed and closed before the call returns, on every path. Mutations that
// leave dead space behind run a reclamation pass afterwards.
//
//	s := rfml.New(rfml.WithLogger(logger))
//	err := s.WriteSnapshot("state.h5", []rfml.Field{
//	    {Name: "U", Array: rfml.Zeros(64, 64, 1)},
//	}, 0, 1e-3, rfml.LittleEndian)
//	err = s.AddDataset("state.h5", rfml.DataGroup, "P", hdf5.Float64(hdf5.LittleEndian), rfml.Zeros(64, 64, 1))
//	names, err := s.ReadVariables("state.h5") // [U P]
package rfml
