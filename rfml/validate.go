package rfml

import (
	"github.com/robert-malhotra/go-rfml/hdf5"
)

// IsConventionFile reports whether path is an HDF5 file whose /data group
// carries both dimensions and datafield_names. Any failure to read the
// file counts as false.
func (s *Store) IsConventionFile(path string) bool {
	ok := false
	err := s.view(path, func(f *hdf5.File) error {
		_, ok = conventionGroup(f)
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("path", path).Msg("not a convention file")
	}
	return err == nil && ok
}

func conventionGroup(f *hdf5.File) (*hdf5.Group, bool) {
	g, err := f.OpenGroup(DataGroup)
	if err != nil {
		return nil, false
	}
	return g, g.HasAttr(AttrDimensions) && g.HasAttr(AttrFieldNames)
}
