package rfml

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-rfml/hdf5"
)

var (
	// ErrNotConventionFile means the file has no /data group carrying both
	// dimensions and datafield_names.
	ErrNotConventionFile = errors.New("not an RFML convention file")
	// ErrNotFound means the named group, dataset or attribute does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means a create operation found the name taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrIntegrity means the tracked field names and the datasets under
	// /data disagree, or a change would make them disagree.
	ErrIntegrity = errors.New("convention integrity violation")
)

// OpError records a failed store operation. Err is matchable with the
// package sentinels and still carries the engine error.
type OpError struct {
	Op     string
	Path   string
	Object string
	Err    error
}

func (e *OpError) Error() string {
	msg := "rfml " + e.Op + " " + e.Path
	if e.Object != "" {
		msg += " " + e.Object
	}
	return msg + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// translate maps engine sentinels onto the store's.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyExists):
		return err
	case errors.Is(err, hdf5.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, hdf5.ErrExists):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	return err
}
