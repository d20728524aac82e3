package rfml

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/robert-malhotra/go-rfml/hdf5"
	"github.com/robert-malhotra/go-rfml/internal/observability"
)

// Layout names shared by every convention file.
const (
	DataGroup          = "/data"
	AttrDimensions     = "dimensions"
	AttrFieldNames     = "datafield_names"
	AttrSimulationName = "simulation_name"
	AttrParameters     = "parameters"
	AttrTimeVariables  = "time_variables"

	// NameWidth is the fixed width of a datafield_names entry.
	NameWidth = 8
	// SimulationNameWidth is the fixed width of simulation_name.
	SimulationNameWidth = 64
)

// Reclaimer compacts a closed file in place.
type Reclaimer interface {
	Reclaim(path string) error
}

// ReclaimFunc adapts a function to Reclaimer.
type ReclaimFunc func(path string) error

func (f ReclaimFunc) Reclaim(path string) error { return f(path) }

// Repacker is the default Reclaimer. It rewrites the file through
// hdf5.RepackFile and reports the bytes saved.
type Repacker struct {
	Logger zerolog.Logger
}

func (r Repacker) Reclaim(path string) error {
	rep, err := hdf5.RepackFile(path)
	if err != nil {
		return err
	}
	observability.RecordReclaimed(rep.Reclaimed())
	r.Logger.Info().
		Str("path", path).
		Int64("before", rep.Before).
		Int64("after", rep.After).
		Msg("reclaimed space")
	return nil
}

// Store runs convention operations against files on disk. The zero value
// is not usable; call New.
type Store struct {
	logger    zerolog.Logger
	reclaimer Reclaimer
}

type Option func(*Store)

// WithLogger sets the logger for operation and reclamation events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithReclaimer replaces the repacking reclaimer.
func WithReclaimer(r Reclaimer) Option {
	return func(s *Store) { s.reclaimer = r }
}

func New(opts ...Option) *Store {
	s := &Store{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.reclaimer == nil {
		s.reclaimer = Repacker{Logger: s.logger}
	}
	return s
}

// observe wraps the error of a finished operation and records it.
//
//	defer s.observe("read_attribute", path, object)(&err)
func (s *Store) observe(op, path, object string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		if *errp != nil {
			var opErr *OpError
			if !errors.As(*errp, &opErr) {
				*errp = &OpError{Op: op, Path: path, Object: object, Err: translate(*errp)}
			}
		}
		took := time.Since(start)
		observability.RecordOperation(op, took, *errp)
		ev := s.logger.Debug()
		if *errp != nil {
			ev = s.logger.Warn().Err(*errp)
		}
		ev.Str("op", op).Str("path", path).Str("object", object).Dur("took", took).Msg("store operation")
	}
}

// view runs fn with the file open read-only.
func (s *Store) view(path string, fn func(*hdf5.File) error) error {
	f, err := hdf5.Open(path)
	if err != nil {
		return err
	}
	return run(f, fn)
}

// update runs fn with the file open for writing. Legacy files are
// repacked first so they can be modified in place.
func (s *Store) update(path string, fn func(*hdf5.File) error) error {
	f, err := hdf5.OpenReadWrite(path)
	if err != nil {
		return err
	}
	if f.Legacy() {
		if err := f.Abort(); err != nil {
			return err
		}
		s.logger.Info().Str("path", path).Msg("normalizing legacy layout")
		if err := s.reclaim(path); err != nil {
			return err
		}
		if f, err = hdf5.OpenReadWrite(path); err != nil {
			return err
		}
	}
	return run(f, func(f *hdf5.File) error {
		if err := fn(f); err != nil {
			return err
		}
		s.logger.Debug().Str("path", path).Uint64("dead", f.Dead()).Msg("closing session")
		return nil
	})
}

// create runs fn on a new file. The file is removed if fn fails.
func (s *Store) create(path string, fn func(*hdf5.File) error) error {
	f, err := hdf5.Create(path)
	if err != nil {
		return err
	}
	if err := run(f, fn); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// run commits the session only if fn succeeds. On failure the file is
// aborted, leaving it as it was when opened.
func run(f *hdf5.File, fn func(*hdf5.File) error) error {
	committed := false
	defer func() {
		if !committed {
			f.Abort()
		}
	}()
	if err := fn(f); err != nil {
		return err
	}
	committed = true
	return f.Close()
}

func (s *Store) reclaim(path string) error {
	if err := s.reclaimer.Reclaim(path); err != nil {
		return fmt.Errorf("reclaim space: %w", err)
	}
	return nil
}
