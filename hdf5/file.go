package hdf5

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/robert-malhotra/go-rfml/internal/alloc"
	"github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/message"
	"github.com/robert-malhotra/go-rfml/internal/object"
	"github.com/robert-malhotra/go-rfml/internal/superblock"
)

// File is an open HDF5 file.
type File struct {
	path       string
	file       *os.File
	reader     *binary.Reader
	superblock *superblock.Superblock
	root       *Group
	closed     bool

	writable  bool
	allocator *alloc.Allocator
	// physical size at the last flush, restored by Abort
	flushed int64

	// open handles by path, so every handle sees relinked addresses
	groups   map[string]*Group
	datasets map[string]*Dataset
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	return open(path, false)
}

// OpenReadWrite opens an existing HDF5 file for reading and writing.
func OpenReadWrite(path string) (*File, error) {
	return open(path, true)
}

func open(path string, writable bool) (*File, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	osFile, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	sb, err := superblock.Read(osFile)
	if err != nil {
		osFile.Close()
		if errors.Is(err, superblock.ErrNotHDF5) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotHDF5)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	var src io.ReaderAt = osFile
	if sb.FileOffset != 0 {
		src = io.NewSectionReader(osFile, sb.FileOffset, math.MaxInt64-sb.FileOffset)
	}
	f := newFile(path, osFile, sb)
	f.reader = binary.NewReader(src, sb.Config())
	f.writable = writable
	if writable {
		eof := sb.EOFAddress
		if st, err := osFile.Stat(); err == nil {
			f.flushed = st.Size()
			if uint64(st.Size()) > eof {
				eof = uint64(st.Size())
			}
		}
		f.allocator = alloc.New(eof)
	}

	if err := f.loadRoot(); err != nil {
		osFile.Close()
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	return f, nil
}

// Create creates a new, empty HDF5 file at path, truncating any existing
// file. The file gets a version 2 superblock and a root group.
func Create(path string, opts ...FileOption) (*File, error) {
	f, err := createEmpty(path, opts...)
	if err != nil {
		return nil, err
	}
	addr, err := f.writeHeader(object.GroupMessages(nil), object.MinGroupChunk)
	if err == nil {
		f.superblock.RootAddress = addr
		err = f.Flush()
	}
	if err == nil {
		err = f.loadRoot()
	}
	if err != nil {
		f.file.Close()
		os.Remove(path)
		return nil, err
	}
	return f, nil
}

// createEmpty creates a file holding only space for the superblock. The
// caller must set the root address before the file is flushed.
func createEmpty(path string, opts ...FileOption) (*File, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}
	osFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	sb := superblock.New()
	sb.OffsetSize = uint8(options.offsetSize)
	sb.LengthSize = uint8(options.lengthSize)
	sb.ExtensionAddress = binary.Undefined(options.offsetSize)

	f := newFile(path, osFile, sb)
	f.reader = binary.NewReader(osFile, sb.Config())
	f.writable = true
	f.allocator = alloc.New(uint64(sb.Size()))
	return f, nil
}

func newFile(path string, osFile *os.File, sb *superblock.Superblock) *File {
	return &File{
		path:       path,
		file:       osFile,
		superblock: sb,
		groups:     make(map[string]*Group),
		datasets:   make(map[string]*Dataset),
	}
}

func (f *File) loadRoot() error {
	h, err := object.Read(f.reader, f.superblock.RootAddress)
	if err != nil {
		return err
	}
	f.root = &Group{node: node{file: f, path: "/", addr: h.Address, header: h}}
	f.groups["/"] = f.root
	return nil
}

// Close flushes a writable file and releases it. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	var err error
	if f.writable {
		err = f.Flush()
	}
	f.closed = true
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Flush writes the superblock and syncs the file.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if !f.writable {
		return nil
	}
	f.superblock.EOFAddress = f.allocator.EOF()
	raw, err := f.superblock.Encode()
	if err != nil {
		return err
	}
	if _, err := f.file.WriteAt(raw, 0); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	if err := f.file.Sync(); err != nil {
		return err
	}
	st, err := f.file.Stat()
	if err != nil {
		return err
	}
	f.flushed = st.Size()
	return nil
}

// Abort releases the file without writing the superblock, so objects
// written since the last flush are discarded and the file is cut back to
// its flushed size. Dataset values overwritten in place by [Dataset.Write]
// are not restored. Aborting a closed file is a no-op.
func (f *File) Abort() error {
	if f.closed {
		return nil
	}
	f.closed = true
	var err error
	if f.writable {
		if terr := f.file.Truncate(f.flushed); terr != nil {
			err = fmt.Errorf("truncating: %w", terr)
		}
	}
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.path }

// Writable reports whether the file was opened for writing.
func (f *File) Writable() bool { return f.writable }

// Version returns the superblock version.
func (f *File) Version() int { return int(f.superblock.Version) }

// Root returns the root group.
func (f *File) Root() *Group { return f.root }

// OpenGroup opens a group by absolute path.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by absolute path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

// Object opens the group or dataset at path. The result is a *Group or a
// *Dataset.
func (f *File) Object(path string) (Object, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.open(path)
}

// Legacy reports whether the file or any group in it uses the symbol table
// layout, which must be repacked before it can be modified.
func (f *File) Legacy() bool {
	if f.legacySuperblock() {
		return true
	}
	legacy := false
	Walk(f.root, func(_ string, obj Object, err error) error {
		if g, ok := obj.(*Group); ok && g.header.SymbolTable() != nil {
			legacy = true
			return fs.SkipAll
		}
		return nil
	})
	return legacy
}

func (f *File) legacySuperblock() bool {
	return f.superblock.Legacy() || f.superblock.FileOffset != 0
}

// Size returns the logical end of file.
func (f *File) Size() uint64 {
	if f.allocator != nil {
		return f.allocator.EOF()
	}
	return f.superblock.EOFAddress
}

// Dead returns the number of bytes abandoned by modifications made through
// this handle.
func (f *File) Dead() uint64 {
	if f.allocator == nil {
		return 0
	}
	return f.allocator.Dead()
}

func (f *File) checkWritable() error {
	switch {
	case f.closed:
		return ErrClosed
	case !f.writable:
		return ErrReadOnly
	case f.legacySuperblock():
		return ErrLegacyLayout
	}
	return nil
}

// writeHeader encodes msgs as a new object header at the end of the file.
func (f *File) writeHeader(msgs []message.Message, minChunk int) (uint64, error) {
	raw, err := object.Encode(f.superblock.Config(), msgs, minChunk)
	if err != nil {
		return 0, err
	}
	addr := f.allocator.AllocAligned(uint64(len(raw)), 8)
	if _, err := f.file.WriteAt(raw, int64(addr)); err != nil {
		return 0, fmt.Errorf("writing object header: %w", err)
	}
	return addr, nil
}

// writeData stores raw bytes at the end of the file.
func (f *File) writeData(raw []byte) (uint64, error) {
	addr := f.allocator.AllocAligned(uint64(len(raw)), 8)
	if _, err := f.file.WriteAt(raw, int64(addr)); err != nil {
		return 0, fmt.Errorf("writing data: %w", err)
	}
	return addr, nil
}

// forget drops cached handles at or below path.
func (f *File) forget(path string) {
	for p := range f.groups {
		if p == path || hasPathPrefix(p, path) {
			delete(f.groups, p)
		}
	}
	for p := range f.datasets {
		if p == path || hasPathPrefix(p, path) {
			delete(f.datasets, p)
		}
	}
}

func hasPathPrefix(p, prefix string) bool {
	if prefix == "/" {
		return true
	}
	return len(p) > len(prefix) && p[:len(prefix)] == prefix && p[len(prefix)] == '/'
}
