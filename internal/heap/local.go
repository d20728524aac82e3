// Package heap reads the local heaps that hold link names in legacy
// symbol table groups.
package heap

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-rfml/internal/binary"
)

var ErrInvalidHeap = errors.New("invalid local heap")

var signature = []byte("HEAP")

// Local is a version 0 local heap with its data segment loaded.
type Local struct {
	DataAddress uint64
	data        []byte
}

/*
Local heap layout:
  "HEAP" version(1) reserved(3)
  data segment size(L) free list head offset(L) data segment address(O)
*/

// ReadLocal reads the local heap at address.
func ReadLocal(r *binary.Reader, address uint64) (*Local, error) {
	hr := r.At(int64(address))
	sig, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("read local heap: %w", err)
	}
	if !bytes.Equal(sig, signature) {
		return nil, fmt.Errorf("%w: signature %q at %d", ErrInvalidHeap, sig, address)
	}
	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidHeap, version)
	}
	hr.Skip(3)
	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	if _, err := hr.ReadLength(); err != nil {
		return nil, err
	}
	dataAddr, err := hr.ReadOffset()
	if err != nil {
		return nil, err
	}
	data, err := r.At(int64(dataAddr)).ReadBytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("read local heap data: %w", err)
	}
	return &Local{DataAddress: dataAddr, data: data}, nil
}

// String returns the NUL-terminated string at offset. An offset past the
// data segment yields "".
func (h *Local) String(offset uint64) string {
	if offset >= uint64(len(h.data)) {
		return ""
	}
	s := h.data[offset:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}
