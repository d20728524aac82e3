package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/message"
)

var (
	signatureV2   = []byte("OHDR")
	signatureCont = []byte("OCHK")
)

var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksumMismatch   = errors.New("object header checksum mismatch")
)

// Header is a parsed object header.
type Header struct {
	Version uint8
	Address uint64
	Flags   uint8
	// Span is the number of bytes the first chunk occupies in the file.
	Span     uint64
	Messages []message.Message
}

// Read parses the object header at address.
func Read(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))
	sig, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}
	switch {
	case string(sig) == string(signatureV2):
		return readV2(r, address)
	case sig[0] == 1:
		return readV1(r, address)
	}
	return nil, fmt.Errorf("%w: unknown format at address %d", ErrInvalidHeader, address)
}

// Find returns the first message of type typ, or nil.
func (h *Header) Find(typ message.Type) message.Message {
	for _, m := range h.Messages {
		if m.Type() == typ {
			return m
		}
	}
	return nil
}

// Has reports whether a message of type typ is present.
func (h *Header) Has(typ message.Type) bool { return h.Find(typ) != nil }

// Dataspace returns the parsed dataspace message, or nil.
func (h *Header) Dataspace() *message.Dataspace {
	ds, _ := h.Find(message.TypeDataspace).(*message.Dataspace)
	return ds
}

// Datatype returns the parsed datatype message, or nil if it is absent or
// could not be decoded.
func (h *Header) Datatype() *message.Datatype {
	dt, _ := h.Find(message.TypeDatatype).(*message.Datatype)
	return dt
}

// Layout returns the parsed data layout message, or nil.
func (h *Header) Layout() *message.DataLayout {
	l, _ := h.Find(message.TypeDataLayout).(*message.DataLayout)
	return l
}

// LinkInfo returns the link info message, or nil.
func (h *Header) LinkInfo() *message.LinkInfo {
	li, _ := h.Find(message.TypeLinkInfo).(*message.LinkInfo)
	return li
}

// SymbolTable returns the legacy symbol table message, or nil.
func (h *Header) SymbolTable() *message.SymbolTable {
	st, _ := h.Find(message.TypeSymbolTable).(*message.SymbolTable)
	return st
}

// Links returns the link messages in header order.
func (h *Header) Links() []*message.Link {
	var out []*message.Link
	for _, m := range h.Messages {
		if l, ok := m.(*message.Link); ok {
			out = append(out, l)
		}
	}
	return out
}

// Attributes returns the decoded attribute messages in header order.
func (h *Header) Attributes() []*message.Attribute {
	var out []*message.Attribute
	for _, m := range h.Messages {
		if a, ok := m.(*message.Attribute); ok {
			out = append(out, a)
		}
	}
	return out
}

// Shared reports whether any message refers to a shared message elsewhere
// in the file.
func (h *Header) Shared() bool {
	for _, m := range h.Messages {
		if u, ok := m.(*message.Unknown); ok && u.Shared() {
			return true
		}
	}
	return false
}
