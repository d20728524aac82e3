package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/go-rfml/internal/dtype"
	"github.com/robert-malhotra/go-rfml/internal/message"
	"github.com/robert-malhotra/go-rfml/internal/object"
)

// Object is implemented by *Group and *Dataset.
type Object interface {
	Name() string
	Path() string
	Address() uint64
	Attrs() ([]*Attribute, error)
	Attr(name string) (*Attribute, error)
	HasAttr(name string) bool
	CreateAttribute(name string, t Type, values any) (*Attribute, error)
	ReplaceAttribute(name string, values any) (*Attribute, error)
	DeleteAttribute(name string) error
}

// node is the part of an object shared by groups and datasets: its header
// and its place in the tree.
type node struct {
	file   *File
	path   string
	addr   uint64
	header *object.Header
	parent *Group
	chunk  int
}

// Name returns the last path component, or "/" for the root group.
func (n *node) Name() string {
	if n.path == "/" {
		return "/"
	}
	return path.Base(n.path)
}

// Path returns the absolute path of the object.
func (n *node) Path() string { return n.path }

// Address returns the current object header address.
func (n *node) Address() uint64 { return n.addr }

func (n *node) attributeMessages() ([]*message.Attribute, error) {
	for _, m := range n.header.Messages {
		if u, ok := m.(*message.Unknown); ok && u.Type() == message.TypeAttributeInfo &&
			message.DenseAttributes(u.Data, n.file.reader) {
			return nil, fmt.Errorf("%w: dense attribute storage on %s", ErrUnsupported, n.path)
		}
	}
	return n.header.Attributes(), nil
}

// Attrs returns the object's attributes in header order.
func (n *node) Attrs() ([]*Attribute, error) {
	msgs, err := n.attributeMessages()
	if err != nil {
		return nil, err
	}
	out := make([]*Attribute, len(msgs))
	for i, m := range msgs {
		out[i] = &Attribute{msg: m}
	}
	return out, nil
}

// Attr returns the named attribute.
func (n *node) Attr(name string) (*Attribute, error) {
	msgs, err := n.attributeMessages()
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if m.Name == name {
			return &Attribute{msg: m}, nil
		}
	}
	return nil, fmt.Errorf("attribute %q on %s: %w", name, n.path, ErrNotFound)
}

// HasAttr reports whether the named attribute exists.
func (n *node) HasAttr(name string) bool {
	_, err := n.Attr(name)
	return err == nil
}

// CreateAttribute adds a one-dimensional attribute holding values encoded
// as t. It fails with ErrExists if the name is taken.
func (n *node) CreateAttribute(name string, t Type, values any) (*Attribute, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty attribute name", ErrInvalidPath)
	}
	dt, err := t.datatype()
	if err != nil {
		return nil, err
	}
	if n.HasAttr(name) {
		return nil, fmt.Errorf("attribute %q on %s: %w", name, n.path, ErrExists)
	}
	msg, err := newAttributeMessage(name, dt, values)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", name, err)
	}
	msgs := append(append([]message.Message(nil), n.header.Messages...), msg)
	if err := n.rewrite(msgs); err != nil {
		return nil, err
	}
	return &Attribute{msg: msg}, nil
}

// ReplaceAttribute swaps the value of an existing attribute. The stored
// datatype is kept exactly; values are converted to it. The new value is
// one-dimensional with len(values) elements.
func (n *node) ReplaceAttribute(name string, values any) (*Attribute, error) {
	old, err := n.Attr(name)
	if err != nil {
		return nil, err
	}
	msg, err := newAttributeMessage(name, old.msg.Datatype, values)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", name, err)
	}
	msgs := make([]message.Message, 0, len(n.header.Messages))
	for _, m := range n.header.Messages {
		if a, ok := m.(*message.Attribute); ok && a.Name == name {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, m)
	}
	if err := n.rewrite(msgs); err != nil {
		return nil, err
	}
	return &Attribute{msg: msg}, nil
}

// DeleteAttribute removes the named attribute.
func (n *node) DeleteAttribute(name string) error {
	if _, err := n.Attr(name); err != nil {
		return err
	}
	msgs := make([]message.Message, 0, len(n.header.Messages))
	for _, m := range n.header.Messages {
		if a, ok := m.(*message.Attribute); ok && a.Name == name {
			continue
		}
		msgs = append(msgs, m)
	}
	return n.rewrite(msgs)
}

func newAttributeMessage(name string, dt *message.Datatype, values any) (*message.Attribute, error) {
	count, err := dtype.Len(values)
	if err != nil {
		return nil, err
	}
	raw, err := dtype.Encode(dt, values)
	if err != nil {
		return nil, err
	}
	return message.NewAttribute(name, dt, message.NewDataspace([]uint64{uint64(count)}), raw), nil
}

// rewrite stores msgs as the object's new header and relinks every group
// up to the root.
func (n *node) rewrite(msgs []message.Message) error {
	if err := n.file.checkWritable(); err != nil {
		return err
	}
	if n.header.SymbolTable() != nil {
		return fmt.Errorf("%s: %w", n.path, ErrLegacyLayout)
	}
	for p := n.parent; p != nil; p = p.parent {
		if p.header.SymbolTable() != nil {
			return fmt.Errorf("%s: %w", p.path, ErrLegacyLayout)
		}
	}
	if n.header.Shared() {
		return fmt.Errorf("%w: shared messages on %s", ErrUnsupported, n.path)
	}

	addr, err := n.file.writeHeader(msgs, n.chunk)
	if err != nil {
		return fmt.Errorf("rewriting %s: %w", n.path, err)
	}
	h, err := object.Read(n.file.reader, addr)
	if err != nil {
		return fmt.Errorf("rereading %s: %w", n.path, err)
	}
	n.file.allocator.Free(n.header.Address, n.header.Span)
	n.addr, n.header = addr, h

	if n.parent == nil {
		n.file.superblock.RootAddress = addr
		return nil
	}
	return n.parent.relink(n.Name(), addr)
}
