package hdf5

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/message"
	"github.com/robert-malhotra/go-rfml/internal/object"
)

// Report describes the effect of a repack.
type Report struct {
	Before int64
	After  int64
}

// Reclaimed is the number of bytes the repack saved. It is negative when
// the packed file is larger, which happens for legacy files.
func (r Report) Reclaimed() int64 { return r.Before - r.After }

// RepackFile rewrites the file at path into a densely packed copy and
// atomically replaces the original with it. On any failure the original is
// left untouched.
func RepackFile(path string) (Report, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Report{}, err
	}
	src, err := Open(path)
	if err != nil {
		return Report{}, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".repack-*")
	if err != nil {
		return Report{}, err
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		return Report{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := Repack(src, tmpName); err != nil {
		return Report{}, fmt.Errorf("repacking %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, st.Mode().Perm()); err != nil {
		return Report{}, err
	}
	if err := src.Close(); err != nil {
		return Report{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return Report{}, err
	}
	committed = true

	after, err := os.Stat(path)
	if err != nil {
		return Report{}, err
	}
	return Report{Before: st.Size(), After: after.Size()}, nil
}

// Repack writes the logical content of src into a new file at dst:
// groups, links, attributes with their exact datatypes and dataset bytes.
// Objects are laid out children first, each written once, so the result
// has no dead space. Legacy symbol table groups come out as compact
// groups under a version 2 superblock.
func Repack(src *File, dst string) error {
	if src.closed {
		return ErrClosed
	}
	out, err := createEmpty(dst,
		WithOffsetSize(int(src.superblock.OffsetSize)),
		WithLengthSize(int(src.superblock.LengthSize)))
	if err != nil {
		return err
	}
	p := &packer{src: src, dst: out, done: map[uint64]uint64{}, active: map[uint64]bool{}}
	root, err := p.group(src.root)
	if err == nil {
		out.superblock.RootAddress = root
		err = out.Flush()
	}
	out.closed = true
	if cerr := out.file.Close(); err == nil {
		err = cerr
	}
	return err
}

type packer struct {
	src, dst *File
	// done maps source header addresses to their copies, so hard links
	// to one object stay shared.
	done   map[uint64]uint64
	active map[uint64]bool
}

func (p *packer) group(g *Group) (uint64, error) {
	if p.active[g.addr] {
		return 0, fmt.Errorf("%w: %s links to one of its ancestors", ErrUnsupported, g.path)
	}
	p.active[g.addr] = true
	defer delete(p.active, g.addr)

	keep, err := p.preserved(&g.node, message.TypeLink, message.TypeLinkInfo, message.TypeGroupInfo)
	if err != nil {
		return 0, err
	}
	links, err := p.links(g)
	if err != nil {
		return 0, err
	}
	msgs := object.GroupMessages(links)
	msgs = append(msgs, keep...)
	return p.dst.writeHeader(msgs, object.MinGroupChunk)
}

// links copies the group's links, packing the objects they point to.
func (p *packer) links(g *Group) ([]*message.Link, error) {
	var src []*message.Link
	if st := g.header.SymbolTable(); st != nil {
		kids, err := g.children()
		if err != nil {
			return nil, err
		}
		for _, c := range kids {
			if c.hard {
				src = append(src, message.NewHardLink(c.name, c.addr))
			} else {
				return nil, fmt.Errorf("%w: soft link %s in legacy group", ErrUnsupported, JoinPath(g.path, c.name))
			}
		}
	} else {
		if _, err := g.children(); err != nil {
			return nil, err
		}
		src = g.header.Links()
	}

	out := make([]*message.Link, 0, len(src))
	for _, l := range src {
		if !l.IsHard() {
			cp := *l
			out = append(out, &cp)
			continue
		}
		addr, ok := p.done[l.ObjectAddress]
		if !ok {
			obj, err := g.child(l.Name)
			if err != nil {
				return nil, err
			}
			switch o := obj.(type) {
			case *Group:
				addr, err = p.group(o)
			case *Dataset:
				addr, err = p.dataset(o)
			}
			if err != nil {
				return nil, err
			}
			p.done[l.ObjectAddress] = addr
		}
		out = append(out, message.NewHardLink(l.Name, addr))
	}
	return out, nil
}

func (p *packer) dataset(d *Dataset) (uint64, error) {
	dt, storage, err := d.rawStorage()
	if err != nil {
		return 0, err
	}
	if err := copyable(dt, d.path); err != nil {
		return 0, err
	}
	raw, err := d.readRaw(dt, storage)
	if err != nil {
		return 0, err
	}

	var packed *message.DataLayout
	switch {
	case storage.Class == message.LayoutCompact:
		packed = message.NewCompactLayout(raw)
	case d.file.reader.IsUndefinedOffset(storage.Address) || len(raw) == 0:
		packed = message.NewContiguousLayout(binary.Undefined(int(p.dst.superblock.OffsetSize)), uint64(len(raw)))
	default:
		addr, err := p.dst.writeData(raw)
		if err != nil {
			return 0, err
		}
		packed = message.NewContiguousLayout(addr, uint64(len(raw)))
	}

	keep, err := p.preserved(&d.node, message.TypeDataLayout)
	if err != nil {
		return 0, err
	}
	msgs := make([]message.Message, 0, len(keep)+1)
	for _, m := range keep {
		msgs = append(msgs, m)
		if m.Type() == message.TypeDatatype {
			msgs = append(msgs, packed)
		}
	}
	return p.dst.writeHeader(msgs, 0)
}

// preserved returns the messages of n that are copied verbatim, leaving
// out the ones the packer rebuilds.
func (p *packer) preserved(n *node, rebuilt ...message.Type) ([]message.Message, error) {
	if n.header.Shared() {
		return nil, fmt.Errorf("%w: shared messages on %s", ErrUnsupported, n.path)
	}
	attrs, err := n.attributeMessages()
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		if err := copyable(a.Datatype, n.path+"@"+a.Name); err != nil {
			return nil, err
		}
	}
	skip := map[message.Type]bool{
		message.TypeNIL:                      true,
		message.TypeObjectHeaderContinuation: true,
		message.TypeSymbolTable:              true,
		message.TypeAttributeInfo:            true,
	}
	for _, t := range rebuilt {
		skip[t] = true
	}
	var out []message.Message
	for _, m := range n.header.Messages {
		if !skip[m.Type()] {
			out = append(out, m)
		}
	}
	return out, nil
}

// copyable rejects datatypes whose elements point elsewhere in the file.
func copyable(dt *message.Datatype, what string) error {
	switch dt.Class {
	case message.ClassVarLen, message.ClassReference:
		return fmt.Errorf("%w: %s has a variable-length or reference datatype", ErrUnsupported, what)
	}
	return nil
}
