package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/btree"
	"github.com/robert-malhotra/go-rfml/internal/dtype"
	"github.com/robert-malhotra/go-rfml/internal/heap"
	"github.com/robert-malhotra/go-rfml/internal/layout"
	"github.com/robert-malhotra/go-rfml/internal/message"
	"github.com/robert-malhotra/go-rfml/internal/object"
)

// Group is an HDF5 group.
type Group struct {
	node
}

// child is one named member of a group.
type child struct {
	name string
	addr uint64
	hard bool
}

func (g *Group) children() ([]child, error) {
	if st := g.header.SymbolTable(); st != nil {
		names, err := heap.ReadLocal(g.file.reader, st.LocalHeapAddress)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.path, err)
		}
		entries, err := btree.Entries(g.file.reader, st.BTreeAddress, names)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.path, err)
		}
		out := make([]child, len(entries))
		for i, e := range entries {
			out[i] = child{name: e.Name, addr: e.Address, hard: e.SoftTarget == ""}
		}
		return out, nil
	}
	if li := g.header.LinkInfo(); li != nil && li.Dense(g.file.reader) {
		return nil, fmt.Errorf("%w: dense link storage in %s", ErrUnsupported, g.path)
	}
	links := g.header.Links()
	out := make([]child, len(links))
	for i, l := range links {
		out[i] = child{name: l.Name, addr: l.ObjectAddress, hard: l.IsHard()}
	}
	return out, nil
}

// Members returns the names of the group's links in storage order.
func (g *Group) Members() ([]string, error) {
	kids, err := g.children()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(kids))
	for i, c := range kids {
		names[i] = c.name
	}
	return names, nil
}

// Has reports whether the group has a link called name.
func (g *Group) Has(name string) bool {
	_, err := g.lookup(name)
	return err == nil
}

func (g *Group) lookup(name string) (child, error) {
	kids, err := g.children()
	if err != nil {
		return child{}, err
	}
	for _, c := range kids {
		if c.name == name {
			return c, nil
		}
	}
	return child{}, fmt.Errorf("%s: %w", JoinPath(g.path, name), ErrNotFound)
}

// OpenGroup opens a group by path relative to g.
func (g *Group) OpenGroup(rel string) (*Group, error) {
	obj, err := g.open(rel)
	if err != nil {
		return nil, err
	}
	grp, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("%s: %w", obj.Path(), ErrNotGroup)
	}
	return grp, nil
}

// OpenDataset opens a dataset by path relative to g.
func (g *Group) OpenDataset(rel string) (*Dataset, error) {
	obj, err := g.open(rel)
	if err != nil {
		return nil, err
	}
	ds, ok := obj.(*Dataset)
	if !ok {
		return nil, fmt.Errorf("%s: %w", obj.Path(), ErrNotDataset)
	}
	return ds, nil
}

func (g *Group) open(rel string) (Object, error) {
	parts := SplitPath(rel)
	if len(parts) == 0 {
		return g, nil
	}
	current := g
	for i, name := range parts {
		obj, err := current.child(name)
		if err != nil {
			return nil, err
		}
		if i == len(parts)-1 {
			return obj, nil
		}
		next, ok := obj.(*Group)
		if !ok {
			return nil, fmt.Errorf("%s: %w", obj.Path(), ErrNotGroup)
		}
		current = next
	}
	return current, nil
}

// child opens the direct member called name, reusing a live handle.
func (g *Group) child(name string) (Object, error) {
	p := JoinPath(g.path, name)
	if grp, ok := g.file.groups[p]; ok {
		return grp, nil
	}
	if ds, ok := g.file.datasets[p]; ok {
		return ds, nil
	}
	c, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	if !c.hard {
		return nil, fmt.Errorf("%w: %s is not a hard link", ErrUnsupported, p)
	}
	h, err := object.Read(g.file.reader, c.addr)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	n := node{file: g.file, path: p, addr: c.addr, header: h, parent: g}
	if h.Has(message.TypeDataLayout) {
		ds := &Dataset{node: n}
		g.file.datasets[p] = ds
		return ds, nil
	}
	n.chunk = object.MinGroupChunk
	grp := &Group{node: n}
	g.file.groups[p] = grp
	return grp, nil
}

// CreateGroup adds an empty subgroup.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.canLink(name); err != nil {
		return nil, err
	}
	addr, err := g.file.writeHeader(object.GroupMessages(nil), object.MinGroupChunk)
	if err != nil {
		return nil, err
	}
	if err := g.addLink(name, addr); err != nil {
		return nil, err
	}
	obj, err := g.child(name)
	if err != nil {
		return nil, err
	}
	return obj.(*Group), nil
}

// CreateDataset adds a contiguous dataset of the given shape holding values
// converted to t. len(values) must equal the product of shape.
func (g *Group) CreateDataset(name string, t Type, shape []int, values any) (*Dataset, error) {
	if err := g.canLink(name); err != nil {
		return nil, err
	}
	dt, err := t.datatype()
	if err != nil {
		return nil, err
	}
	dims, count, err := dimensions(shape)
	if err != nil {
		return nil, err
	}
	n, err := dtype.Len(values)
	if err != nil {
		return nil, err
	}
	if uint64(n) != count {
		return nil, fmt.Errorf("dataset %q: %d values for shape %v: %w", name, n, shape, ErrShape)
	}
	raw, err := dtype.Encode(dt, values)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}

	dataAddr := binary.Undefined(int(g.file.superblock.OffsetSize))
	if len(raw) > 0 {
		if dataAddr, err = g.file.writeData(raw); err != nil {
			return nil, err
		}
	}
	layout := message.NewContiguousLayout(dataAddr, uint64(len(raw)))
	addr, err := g.file.writeHeader(object.DatasetMessages(message.NewDataspace(dims), dt, layout), 0)
	if err != nil {
		return nil, err
	}
	if err := g.addLink(name, addr); err != nil {
		return nil, err
	}
	obj, err := g.child(name)
	if err != nil {
		return nil, err
	}
	return obj.(*Dataset), nil
}

func dimensions(shape []int) ([]uint64, uint64, error) {
	dims := make([]uint64, len(shape))
	count := uint64(1)
	for i, d := range shape {
		if d < 0 {
			return nil, 0, fmt.Errorf("negative extent in shape %v: %w", shape, ErrShape)
		}
		dims[i] = uint64(d)
		count *= uint64(d)
	}
	return dims, count, nil
}

func (g *Group) canLink(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := g.file.checkWritable(); err != nil {
		return err
	}
	if g.header.SymbolTable() != nil {
		return fmt.Errorf("%s: %w", g.path, ErrLegacyLayout)
	}
	if g.Has(name) {
		return fmt.Errorf("%s: %w", JoinPath(g.path, name), ErrExists)
	}
	return nil
}

func (g *Group) addLink(name string, addr uint64) error {
	msgs := append(append([]message.Message(nil), g.header.Messages...), message.NewHardLink(name, addr))
	return g.rewrite(msgs)
}

// relink points the link called name at addr.
func (g *Group) relink(name string, addr uint64) error {
	msgs := make([]message.Message, len(g.header.Messages))
	for i, m := range g.header.Messages {
		if l, ok := m.(*message.Link); ok && l.Name == name {
			moved := *l
			moved.ObjectAddress = addr
			m = &moved
		}
		msgs[i] = m
	}
	return g.rewrite(msgs)
}

// Unlink removes the link called name. The object it pointed to becomes
// dead space.
func (g *Group) Unlink(name string) error {
	if err := g.file.checkWritable(); err != nil {
		return err
	}
	c, err := g.lookup(name)
	if err != nil {
		return err
	}
	msgs := make([]message.Message, 0, len(g.header.Messages))
	for _, m := range g.header.Messages {
		if l, ok := m.(*message.Link); ok && l.Name == name {
			continue
		}
		msgs = append(msgs, m)
	}
	if err := g.rewrite(msgs); err != nil {
		return err
	}
	if c.hard {
		g.file.freeObject(c.addr)
	}
	g.file.forget(JoinPath(g.path, name))
	return nil
}

// freeObject accounts the header and contiguous data of an unlinked object
// as dead.
func (f *File) freeObject(addr uint64) {
	h, err := object.Read(f.reader, addr)
	if err != nil {
		return
	}
	f.allocator.Free(h.Address, h.Span)
	if l := h.Layout(); l != nil {
		if addr, size, ok := layout.Extent(f.reader, l); ok {
			f.allocator.Free(addr, size)
		}
	}
}
