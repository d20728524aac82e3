// Package btree walks version 1 group B-trees, the name index of legacy
// symbol table groups.
package btree

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/heap"
)

var ErrInvalidNode = errors.New("invalid group B-tree node")

var (
	treeSignature = []byte("TREE")
	snodSignature = []byte("SNOD")
)

// maxDepth bounds recursion through corrupt trees.
const maxDepth = 64

// Entry is one symbol table entry.
type Entry struct {
	Name    string
	Address uint64
	// SoftTarget is set for soft links (cache type 2).
	SoftTarget string
}

// Entries returns every entry reachable from the B-tree at address, in key
// order.
func Entries(r *binary.Reader, address uint64, names *heap.Local) ([]Entry, error) {
	return readNode(r, address, names, 0)
}

/*
Node layout:
  "TREE" type(1)=0 level(1) entries used(2) left sibling(O) right sibling(O)
  key0(L) child0(O) key1(L) ... child(n-1)(O) key(n)(L)
Leaf children are symbol table nodes; internal children are B-tree nodes.
*/
func readNode(r *binary.Reader, address uint64, names *heap.Local, depth int) ([]Entry, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: tree deeper than %d", ErrInvalidNode, maxDepth)
	}
	nr := r.At(int64(address))
	sig, err := nr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("read B-tree node: %w", err)
	}
	if !bytes.Equal(sig, treeSignature) {
		return nil, fmt.Errorf("%w: signature %q at %d", ErrInvalidNode, sig, address)
	}
	head, err := nr.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	if head[0] != 0 {
		return nil, fmt.Errorf("%w: node type %d is not a group node", ErrInvalidNode, head[0])
	}
	level := head[1]
	used := int(head[2]) | int(head[3])<<8
	nr.Skip(int64(2 * nr.OffsetSize()))

	var out []Entry
	for i := 0; i < used; i++ {
		if _, err := nr.ReadLength(); err != nil {
			return nil, err
		}
		child, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		var entries []Entry
		if level == 0 {
			entries, err = readSymbolNode(r, child, names)
		} else {
			entries, err = readNode(r, child, names, depth+1)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

/*
Symbol table node:
  "SNOD" version(1)=1 reserved(1) symbol count(2) entries...
Entry: name offset(O) header address(O) cache type(4) reserved(4) scratch(16)
*/
func readSymbolNode(r *binary.Reader, address uint64, names *heap.Local) ([]Entry, error) {
	nr := r.At(int64(address))
	head, err := nr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("read symbol table node: %w", err)
	}
	if !bytes.Equal(head[:4], snodSignature) || head[4] != 1 {
		return nil, fmt.Errorf("%w: bad symbol table node at %d", ErrInvalidNode, address)
	}
	count := int(head[6]) | int(head[7])<<8

	out := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		nameOff, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		addr, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		cache, err := nr.ReadUint32()
		if err != nil {
			return nil, err
		}
		nr.Skip(4)
		scratch, err := nr.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		e := Entry{Name: names.String(nameOff), Address: addr}
		if e.Name == "" {
			continue
		}
		if cache == 2 {
			e.Address = 0
			e.SoftTarget = names.String(binary.DecodeUint(scratch, 4, nr.ByteOrder()))
		}
		out = append(out, e)
	}
	return out, nil
}
