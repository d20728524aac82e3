package btree

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	binpkg "github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/heap"
)

// legacyGroup lays out a local heap, one leaf B-tree node and one symbol
// table node holding the given names.
func legacyGroup(names []string) []byte {
	le := binary.LittleEndian
	file := make([]byte, 2048)

	// heap header at 0, data at 64
	heapData := []byte{0}
	offsets := make([]uint64, len(names))
	for i, n := range names {
		offsets[i] = uint64(len(heapData))
		heapData = append(heapData, append([]byte(n), 0)...)
	}
	copy(file, "HEAP")
	le.PutUint64(file[8:], uint64(len(heapData)))
	le.PutUint64(file[16:], ^uint64(0))
	le.PutUint64(file[24:], 64)
	copy(file[64:], heapData)

	// B-tree leaf at 512 with one child at 1024
	node := file[512:]
	copy(node, "TREE")
	le.PutUint16(node[6:], 1)
	le.PutUint64(node[8:], ^uint64(0))
	le.PutUint64(node[16:], ^uint64(0))
	le.PutUint64(node[24:], 0)
	le.PutUint64(node[32:], 1024)
	le.PutUint64(node[40:], offsets[len(offsets)-1])

	snod := file[1024:]
	copy(snod, "SNOD")
	snod[4] = 1
	le.PutUint16(snod[6:], uint16(len(names)))
	for i := range names {
		e := snod[8+40*i:]
		le.PutUint64(e, offsets[i])
		le.PutUint64(e[8:], uint64(4096+i*256))
	}
	return file
}

func TestEntries(t *testing.T) {
	file := legacyGroup([]string{"config", "data", "target"})
	r := binpkg.NewReader(bytes.NewReader(file), binpkg.DefaultConfig())

	names, err := heap.ReadLocal(r, 0)
	require.NoError(t, err)
	require.Equal(t, "data", names.String(8))

	got, err := Entries(r, 512, names)
	require.NoError(t, err)
	want := []Entry{
		{Name: "config", Address: 4096},
		{Name: "data", Address: 4352},
		{Name: "target", Address: 4608},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestEntriesBadSignature(t *testing.T) {
	file := legacyGroup([]string{"a"})
	copy(file[512:], "XXXX")
	r := binpkg.NewReader(bytes.NewReader(file), binpkg.DefaultConfig())
	names, err := heap.ReadLocal(r, 0)
	require.NoError(t, err)
	_, err = Entries(r, 512, names)
	require.ErrorIs(t, err, ErrInvalidNode)
}

func TestReadLocalBadSignature(t *testing.T) {
	r := binpkg.NewReader(bytes.NewReader(make([]byte, 64)), binpkg.DefaultConfig())
	_, err := heap.ReadLocal(r, 0)
	require.ErrorIs(t, err, heap.ErrInvalidHeap)
}
