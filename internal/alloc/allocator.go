package alloc

import (
	"sort"
	"sync"
)

// Block is a span of file space.
type Block struct {
	Addr uint64
	Size uint64
}

// Stats summarises allocator activity since the file was opened.
type Stats struct {
	Allocations uint64
	BytesAlloc  uint64
	BytesFreed  uint64
}

// Allocator is an append-only space manager. It is safe for concurrent use.
type Allocator struct {
	mu    sync.Mutex
	eof   uint64
	freed []Block
	stats Stats
}

// New returns an allocator whose first allocation lands at eof.
func New(eof uint64) *Allocator {
	return &Allocator{eof: eof}
}

// Alloc reserves size bytes at the end of the file.
func (a *Allocator) Alloc(size uint64) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocLocked(size)
}

// AllocAligned reserves size bytes at the next multiple of alignment.
func (a *Allocator) AllocAligned(size, alignment uint64) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if alignment > 1 {
		if rem := a.eof % alignment; rem != 0 {
			a.eof += alignment - rem
		}
	}
	return a.allocLocked(size)
}

func (a *Allocator) allocLocked(size uint64) uint64 {
	addr := a.eof
	a.eof += size
	if size > 0 {
		a.stats.Allocations++
		a.stats.BytesAlloc += size
	}
	return addr
}

// Free records a block that is no longer referenced.
func (a *Allocator) Free(addr, size uint64) {
	if size == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freed = append(a.freed, Block{Addr: addr, Size: size})
	a.stats.BytesFreed += size
}

// Dead returns the number of distinct bytes freed. Overlapping frees are
// counted once.
func (a *Allocator) Dead() uint64 {
	a.mu.Lock()
	blocks := append([]Block(nil), a.freed...)
	a.mu.Unlock()

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Addr < blocks[j].Addr })
	var total, end uint64
	for _, b := range blocks {
		start := b.Addr
		if start < end {
			start = end
		}
		if stop := b.Addr + b.Size; stop > start {
			total += stop - start
			end = stop
		}
	}
	return total
}

// EOF returns the current end of file.
func (a *Allocator) EOF() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// Stats returns a snapshot of the counters.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
