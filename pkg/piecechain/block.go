package piecechain

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// minBlockBytes is the minimum size of a heap block allocated to back
// an insertion, taken from the 1 MiB MEM_BLOCK_SIZE constant of the
// piece chain this package ports. A heap block is always sized
// max(request, minBlockBytes), so that a long run of small edits shares
// one arena instead of allocating one block per keystroke.
const minBlockBytes = 1024 * 1024

type blockKind int

const (
	blockHeap blockKind = iota
	blockMmap
)

// block is a byte arena. Heap blocks are append-only: used grows
// monotonically except for the transient in-place shift performed by
// the cache fast path (see cache.go), which only ever touches the tail
// piece of the tail heap block. Mmap blocks are immutable and always
// fully used.
type block struct {
	kind blockKind
	buf  []byte // full backing array; buf[:used] is the written region
	used int
}

func newHeapBlock(requested int) *block {
	size := requested
	if size < minBlockBytes {
		size = minBlockBytes
	}
	return &block{kind: blockHeap, buf: make([]byte, size), used: 0}
}

// newMmapBlock maps fd read-only and private for size bytes. The
// caller is responsible for closing fd; the mapping does not need it
// to remain open.
func newMmapBlock(fd int, size int) (*block, error) {
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %w", ErrIO, err)
	}
	return &block{kind: blockMmap, buf: data, used: size}, nil
}

func (b *block) capacity() int { return len(b.buf) }

func (b *block) canFit(n int) bool {
	return b.kind == blockHeap && b.capacity()-b.used >= n
}

// append copies data onto the tail of the block's used region and
// returns the start offset the data now occupies. The caller must have
// already checked canFit.
func (b *block) append(data []byte) int {
	start := b.used
	copy(b.buf[start:], data)
	b.used += len(data)
	return start
}

func (b *block) close() error {
	if b.kind != blockMmap || b.buf == nil {
		return nil
	}
	err := unix.Munmap(b.buf)
	b.buf = nil
	if err != nil {
		return fmt.Errorf("%w: munmap: %w", ErrIO, err)
	}
	return nil
}
