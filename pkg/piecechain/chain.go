package piecechain

import (
	"errors"
	"fmt"

	"github.com/calvinalkan/piecechain/internal/ilist"
	"github.com/calvinalkan/piecechain/pkg/fsx"
)

// Chain is a piece-chain buffer. The zero value is not usable; create
// one with Open or New.
type Chain struct {
	size    int
	dirty   bool
	lastErr error
	closed  bool

	sentinel piece // circular list head for the active chain; never holds bytes

	blocks *ilist.List[*block]

	revisions       []*revision
	currentRevision int // index into revisions; 0 is the initial sealed revision
	pendingChanges  []*change

	cache *piece

	fs fsx.FS // save collaborator; overridable in tests via WithFS
}

// Option configures a Chain at construction time.
type Option func(*Chain)

// WithFS overrides the filesystem Save uses, for testing.
func WithFS(fs fsx.FS) Option {
	return func(c *Chain) { c.fs = fs }
}

// New creates an empty piece chain with a sealed initial revision,
// equivalent to Open("").
func New(opts ...Option) *Chain {
	c := &Chain{
		blocks:          ilist.New[*block](),
		currentRevision: -1,
		fs:              fsx.NewReal(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sentinel.prev = &c.sentinel
	c.sentinel.next = &c.sentinel

	// An empty chain still seals an initial (empty) revision, so
	// currentRevision is always valid after construction, matching the
	// guarantee in the spec that a fresh chain's current revision is
	// never nil.
	c.revisions = append(c.revisions, &revision{})
	c.currentRevision = 0

	return c
}

func (c *Chain) head() *piece { return &c.sentinel }

// Size returns the total byte length of the chain's current contents.
func (c *Chain) Size() int { return c.size }

// Empty reports whether the chain currently holds zero bytes.
func (c *Chain) Empty() bool { return c.size == 0 }

// Dirty reports whether the chain has been modified since the last
// successful Save (or since creation, if never saved).
func (c *Chain) Dirty() bool { return c.dirty }

// LastError returns the error from the most recent failing operation,
// or nil if no operation has failed yet. A later successful operation
// does not clear it.
func (c *Chain) LastError() error { return c.lastErr }

func (c *Chain) fail(err error) error {
	c.lastErr = err
	return err
}

// pieceFind locates the piece containing absolute offset abs and abs's
// offset local to that piece. It returns ok=false both for an
// out-of-range offset and for the one-past-end sentinel offset
// (abs == c.size); callers that need end-of-chain behavior (insertion
// at the very end) special-case it themselves, mirroring piece_find in
// the piece chain this type ports.
func (c *Chain) pieceFind(abs int) (p *piece, local int, ok bool) {
	if abs < 0 || abs > c.size {
		return nil, 0, false
	}

	pos := 0
	for p := c.sentinel.next; p != &c.sentinel; p = p.next {
		if abs < pos+p.size {
			return p, abs - pos, true
		}
		pos += p.size
	}
	return nil, 0, false
}

// destinationBlock returns a block with room for n more bytes,
// appending to the tail heap block if it fits, else allocating a new
// heap block sized max(n, minBlockBytes).
func (c *Chain) destinationBlock(n int) *block {
	if last := c.blocks.Last(); last != nil && last.Value.canFit(n) {
		return last.Value
	}
	b := newHeapBlock(n)
	c.blocks.PushBack(b)
	return b
}

// purgeRedoHistory discards every revision after the current one,
// together with the pieces only reachable through their replacement
// spans. In the original C implementation those pieces are explicitly
// freed; here they simply become unreachable (and hence collectible)
// once the discarded revisions are dropped from c.revisions, since the
// active chain and every retained revision's original spans never
// pointed at them. See DESIGN.md for the Open Question this resolves.
func (c *Chain) purgeRedoHistory() {
	if c.currentRevision == len(c.revisions)-1 {
		return
	}
	c.revisions = c.revisions[:c.currentRevision+1]
}

// Insert inserts data at offset, shifting nothing: the bulk of the
// chain is never copied, only the inserted bytes are. An empty data
// slice is a no-op. offset must be in [0, Size()].
func (c *Chain) Insert(offset int, data []byte) error {
	if c.closed {
		return c.fail(ErrClosed)
	}
	if len(data) == 0 {
		return nil
	}
	if offset < 0 || offset > c.size {
		return c.fail(fmt.Errorf("%w: insert at %d, size %d", ErrBadOffset, offset, c.size))
	}

	p, local, found := c.pieceFind(offset)
	if !found {
		switch {
		case c.sentinel.next == &c.sentinel:
			p, local = nil, 0
		case offset == c.size:
			p = c.sentinel.prev
			local = p.size
		default:
			return c.fail(fmt.Errorf("%w: insert at %d, size %d", ErrBadOffset, offset, c.size))
		}
	}

	c.purgeRedoHistory()

	if p != nil {
		if c.tryCacheInsert(p, local, data) {
			c.dirty = true
			return nil
		}
		if local == 0 && p != c.sentinel.next {
			prev := p.prev
			if c.tryCacheInsert(prev, prev.size, data) {
				c.dirty = true
				return nil
			}
		}
	}

	blk := c.destinationBlock(len(data))
	start := blk.append(data)

	ch := &change{position: offset}
	var cacheTail *piece

	switch {
	case p == nil:
		np := &piece{blk: blk, start: start, size: len(data)}
		np.prev, np.next = &c.sentinel, &c.sentinel
		ch.original = emptySpan()
		ch.replacement = newSpan(np, np)
		cacheTail = np

	case local == 0 || local == p.size:
		np := &piece{blk: blk, start: start, size: len(data)}
		if local == 0 {
			np.prev, np.next = p.prev, p
		} else {
			np.prev, np.next = p, p.next
		}
		ch.original = emptySpan()
		ch.replacement = newSpan(np, np)
		cacheTail = np

	default:
		before := &piece{blk: p.blk, start: p.start, size: local}
		middle := &piece{blk: blk, start: start, size: len(data)}
		after := &piece{blk: p.blk, start: p.start + local, size: p.size - local}

		before.prev, before.next = p.prev, middle
		middle.prev, middle.next = before, after
		after.prev, after.next = middle, p.next

		ch.original = newSpan(p, p)
		ch.replacement = newSpan(before, after)
		cacheTail = middle
	}

	c.cache = cacheTail
	c.size += spanSwap(ch.original, ch.replacement)
	c.pendingChanges = append(c.pendingChanges, ch)
	c.dirty = true

	return nil
}

// Delete removes length bytes starting at offset. The range is clamped
// to Size() if it would overflow. An empty range is a no-op.
func (c *Chain) Delete(offset, length int) error {
	if c.closed {
		return c.fail(ErrClosed)
	}
	if length == 0 {
		return nil
	}
	if offset < 0 || offset > c.size {
		return c.fail(fmt.Errorf("%w: delete at %d, size %d", ErrBadOffset, offset, c.size))
	}

	startPiece, startLocal, ok := c.pieceFind(offset)
	if !ok {
		// offset == Size(): the clamped range is empty.
		return nil
	}

	endPiece, endLocal, ok := c.pieceFind(offset + length)
	if !ok {
		endPiece = c.sentinel.prev
		endLocal = endPiece.size
	}

	c.purgeRedoHistory()

	if c.tryCacheDelete(startPiece, startLocal, length) {
		c.dirty = true
		return nil
	}

	splitStart := startLocal != 0
	splitEnd := endLocal != endPiece.size

	before := startPiece.prev
	after := endPiece.next

	var newStart, newEnd *piece

	if splitStart {
		newStart = &piece{blk: startPiece.blk, start: startPiece.start, size: startLocal, prev: before, next: after}
	}
	if splitEnd {
		newEnd = &piece{blk: endPiece.blk, start: endPiece.start + endLocal, size: endPiece.size - endLocal, prev: before, next: after}
		if splitStart {
			newEnd.prev = newStart
			newStart.next = newEnd
		}
	}

	switch {
	case newStart == nil && newEnd != nil:
		newStart = newEnd
	case newStart != nil && newEnd == nil:
		newEnd = newStart
	}

	ch := &change{
		position:    offset,
		original:    newSpan(startPiece, endPiece),
		replacement: newSpan(newStart, newEnd),
	}
	c.size += spanSwap(ch.original, ch.replacement)
	c.pendingChanges = append(c.pendingChanges, ch)
	c.dirty = true

	return nil
}

// Replace is delete(offset, len(data)) immediately followed by
// insert(offset, data); the two splices land in the same uncommitted
// revision and undo/redo together as one unit once committed.
func (c *Chain) Replace(offset int, data []byte) error {
	if err := c.Delete(offset, len(data)); err != nil {
		return err
	}
	return c.Insert(offset, data)
}

// Commit seals any pending changes into a new revision and invalidates
// the cache. It is a no-op (but still invalidates the cache) when no
// changes are pending.
func (c *Chain) Commit() error {
	if c.closed {
		return c.fail(ErrClosed)
	}
	if len(c.pendingChanges) > 0 {
		c.revisions = append(c.revisions, &revision{changes: c.pendingChanges})
		c.currentRevision = len(c.revisions) - 1
		c.pendingChanges = nil
	}
	c.invalidateCache()
	return nil
}

// Undo reverts the current revision's changes in reverse order and
// steps the current revision back by one. It first commits any
// pending changes. It returns ok=false (with pos undefined) if there is
// nothing to undo.
func (c *Chain) Undo() (pos int, ok bool, err error) {
	if c.closed {
		return 0, false, c.fail(ErrClosed)
	}
	if err := c.Commit(); err != nil {
		return 0, false, err
	}
	if c.currentRevision == 0 {
		return 0, false, nil
	}

	rev := c.revisions[c.currentRevision]
	for i := len(rev.changes) - 1; i >= 0; i-- {
		ch := rev.changes[i]
		c.size += spanSwap(ch.replacement, ch.original)
		pos = ch.position
	}
	c.currentRevision--

	return pos, true, nil
}

// Redo reapplies the revision after the current one in forward order
// and steps the current revision forward by one. It first commits any
// pending changes. It returns ok=false (with pos undefined) if there is
// nothing to redo.
func (c *Chain) Redo() (pos int, ok bool, err error) {
	if c.closed {
		return 0, false, c.fail(ErrClosed)
	}
	if err := c.Commit(); err != nil {
		return 0, false, err
	}
	if c.currentRevision == len(c.revisions)-1 {
		return 0, false, nil
	}

	rev := c.revisions[c.currentRevision+1]
	for _, ch := range rev.changes {
		c.size += spanSwap(ch.original, ch.replacement)
		pos = ch.position
	}
	c.currentRevision++

	return pos, true, nil
}

// ReadByte returns the byte at offset.
func (c *Chain) ReadByte(offset int) (byte, error) {
	if c.closed {
		return 0, c.fail(ErrClosed)
	}
	p, local, ok := c.pieceFind(offset)
	if !ok {
		return 0, c.fail(fmt.Errorf("%w: read at %d, size %d", ErrBadOffset, offset, c.size))
	}
	return p.bytes()[local], nil
}

// Close releases every block the chain owns, unmapping any
// memory-mapped file blocks. After Close, every method on c that
// returns an error (Insert, Delete, Replace, Commit, Undo, Redo,
// ReadByte, Visit, Save) returns ErrClosed. Close is idempotent.
func (c *Chain) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for e := c.blocks.First(); e != nil; e = e.Next() {
		if err := e.Value.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
