package piecechain

// tryCacheInsert attempts the cache fast path for an insertion of data
// at local offset within p. It returns true if the edit was fully
// handled in place, in which case the caller must not allocate a new
// piece or Change.
//
// Preconditions mirrored from the spec: p must be the chain's cache
// tail, that tail must back onto the tail heap block, and the block
// must have room for len(data) more bytes.
func (c *Chain) tryCacheInsert(p *piece, local int, data []byte) bool {
	if c.cache == nil || c.cache != p || !p.endsAtBlockTail() {
		return false
	}

	blk := p.blk
	n := len(data)
	if !blk.canFit(n) {
		return false
	}

	// Bytes of p after the insertion point must shift right by n to
	// make room; they live at [insertAt, insertAt+tailLen) today.
	tailLen := p.size - local
	insertAt := blk.used - tailLen

	if insertAt == blk.used {
		blk.append(data)
	} else {
		copy(blk.buf[insertAt+n:insertAt+n+tailLen], blk.buf[insertAt:insertAt+tailLen])
		copy(blk.buf[insertAt:insertAt+n], data)
		blk.used += n
	}

	p.size += n
	c.size += n

	last := c.pendingChanges[len(c.pendingChanges)-1]
	last.replacement.length += n

	return true
}

// tryCacheDelete attempts the cache fast path for deleting length bytes
// starting at local offset within p. It returns true if the deletion
// range lies wholly within the cached tail piece and was handled in
// place.
func (c *Chain) tryCacheDelete(p *piece, local int, length int) bool {
	if c.cache == nil || c.cache != p || !p.endsAtBlockTail() {
		return false
	}

	if p.size-local < length {
		return false
	}

	blk := p.blk
	tailLen := p.size - local - length
	delAt := blk.used - length - tailLen

	if tailLen > 0 {
		copy(blk.buf[delAt:delAt+tailLen], blk.buf[delAt+length:delAt+length+tailLen])
	}
	blk.used -= length

	p.size -= length
	c.size -= length

	last := c.pendingChanges[len(c.pendingChanges)-1]
	last.replacement.length -= length

	return true
}

// invalidateCache clears the last-piece cache. Called by commit, and
// therefore indirectly by undo/redo.
func (c *Chain) invalidateCache() {
	c.cache = nil
}
