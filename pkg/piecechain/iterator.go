package piecechain

// Iterator is a resumable cursor over a range of a chain's contents,
// yielding one contiguous slice per underlying piece it crosses.
// Mutating the chain while an Iterator obtained from it is still in
// use is undefined behavior; the caller must not interleave the two.
type Iterator struct {
	chain   *Chain
	maxOff  int
	off     int
	current *piece // nil until the first Next call
}

// Iter returns an iterator over [start, start+length) of c's current
// contents, clamped to c.Size().
func (c *Chain) Iter(start, length int) *Iterator {
	end := start + length
	if end > c.size {
		end = c.size
	}
	return &Iterator{chain: c, off: start, maxOff: end}
}

// Clone returns a new Iterator with exactly the same cursor position as
// it, independent of further advances of either.
func (it *Iterator) Clone() *Iterator {
	clone := *it
	return &clone
}

// Next advances the iterator and returns the next contiguous slice, or
// ok=false if the requested range has been fully consumed. The
// returned slice is only valid until the chain is next mutated.
func (it *Iterator) Next() (data []byte, ok bool) {
	if it.off >= it.maxOff {
		return nil, false
	}

	c := it.chain

	if it.current == nil {
		off := 0
		for p := c.sentinel.next; p != &c.sentinel; p = p.next {
			if off+p.size > it.off {
				pieceStart := 0
				if off <= it.off {
					pieceStart = it.off - off
				}
				it.current = p
				data = p.bytes()[pieceStart:]
				if n := it.maxOff - it.off; len(data) > n {
					data = data[:n]
				}
				break
			}
			off += p.size
		}
	} else {
		p := it.current.next
		it.current = p
		data = p.bytes()
		if it.off+len(data) > it.maxOff {
			data = data[:it.maxOff-it.off]
		}
	}

	it.off += len(data)
	return data, true
}
