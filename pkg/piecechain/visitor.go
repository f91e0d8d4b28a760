package piecechain

import "fmt"

// VisitFunc is called by Visit with the absolute offset of a
// contiguous run of bytes and the run itself. data is only valid for
// the duration of the call; callers that need to retain it must copy
// it. Returning false stops the walk early.
type VisitFunc func(offset int, data []byte) bool

// Visit streams the [start, start+length) range of the chain's current
// contents to fn, one piece intersection at a time, without
// materializing the whole range. It is the mechanism external
// collaborators (such as Save) use to consume the contents of a chain
// that may be far too large to copy wholesale.
func (c *Chain) Visit(start, length int, fn VisitFunc) error {
	if c.closed {
		return c.fail(ErrClosed)
	}
	if start < 0 || length < 0 {
		return c.fail(fmt.Errorf("%w: visit(%d, %d)", ErrBadOffset, start, length))
	}
	if start >= c.size || length == 0 {
		return nil
	}

	end := start + length
	off := 0
	for p := c.sentinel.next; p != &c.sentinel; p = p.next {
		pieceEnd := off + p.size
		if pieceEnd >= start {
			pieceStart := 0
			if off <= start {
				pieceStart = start - off
			}
			trim := 0
			if pieceEnd >= end {
				trim = pieceEnd - end
			}
			pieceLen := p.size - pieceStart - trim

			if pieceLen > 0 {
				data := p.bytes()[pieceStart : pieceStart+pieceLen]
				if !fn(off+pieceStart, data) {
					return nil
				}
			}
		}
		off = pieceEnd
		if off >= end {
			break
		}
	}

	return nil
}
