package piecechain

// span is an endpoint-inclusive interval of the piece chain plus its
// total byte length. emptySpan has a nil start and end. spanSwap decides
// on length alone, so a span whose only piece the cache fast path has
// shrunk to zero size (see tryCacheDelete) is also treated as empty,
// even though its start and end are still set.
type span struct {
	start, end *piece
	length     int
}

func emptySpan() span { return span{} }

// newSpan builds the span covering [start, end] inclusive by walking
// the chain links between them, matching span_init in the piece chain
// this type ports: the caller is responsible for start/end already
// being correctly linked into the (possibly not-yet-active) sequence
// whose length is being measured.
func newSpan(start, end *piece) span {
	if start == nil && end == nil {
		return emptySpan()
	}

	length := 0
	for p := start; ; p = p.next {
		length += p.size
		if p == end {
			break
		}
	}
	return span{start: start, end: end, length: length}
}

// spanSwap performs the pointer surgery that splices replacement into
// the active chain in place of original, or vice versa when called
// with the arguments reversed (as undo/redo do). It relies on the
// invariant that original.start.prev == replacement.start.prev and
// original.end.next == replacement.end.next: the two spans share the
// same "hinge" neighbors, set up once when replacement was created.
// It returns the signed change in total chain size.
func spanSwap(original, replacement span) int {
	switch {
	case original.length == 0 && replacement.length == 0:
		// nothing to do
	case original.length == 0:
		// pure insertion
		replacement.start.prev.next = replacement.start
		replacement.end.next.prev = replacement.end
	case replacement.length == 0:
		// pure deletion
		original.start.prev.next = original.end.next
		original.end.next.prev = original.start.prev
	default:
		original.start.prev.next = replacement.start
		original.end.next.prev = replacement.end
	}
	return replacement.length - original.length
}
