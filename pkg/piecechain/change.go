package piecechain

// change records one atomic splice: the span of pieces removed from
// the active chain (original, possibly empty for a pure insertion) and
// the span of pieces that replaced it (replacement, possibly empty for
// a pure deletion), plus the absolute byte offset the edit applied at.
type change struct {
	position    int
	original    span
	replacement span
}

// revision is an ordered group of changes that were applied between
// two calls to Commit; it is the unit of undo and redo.
type revision struct {
	changes []*change
}
