// Package piecechain implements a piece-chain buffer: an in-memory
// representation of the contents of a file (or of an arbitrary byte
// sequence) that supports insertion, deletion and replacement at
// arbitrary byte offsets without copying the bulk of the buffer, plus
// grouped, unlimited undo/redo.
//
// A Chain is built from three cooperating pieces: a set of byte
// arenas ("blocks", some memory-mapped from a file, some heap-backed
// and append-only), an ordered sequence of immutable byte-range
// descriptors ("pieces") that concatenate into the current contents,
// and a linear log of revisions that group the changes applied
// between two calls to Commit so they undo and redo as one unit.
//
// A Chain is not safe for concurrent use by multiple goroutines: every
// exported method assumes exclusive access, the same way a single text
// editor buffer assumes a single caller. Mutating a Chain while an
// Iterator obtained from it is still in use is undefined behavior; the
// caller must not interleave the two.
package piecechain
