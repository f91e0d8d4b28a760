package piecechain

import "errors"

// Error classification sentinels. Implementations wrap these with
// additional context via fmt.Errorf("...: %w", ...); callers classify
// with errors.Is.
var (
	// ErrIO indicates a failure opening, reading, mapping or writing a
	// file during Open or Save.
	ErrIO = errors.New("piecechain: io error")

	// ErrUnsupportedTarget indicates Open or Save was asked to operate
	// on something that isn't a regular file or block device (Open), or
	// that save mode ATOMIC refuses to replace (Save: non-regular file,
	// or a file with more than one hard link).
	ErrUnsupportedTarget = errors.New("piecechain: unsupported target")

	// ErrBadOffset indicates an offset or length argument fell outside
	// the valid range for the current contents of the chain.
	ErrBadOffset = errors.New("piecechain: offset out of range")

	// ErrClosed indicates an operation was attempted on a Chain that has
	// already been closed.
	ErrClosed = errors.New("piecechain: chain is closed")
)
