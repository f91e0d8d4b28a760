// Package fsx provides the filesystem abstraction and atomic/in-place
// write strategies backing [piecechain.Chain.Save].
//
// The main types are:
//   - [FS]: interface for the small set of filesystem operations Save needs
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//   - [Writer]: implements the ATOMIC/INPLACE/AUTO save strategies
package fsx

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// This interface is satisfied by [os.File] and can be used with all
// standard library functions that accept [io.Writer] or [io.Closer].
//
// Implementations must be safe for concurrent use by multiple goroutines.
type File interface {
	io.WriteCloser

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Chmod changes the mode of the file. See [os.File.Chmod].
	Chmod(mode os.FileMode) error

	// Chown changes the owner and group of the file. See [os.File.Chown].
	Chown(uid, gid int) error
}

// FS defines the filesystem operations the save strategies need.
//
// All methods mirror their [os] package equivalents but can be swapped
// out in tests. Paths use OS semantics, not the slash-separated paths
// used by the standard library io/fs package.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// Lstat returns file info without following a trailing symlink. See [os.Lstat].
	Lstat(path string) (os.FileInfo, error)

	// Open opens a directory (or file) for reading, used to fsync a directory. See [os.Open].
	Open(path string) (File, error)

	// Remove deletes a file. See [os.Remove].
	Remove(path string) error

	// Rename moves/renames a file. See [os.Rename]. Atomic on the same filesystem.
	Rename(oldpath, newpath string) error
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
