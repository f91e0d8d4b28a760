package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"

	natefinch "github.com/natefinch/atomic"
)

// ErrDirSync indicates the parent directory could not be synced after
// rename. When returned, the new file is in place but durability is
// not guaranteed. Callers can detect this with
// errors.Is(err, ErrDirSync).
var ErrDirSync = errors.New("fsx: dir sync")

// ErrUnsafeTarget indicates an ATOMIC save refused to touch an existing
// target because it is not a plain regular file or has more than one
// hard link — overwriting it via rename could silently break whatever
// else is linked to it.
var ErrUnsafeTarget = errors.New("fsx: unsafe atomic-write target")

// Writer performs the three save strategies piecechain.Chain.Save
// exposes: atomic rename, in-place rewrite, and an auto mode that
// prefers atomic and falls back to in-place.
type Writer struct {
	fs FS
}

// NewWriter creates a Writer that uses the given filesystem. Panics if
// fs is nil.
func NewWriter(fs FS) *Writer {
	if fs == nil {
		panic("fs is nil")
	}

	return &Writer{fs: fs}
}

// Options configures a save call.
type Options struct {
	// Perm is the permission new files are created with. Must be
	// non-zero; existing files keep their own mode. WriteAtomic does not
	// apply it to a target that does not exist yet (see WriteAtomic).
	Perm os.FileMode

	// SyncDir controls whether the parent directory is synced after an
	// atomic rename that replaces an existing file. Default: true.
	// WriteAtomic does not sync the directory for a target that does not
	// exist yet (see WriteAtomic).
	SyncDir bool
}

// DefaultOptions returns the default save options.
func (*Writer) DefaultOptions() Options {
	return Options{Perm: 0o644, SyncDir: true}
}

// WriteAtomic writes the bytes writeTo streams to an io.Writer into a
// temp file in path's directory, then renames the temp file over path.
//
// If path already exists, it must be a regular file with exactly one
// hard link or the write is refused with ErrUnsafeTarget — renaming
// over a hard-linked or non-regular file would silently corrupt
// whatever else references it. When the target pre-exists, its
// permission bits are set on the temp file, and its owner and group are
// copied onto it (best effort), before the rename, mirroring fchown in
// the C original this strategy is ported from. When the target does not
// yet exist, the write is delegated to github.com/natefinch/atomic,
// which implements the same temp+rename strategy; opts is not passed to
// it, so neither opts.Perm nor opts.SyncDir applies in that case.
func (w *Writer) WriteAtomic(path string, opts Options, writeTo func(io.Writer) error) error {
	if path == "" {
		return errors.New("fsx: path is empty")
	}
	if opts.Perm == 0 {
		return errors.New("fsx: opts.Perm must be non-zero")
	}

	existing, err := w.fs.Lstat(path)
	switch {
	case err == nil:
		if err := checkSafeOverwriteTarget(existing); err != nil {
			return err
		}
		return w.writeAtomicReplacing(path, existing, opts, writeTo)

	case os.IsNotExist(err):
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(writeTo(pw))
		}()
		if err := natefinch.WriteFile(path, pr); err != nil {
			return fmt.Errorf("%w: atomic write %q: %w", ErrIOFailed, path, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: lstat %q: %w", ErrIOFailed, path, err)
	}
}

func checkSafeOverwriteTarget(info os.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q is not a regular file", ErrUnsafeTarget, info.Name())
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if ok && stat.Nlink > 1 {
		return fmt.Errorf("%w: %q has %d hard links", ErrUnsafeTarget, info.Name(), stat.Nlink)
	}

	return nil
}

func (w *Writer) writeAtomicReplacing(path string, existing os.FileInfo, opts Options, writeTo func(io.Writer) error) error {
	dir, base := filepath.Split(path)
	if base == "" {
		return fmt.Errorf("fsx: path is invalid: %q", path)
	}
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)

	tmpFile, tmpPath, err := createTempFile(w.fs, dir, base, opts.Perm)
	if err != nil {
		return err
	}

	cleanup := func() error {
		return errors.Join(closeNamed(tmpPath, tmpFile), removeIfExists(w.fs, tmpPath))
	}

	if err := tmpFile.Chmod(existing.Mode().Perm()); err != nil {
		return errors.Join(fmt.Errorf("%w: chmod temp file %q: %w", ErrIOFailed, tmpPath, err), cleanup())
	}

	if err := writeTo(tmpFile); err != nil {
		return errors.Join(fmt.Errorf("%w: write temp file %q: %w", ErrIOFailed, tmpPath, err), cleanup())
	}

	if err := tmpFile.Sync(); err != nil {
		return errors.Join(fmt.Errorf("%w: sync temp file %q: %w", ErrIOFailed, tmpPath, err), cleanup())
	}

	chownOwnerGroup(tmpFile, existing)

	if err := w.fs.Rename(tmpPath, path); err != nil {
		return errors.Join(fmt.Errorf("%w: rename %q: %w", ErrIOFailed, tmpPath, err), cleanup())
	}

	cleanupErr := cleanup()

	if opts.SyncDir {
		if err := fsyncDir(w.fs, dir); err != nil {
			return errors.Join(err, cleanupErr)
		}
	}

	return nil
}

// chownOwnerGroup copies the owner/group of existing onto f. Best
// effort: a chown failure (e.g. not running as root) does not fail the
// save, matching the original implementation's tolerant fchown.
func chownOwnerGroup(f File, existing os.FileInfo) {
	stat, ok := existing.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	_ = f.Chown(int(stat.Uid), int(stat.Gid))
}

// WriteInplace truncates (or creates) path and streams writeTo's bytes
// directly into it, syncing before close. Unlike WriteAtomic, a crash
// midway can leave path partially written — ported from the original's
// piece_chain_save_inplace, which accepts that tradeoff in exchange for
// not needing free space for a second copy of the file.
func (w *Writer) WriteInplace(path string, opts Options, writeTo func(io.Writer) error) error {
	if path == "" {
		return errors.New("fsx: path is empty")
	}
	if opts.Perm == 0 {
		return errors.New("fsx: opts.Perm must be non-zero")
	}

	f, err := w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, opts.Perm)
	if err != nil {
		return fmt.Errorf("%w: open %q: %w", ErrIOFailed, path, err)
	}

	if err := writeTo(f); err != nil {
		return errors.Join(fmt.Errorf("%w: write %q: %w", ErrIOFailed, path, err), closeNamed(path, f))
	}

	if err := f.Sync(); err != nil {
		return errors.Join(fmt.Errorf("%w: sync %q: %w", ErrIOFailed, path, err), closeNamed(path, f))
	}

	return closeNamed(path, f)
}

// WriteAuto tries WriteAtomic first; if that fails for any reason, it
// falls back to WriteInplace, matching the original's SAVE_MODE_AUTO.
func (w *Writer) WriteAuto(path string, opts Options, writeTo func(io.Writer) error) error {
	if err := w.WriteAtomic(path, opts, writeTo); err == nil {
		return nil
	}
	return w.WriteInplace(path, opts, writeTo)
}

const maxTempFileAttempts = 10000

var tempFileCounter atomic.Uint64

func createTempFile(fs FS, dir, base string, perm os.FileMode) (File, string, error) {
	for range maxTempFileAttempts {
		seq := tempFileCounter.Add(1)
		path := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", base, seq))

		file, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return file, path, nil
		}
		if os.IsExist(err) {
			continue
		}
		return nil, "", fmt.Errorf("%w: create temp file: %w", ErrIOFailed, err)
	}

	return nil, "", fmt.Errorf("%w: exhausted temp file attempts in %q", ErrIOFailed, dir)
}

func fsyncDir(fs FS, dirPath string) error {
	dirFd, err := fs.Open(dirPath)
	if err != nil {
		return errors.Join(ErrDirSync, fmt.Errorf("open dir %q: %w", dirPath, err))
	}

	if err := dirFd.Sync(); err != nil {
		return errors.Join(ErrDirSync, fmt.Errorf("%q: %w", dirPath, err), closeNamed(dirPath, dirFd))
	}

	return closeNamed(dirPath, dirFd)
}

func closeNamed(path string, f File) error {
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	return nil
}

func removeIfExists(fs FS, path string) error {
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp file %q: %w", path, err)
	}
	return nil
}
