package piecechain

import (
	"fmt"
	"os"
)

// Open creates a piece chain. Pass an empty path to get an empty chain
// with a single sealed initial revision. A non-empty path triggers the
// file bootstrap: the file is opened read-only, stat'd, and (if
// non-empty) memory-mapped read-only/private; one initial piece covers
// the whole mapping. The file descriptor is closed once the mapping is
// established — the mapping keeps the bytes accessible independently
// of it. Only regular files and block devices are supported; anything
// else fails with ErrUnsupportedTarget.
func Open(path string, opts ...Option) (*Chain, error) {
	c := New(opts...)
	if path == "" {
		return c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: open %q: %w", ErrIO, path, err)
	}

	size, err := fileSize(f)
	if err != nil {
		f.Close()
		c.Close()
		return nil, err
	}

	if size > 0 {
		blk, err := newMmapBlock(int(f.Fd()), size)
		if err != nil {
			f.Close()
			c.Close()
			return nil, err
		}
		c.blocks.PushBack(blk)

		p := &piece{blk: blk, start: 0, size: size}
		c.seedInitialPiece(p)
	}

	if err := f.Close(); err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: close %q: %w", ErrIO, path, err)
	}

	c.sealInitialRevision()

	return c, nil
}

// seedInitialPiece splices p in as the sole piece of an otherwise empty
// chain, recording it as a pending change for sealInitialRevision to
// fold into the chain's initial revision — mirroring the file bootstrap
// of the piece chain this package ports, which builds this first change
// by hand rather than by calling Insert.
func (c *Chain) seedInitialPiece(p *piece) {
	p.prev, p.next = &c.sentinel, &c.sentinel

	ch := &change{
		position:    0,
		original:    emptySpan(),
		replacement: newSpan(p, p),
	}
	c.size += spanSwap(ch.original, ch.replacement)
	c.pendingChanges = append(c.pendingChanges, ch)
}

// sealInitialRevision folds the file bootstrap's pending change, if any,
// into the sealed-empty revision New already created, rather than
// committing it as a second revision on top. The loaded file content is
// the chain's base state: Undo at revision 0 must report nothing to
// undo, matching the piece chain this package ports, which builds the
// file load as the single initial revision rather than an edit
// committed over an empty start.
func (c *Chain) sealInitialRevision() {
	if len(c.pendingChanges) > 0 {
		c.revisions[0] = &revision{changes: c.pendingChanges}
		c.pendingChanges = nil
	}
	c.invalidateCache()
}

// fileSize returns the byte length to map for f: st_size for a regular
// file, the device size for a block device, and ErrUnsupportedTarget
// for anything else.
func fileSize(f *os.File) (int, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat %q: %w", ErrIO, f.Name(), err)
	}

	switch {
	case info.Mode().IsRegular():
		size := info.Size()
		if size < 0 || int64(int(size)) != size {
			return 0, fmt.Errorf("%w: %q is too large to map", ErrIO, f.Name())
		}
		return int(size), nil

	case info.Mode()&os.ModeDevice != 0 && info.Mode()&os.ModeCharDevice == 0:
		size, err := blockDeviceSize(int(f.Fd()))
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrIO, f.Name(), err)
		}
		if size < 0 || int64(int(size)) != size {
			return 0, fmt.Errorf("%w: %q is too large to map", ErrIO, f.Name())
		}
		return int(size), nil

	default:
		return 0, fmt.Errorf("%w: %q is neither a regular file nor a block device", ErrUnsupportedTarget, f.Name())
	}
}
