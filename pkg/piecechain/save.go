package piecechain

import (
	"errors"
	"fmt"
	"io"

	"github.com/calvinalkan/piecechain/pkg/fsx"
)

// SaveMode selects the durability/performance tradeoff Save makes.
type SaveMode int

const (
	// SaveAuto tries SaveAtomic first and falls back to SaveInplace if
	// the atomic path fails for any reason (e.g. the target directory
	// has no free space for a second copy of the file).
	SaveAuto SaveMode = iota

	// SaveAtomic writes a temp file in the target's directory and
	// renames it over the target, so a crash mid-write never leaves a
	// truncated or partially-written target. Refuses to replace an
	// existing non-regular or hard-linked target.
	SaveAtomic

	// SaveInplace truncates (or creates) the target and writes directly
	// into it. Uses no extra disk space but can leave a partially
	// written target if interrupted.
	SaveInplace
)

func (m SaveMode) String() string {
	switch m {
	case SaveAuto:
		return "auto"
	case SaveAtomic:
		return "atomic"
	case SaveInplace:
		return "inplace"
	default:
		return fmt.Sprintf("SaveMode(%d)", int(m))
	}
}

// Save writes the chain's entire current contents to path using the
// given mode, clearing Dirty on success. The write streams via Visit,
// so the whole buffer is never materialized in memory regardless of
// mode.
func (c *Chain) Save(path string, mode SaveMode) error {
	if c.closed {
		return c.fail(ErrClosed)
	}

	w := fsx.NewWriter(c.fs)
	opts := w.DefaultOptions()

	writeTo := func(dst io.Writer) error {
		var writeErr error
		err := c.Visit(0, c.size, func(_ int, data []byte) bool {
			_, writeErr = dst.Write(data)
			return writeErr == nil
		})
		if writeErr != nil {
			return writeErr
		}
		return err
	}

	var err error
	switch mode {
	case SaveAtomic:
		err = w.WriteAtomic(path, opts, writeTo)
	case SaveInplace:
		err = w.WriteInplace(path, opts, writeTo)
	case SaveAuto:
		err = w.WriteAuto(path, opts, writeTo)
	default:
		err = fmt.Errorf("piecechain: unknown save mode %v", mode)
	}

	if err != nil {
		sentinel := ErrIO
		if errors.Is(err, fsx.ErrUnsafeTarget) {
			sentinel = ErrUnsupportedTarget
		}
		return c.fail(fmt.Errorf("%w: save %q: %w", sentinel, path, err))
	}

	c.dirty = false
	return nil
}
