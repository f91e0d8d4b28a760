//go:build !linux

package piecechain

import "fmt"

// blockDeviceSize is only implemented on Linux, where BLKGETSIZE64 is
// available; elsewhere, opening a block device is unsupported.
func blockDeviceSize(int) (int64, error) {
	return 0, fmt.Errorf("%w: block device size query is only supported on linux", ErrUnsupportedTarget)
}
