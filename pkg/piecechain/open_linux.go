//go:build linux

package piecechain

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// blockDeviceSize queries the size in bytes of the block device backing
// fd via the BLKGETSIZE64 ioctl, the same call the piece chain this
// package ports uses (see original_source/src/PieceChain.c).
func blockDeviceSize(fd int) (int64, error) {
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, errno
	}
	return int64(size), nil
}
