//go:build linux

package backend

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// DeviceSize returns the size in bytes of the backing storage. For a regular
// image file this is just its length; for a raw block device node, Stat()
// reports 0 so the size is instead recovered with the BLKGETSIZE64 ioctl, the
// same call real mkfs/mount tooling uses to learn a device's capacity.
func DeviceSize(s Storage) (int64, error) {
	info, err := s.Stat()
	if err != nil {
		return 0, err
	}
	if info.Mode()&fs.ModeDevice == 0 {
		return info.Size(), nil
	}

	f, err := s.Sys()
	if err != nil {
		return 0, err
	}
	size, err := unix.IoctlGetUint64(int(f.Fd()), unix.BLKGETSIZE64)
	if err != nil {
		return 0, err
	}
	return int64(size), nil
}
