//go:build !linux

package backend

// DeviceSize returns the size in bytes of the backing storage. Outside Linux
// there is no portable ioctl for raw block device capacity, so only regular
// files (the common case: a disk image) are supported.
func DeviceSize(s Storage) (int64, error) {
	info, err := s.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
