// Package blockdev implements the fixed-block device abstraction a filesystem
// image is built on: read-block and write-block by absolute block index.
package blockdev

import (
	"fmt"

	"github.com/mbrt/unixfs/backend"
)

// BlockSize is the fixed block size, in bytes, of every image this package
// reads or writes.
const BlockSize = 512

// Device positions reads and writes against a backend.Storage in units of
// BlockSize-byte blocks.
type Device struct {
	storage backend.Storage
}

// New wraps storage as a block device. storage is not opened or closed here;
// the caller owns its lifecycle.
func New(storage backend.Storage) *Device {
	return &Device{storage: storage}
}

// ReadBlock reads exactly BlockSize bytes from block n into buf. buf must be
// at least BlockSize bytes long. Anything other than a full block read back is
// reported as an error; the caller is never handed a short or torn block.
func (d *Device) ReadBlock(n uint32, buf []byte) error {
	if len(buf) < BlockSize {
		return fmt.Errorf("read block %d: buffer too small (%d bytes)", n, len(buf))
	}
	read, err := d.storage.ReadAt(buf[:BlockSize], int64(n)*BlockSize)
	if err != nil {
		return fmt.Errorf("read block %d: %w", n, err)
	}
	if read != BlockSize {
		return fmt.Errorf("read block %d: got %d of %d bytes", n, read, BlockSize)
	}
	return nil
}

// WriteBlock writes exactly BlockSize bytes of buf to block n. buf must be at
// least BlockSize bytes long.
func (d *Device) WriteBlock(n uint32, buf []byte) error {
	if len(buf) < BlockSize {
		return fmt.Errorf("write block %d: buffer too small (%d bytes)", n, len(buf))
	}
	w, err := d.storage.Writable()
	if err != nil {
		return fmt.Errorf("write block %d: %w", n, err)
	}
	written, err := w.WriteAt(buf[:BlockSize], int64(n)*BlockSize)
	if err != nil {
		return fmt.Errorf("write block %d: %w", n, err)
	}
	if written != BlockSize {
		return fmt.Errorf("write block %d: wrote %d of %d bytes", n, written, BlockSize)
	}
	return nil
}

// ZeroBlock writes a block of all-zero bytes to block n.
func (d *Device) ZeroBlock(n uint32) error {
	return d.WriteBlock(n, make([]byte, BlockSize))
}

// Close closes the underlying storage.
func (d *Device) Close() error {
	return d.storage.Close()
}
