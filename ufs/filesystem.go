// Package ufs implements a small Unix-style block filesystem stored inside a
// single host-file disk image: a hierarchical namespace of directories and
// regular files with byte-granular read, write, seek, create, delete, and
// directory listing, backed by an inode table with direct/indirect/double-
// indirect block pointers and singly-linked free lists rooted in a superblock.
package ufs

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mbrt/unixfs/backend"
	"github.com/mbrt/unixfs/backend/file"
	"github.com/mbrt/unixfs/blockdev"
)

// FileSystem is a handle to one mounted image. It owns its geometry, open
// file table, and current superblock as fields rather than package
// globals, so that two images can be mounted independently in the same
// process without aliasing each other's state.
type FileSystem struct {
	dev *blockdev.Device
	sb  *superblock
	geo geometry
	log *logrus.Entry

	openFiles [OpenFileTableSize]openFileEntry
}

type openFileEntry struct {
	inodeNumber int32
	seekPos     int64
	isOpen      bool
}

// Option configures a FileSystem at OpenFS/FormatFS time.
type Option func(*FileSystem)

// WithLogger attaches a structured logger for allocator and format-level
// tracing. Nil-safe: without this option, log output goes nowhere.
func WithLogger(log *logrus.Entry) Option {
	return func(fsys *FileSystem) {
		if log != nil {
			fsys.log = log
		}
	}
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newFileSystem(dev *blockdev.Device, opts []Option) *FileSystem {
	fsys := &FileSystem{dev: dev, log: discardLogger()}
	for _, o := range opts {
		o(fsys)
	}
	return fsys
}

// OpenFS mounts an existing image at path. The superblock magic is validated;
// a mismatch reports ErrInvalidDiskFile. The real size of the backing file or
// block device is also cross-checked against the superblock's recorded
// diskSize, catching a truncated image or a device swapped out from under a
// stale image path.
func OpenFS(path string, opts ...Option) (*FileSystem, error) {
	storage, err := file.OpenFromPath(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}

	dev := blockdev.New(storage)
	fsys := newFileSystem(dev, opts)

	sb, err := loadSuperblock(dev)
	if err != nil {
		_ = dev.Close()
		return nil, err
	}
	if sb.magic != superblockMagic {
		_ = dev.Close()
		return nil, ErrInvalidDiskFile
	}

	actualSize, err := backend.DeviceSize(storage)
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if actualSize != sb.diskSize {
		_ = dev.Close()
		return nil, ErrInvalidDiskFile
	}

	fsys.sb = sb
	fsys.geo = geometryFromDiskSize(sb.diskSize)
	fsys.log.WithFields(logrus.Fields{
		"blocks":  fsys.geo.numBlocks,
		"inodes":  fsys.geo.numInodes,
		"dataBlk": fsys.geo.numDataBlocks,
	}).Debug("mounted image")
	return fsys, nil
}

// openFromStorage is used by tests to mount a freshly formatted
// backend.Storage without reopening it from a path.
func openFromStorage(storage backend.Storage, opts ...Option) (*FileSystem, error) {
	dev := blockdev.New(storage)
	fsys := newFileSystem(dev, opts)

	sb, err := loadSuperblock(dev)
	if err != nil {
		return nil, err
	}
	if sb.magic != superblockMagic {
		return nil, ErrInvalidDiskFile
	}
	fsys.sb = sb
	fsys.geo = geometryFromDiskSize(sb.diskSize)
	return fsys, nil
}

func geometryFromDiskSize(diskSize int64) geometry {
	return computeGeometry(uint32(diskSize / BlockSize))
}

// Close releases the underlying image. It does not flush anything, since
// every API call already persists its writes before returning.
func (fsys *FileSystem) Close() error {
	return fsys.dev.Close()
}

func (fsys *FileSystem) loadSB() error {
	sb, err := loadSuperblock(fsys.dev)
	if err != nil {
		return err
	}
	fsys.sb = sb
	return nil
}

func (fsys *FileSystem) storeSB() error {
	return storeSuperblock(fsys.dev, fsys.sb)
}
