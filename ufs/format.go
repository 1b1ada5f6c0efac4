package ufs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mbrt/unixfs/backend/file"
	"github.com/mbrt/unixfs/blockdev"
)

// FormatFS initializes a fresh image at path with numBlocks blocks: a zeroed
// boot block, a superblock, every inode marked free except the root, every
// data block chained into the free list (less the one handed to the root
// directory), and a root directory inode at inode 0.
func FormatFS(path string, numBlocks uint32, opts ...Option) error {
	if numBlocks < MinBlocks {
		return ErrMinBlocks
	}

	geo := computeGeometry(numBlocks)
	diskSize := int64(numBlocks) * BlockSize

	storage, err := file.CreateFromPath(path, diskSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	dev := blockdev.New(storage)
	defer dev.Close()
	log := newFileSystem(dev, opts).log

	if err := dev.ZeroBlock(0); err != nil {
		return fmt.Errorf("%w: zero boot block: %v", ErrInternal, err)
	}

	rootDataBlock := geo.dataStart // IB + 2
	firstFreeDataBlock := geo.dataStart + 1

	sb := &superblock{
		magic:             superblockMagic,
		diskSize:          diskSize,
		blocksAllocated:   0,
		maxDataBlocks:     int32(geo.numDataBlocks),
		filesAllocated:    1,
		maxInodes:         int32(geo.numInodes),
		freeInodeList:     1,
		freeDataBlockList: int32(firstFreeDataBlock),
		volumeID:          [16]byte(uuid.New()),
	}
	if err := storeSuperblock(dev, sb); err != nil {
		return err
	}

	if err := formatInodes(dev, geo, rootDataBlock); err != nil {
		return err
	}

	// The root's own initial block is a directory block (empty), not a
	// free-data-block record: it is spoken for, not on the free list.
	var emptyDir [DirEntriesPerBlock]dirEntry
	if err := dev.WriteBlock(rootDataBlock, encodeDirBlock(emptyDir)); err != nil {
		return fmt.Errorf("%w: init root directory block: %v", ErrInternal, err)
	}

	if err := formatFreeDataBlocks(dev, firstFreeDataBlock, numBlocks); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"blocks":  numBlocks,
		"inodes":  geo.numInodes,
		"dataBlk": geo.numDataBlocks,
	}).Debug("formatted image")
	return nil
}

func formatInodes(dev *blockdev.Device, geo geometry, rootDataBlock uint32) error {
	for j := uint32(0); j < geo.numInodeBlocks; j++ {
		buf := make([]byte, BlockSize)
		for i := uint32(0); i < InodesPerBlock; i++ {
			num := j*InodesPerBlock + i
			var in inode
			switch {
			case j == 0 && i == 0:
				in = inode{
					number:        num,
					nextFreeInode: inUseInode,
					isFree:        false,
					isDir:         true,
					numBlocks:     1,
				}
				in.direct[0] = rootDataBlock

			case num == geo.numInodes-1:
				in = inode{number: num, nextFreeInode: freeListEnd, isFree: true}
				in.direct[0] = uint32(int32(-3))

			default:
				in = inode{number: num, nextFreeInode: int32(num) + 1, isFree: true}
				in.direct[0] = uint32(int32(-3))
			}
			copy(buf[i*InodeSize:(i+1)*InodeSize], in.encode())
		}
		if err := dev.WriteBlock(j+2, buf); err != nil {
			return fmt.Errorf("%w: write inode block %d: %v", ErrInternal, j, err)
		}
	}
	return nil
}

func formatFreeDataBlocks(dev *blockdev.Device, first, numBlocks uint32) error {
	for d := first; d < numBlocks; d++ {
		next := int32(d) + 1
		if d == numBlocks-1 {
			next = freeListEnd
		}
		if err := dev.WriteBlock(d, encodeFreeBlock(next)); err != nil {
			return fmt.Errorf("%w: write free block record %d: %v", ErrInternal, d, err)
		}
	}
	return nil
}
