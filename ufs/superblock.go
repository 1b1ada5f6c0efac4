package ufs

import (
	"encoding/binary"
	"fmt"

	"github.com/mbrt/unixfs/blockdev"
)

// superblockMagic is the fixed sentinel identifying the on-disk layout.
// Some Unix mkfs tools store this kind of sentinel in native byte order;
// here it is always little-endian and validated explicitly on mount rather
// than trusting the host's endianness.
const superblockMagic uint32 = 12345

// superblockBlock is the absolute block index of the superblock.
const superblockBlock = 1

const (
	sbOffMagic       = 0
	sbOffDiskSize    = 4
	sbOffBlocksAlloc = 12
	sbOffMaxData     = 16
	sbOffFilesAlloc  = 20
	sbOffMaxInodes   = 24
	sbOffFreeInode   = 28
	sbOffFreeData    = 32
	sbOffVolumeID    = 36
)

// superblock is the single self-describing record at block 1.
type superblock struct {
	magic             uint32
	diskSize          int64
	blocksAllocated   int32
	maxDataBlocks     int32
	filesAllocated    int32
	maxInodes         int32
	freeInodeList     int32 // inode number, -1 = empty
	freeDataBlockList int32 // absolute block index, -1 = empty
	volumeID          [16]byte
}

func (s *superblock) encode() []byte {
	b := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(b[sbOffMagic:], s.magic)
	binary.LittleEndian.PutUint64(b[sbOffDiskSize:], uint64(s.diskSize))
	binary.LittleEndian.PutUint32(b[sbOffBlocksAlloc:], uint32(s.blocksAllocated))
	binary.LittleEndian.PutUint32(b[sbOffMaxData:], uint32(s.maxDataBlocks))
	binary.LittleEndian.PutUint32(b[sbOffFilesAlloc:], uint32(s.filesAllocated))
	binary.LittleEndian.PutUint32(b[sbOffMaxInodes:], uint32(s.maxInodes))
	binary.LittleEndian.PutUint32(b[sbOffFreeInode:], uint32(s.freeInodeList))
	binary.LittleEndian.PutUint32(b[sbOffFreeData:], uint32(s.freeDataBlockList))
	copy(b[sbOffVolumeID:sbOffVolumeID+16], s.volumeID[:])
	return b
}

func decodeSuperblock(b []byte) *superblock {
	s := &superblock{
		magic:             binary.LittleEndian.Uint32(b[sbOffMagic:]),
		diskSize:          int64(binary.LittleEndian.Uint64(b[sbOffDiskSize:])),
		blocksAllocated:   int32(binary.LittleEndian.Uint32(b[sbOffBlocksAlloc:])),
		maxDataBlocks:     int32(binary.LittleEndian.Uint32(b[sbOffMaxData:])),
		filesAllocated:    int32(binary.LittleEndian.Uint32(b[sbOffFilesAlloc:])),
		maxInodes:         int32(binary.LittleEndian.Uint32(b[sbOffMaxInodes:])),
		freeInodeList:     int32(binary.LittleEndian.Uint32(b[sbOffFreeInode:])),
		freeDataBlockList: int32(binary.LittleEndian.Uint32(b[sbOffFreeData:])),
	}
	copy(s.volumeID[:], b[sbOffVolumeID:sbOffVolumeID+16])
	return s
}

// loadSuperblock reads and decodes block 1.
func loadSuperblock(dev *blockdev.Device) (*superblock, error) {
	buf := make([]byte, BlockSize)
	if err := dev.ReadBlock(superblockBlock, buf); err != nil {
		return nil, fmt.Errorf("%w: read superblock: %v", ErrInternal, err)
	}
	return decodeSuperblock(buf), nil
}

// storeSuperblock persists sb back to block 1.
func storeSuperblock(dev *blockdev.Device, sb *superblock) error {
	if err := dev.WriteBlock(superblockBlock, sb.encode()); err != nil {
		return fmt.Errorf("%w: write superblock: %v", ErrInternal, err)
	}
	return nil
}
