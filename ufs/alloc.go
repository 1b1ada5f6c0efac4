package ufs

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

// A free data block stores its successor in the first 4 bytes; the rest is
// unused padding.
func encodeFreeBlock(next int32) []byte {
	b := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(b, uint32(next))
	return b
}

func decodeFreeBlockNext(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// allocDataBlock pops the head of the free-data-block list and zeroes it
// before returning its absolute block index.
func (fsys *FileSystem) allocDataBlock() (uint32, error) {
	head := fsys.sb.freeDataBlockList
	if head == freeListEnd {
		return 0, ErrDiskFull
	}

	buf := make([]byte, BlockSize)
	if err := fsys.dev.ReadBlock(uint32(head), buf); err != nil {
		return 0, fmt.Errorf("%w: read free block %d: %v", ErrInternal, head, err)
	}
	newHead := decodeFreeBlockNext(buf)

	fsys.sb.freeDataBlockList = newHead
	if err := fsys.storeSB(); err != nil {
		return 0, err
	}

	if err := fsys.dev.ZeroBlock(uint32(head)); err != nil {
		return 0, fmt.Errorf("%w: zero block %d: %v", ErrInternal, head, err)
	}
	fsys.log.WithFields(logrus.Fields{"block": head}).Debug("allocated data block")
	return uint32(head), nil
}

// freeDataBlock pushes block n onto the free-data-block list.
func (fsys *FileSystem) freeDataBlock(n uint32) error {
	record := encodeFreeBlock(fsys.sb.freeDataBlockList)
	if err := fsys.dev.WriteBlock(n, record); err != nil {
		return fmt.Errorf("%w: write free block record %d: %v", ErrInternal, n, err)
	}
	fsys.sb.freeDataBlockList = int32(n)
	if err := fsys.storeSB(); err != nil {
		return err
	}
	fsys.log.WithFields(logrus.Fields{"block": n}).Debug("freed data block")
	return nil
}
