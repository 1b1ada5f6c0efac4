package ufs

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	inOffNextFree  = 0
	inOffIsFree    = 4
	inOffIsDir     = 5
	inOffNumBlocks = 8
	inOffDirect    = 12
	inOffIndirect1 = inOffDirect + DirectPointers*4
	inOffIndirect2 = inOffIndirect1 + 4
)

// inode is the 64-byte on-disk metadata record for one file or directory.
// Direct pointers hold absolute data-block indices directly;
// indirect1/indirect2 hold the absolute block index of an indirection block,
// or 0 if absent.
type inode struct {
	number        uint32
	nextFreeInode int32 // -1 terminates the free list, -2 means in use
	isFree        bool
	isDir         bool
	numBlocks     uint32
	direct        [DirectPointers]uint32
	indirect1     uint32
	indirect2     uint32
}

func (in *inode) encode() []byte {
	b := make([]byte, InodeSize)
	binary.LittleEndian.PutUint32(b[inOffNextFree:], uint32(in.nextFreeInode))
	if in.isFree {
		b[inOffIsFree] = 1
	}
	if in.isDir {
		b[inOffIsDir] = 1
	}
	binary.LittleEndian.PutUint32(b[inOffNumBlocks:], in.numBlocks)
	for i, d := range in.direct {
		binary.LittleEndian.PutUint32(b[inOffDirect+i*4:], d)
	}
	binary.LittleEndian.PutUint32(b[inOffIndirect1:], in.indirect1)
	binary.LittleEndian.PutUint32(b[inOffIndirect2:], in.indirect2)
	return b
}

func decodeInode(number uint32, b []byte) *inode {
	in := &inode{
		number:        number,
		nextFreeInode: int32(binary.LittleEndian.Uint32(b[inOffNextFree:])),
		isFree:        b[inOffIsFree] != 0,
		isDir:         b[inOffIsDir] != 0,
		numBlocks:     binary.LittleEndian.Uint32(b[inOffNumBlocks:]),
	}
	for i := range in.direct {
		in.direct[i] = binary.LittleEndian.Uint32(b[inOffDirect+i*4:])
	}
	in.indirect1 = binary.LittleEndian.Uint32(b[inOffIndirect1:])
	in.indirect2 = binary.LittleEndian.Uint32(b[inOffIndirect2:])
	return in
}

// inodeBlockIndex/inodeSlot translate an inode number into the physical inode
// block containing it and its slot within that block.
func inodeBlockIndex(num uint32) uint32 {
	return num/InodesPerBlock + 2
}

func inodeSlot(num uint32) uint32 {
	return num % InodesPerBlock
}

// readInodeBlock reads the raw InodesPerBlock-inode block containing inode num.
func (fsys *FileSystem) readInodeBlock(num uint32) ([]byte, error) {
	buf := make([]byte, BlockSize)
	if err := fsys.dev.ReadBlock(inodeBlockIndex(num), buf); err != nil {
		return nil, fmt.Errorf("%w: read inode block for %d: %v", ErrInternal, num, err)
	}
	return buf, nil
}

func (fsys *FileSystem) writeInodeBlock(num uint32, buf []byte) error {
	if err := fsys.dev.WriteBlock(inodeBlockIndex(num), buf); err != nil {
		return fmt.Errorf("%w: write inode block for %d: %v", ErrInternal, num, err)
	}
	return nil
}

// getInode returns the decoded inode num. Fails when num is out of range.
func (fsys *FileSystem) getInode(num uint32) (*inode, error) {
	if num >= fsys.geo.numInodes {
		return nil, fmt.Errorf("%w: inode %d out of range", ErrInternal, num)
	}
	buf, err := fsys.readInodeBlock(num)
	if err != nil {
		return nil, err
	}
	slot := inodeSlot(num)
	return decodeInode(num, buf[slot*InodeSize:(slot+1)*InodeSize]), nil
}

// putInode writes in back to its slot within its inode block.
func (fsys *FileSystem) putInode(in *inode) error {
	buf, err := fsys.readInodeBlock(in.number)
	if err != nil {
		return err
	}
	slot := inodeSlot(in.number)
	copy(buf[slot*InodeSize:(slot+1)*InodeSize], in.encode())
	return fsys.writeInodeBlock(in.number, buf)
}

// allocInode pops the head of the free-inode list, resets it to a used-empty
// state, and persists both the inode and the superblock's new free-list head.
func (fsys *FileSystem) allocInode() (*inode, error) {
	head := fsys.sb.freeInodeList
	if head == freeListEnd {
		return nil, ErrMaxFiles
	}

	in, err := fsys.getInode(uint32(head))
	if err != nil {
		return nil, err
	}

	newHead := in.nextFreeInode

	*in = inode{
		number:        in.number,
		nextFreeInode: inUseInode,
		isFree:        false,
		isDir:         false,
		numBlocks:     0,
	}
	if err := fsys.putInode(in); err != nil {
		return nil, err
	}

	fsys.sb.freeInodeList = newHead
	fsys.sb.filesAllocated++
	if err := fsys.storeSB(); err != nil {
		return nil, err
	}

	fsys.log.WithFields(logrus.Fields{"inode": in.number}).Debug("allocated inode")
	return in, nil
}

// freeInode returns in to the head of the free-inode list. The caller must
// have already freed its data and indirection blocks.
func (fsys *FileSystem) freeInode(in *inode) error {
	in.isFree = true
	in.isDir = false
	in.numBlocks = 0
	in.direct = [DirectPointers]uint32{}
	in.indirect1 = 0
	in.indirect2 = 0
	in.nextFreeInode = fsys.sb.freeInodeList

	if err := fsys.putInode(in); err != nil {
		return err
	}

	fsys.sb.freeInodeList = int32(in.number)
	fsys.sb.filesAllocated--
	if err := fsys.storeSB(); err != nil {
		return err
	}
	fsys.log.WithFields(logrus.Fields{"inode": in.number}).Debug("freed inode")
	return nil
}
