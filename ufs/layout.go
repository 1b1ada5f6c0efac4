package ufs

import "github.com/mbrt/unixfs/blockdev"

// On-disk geometry constants.
const (
	// BlockSize is the fixed size in bytes of every block in the image.
	BlockSize = blockdev.BlockSize

	// InodeSize is the on-disk size of one inode record.
	InodeSize = 64
	// InodesPerBlock is how many inodes are packed into one inode block.
	InodesPerBlock = BlockSize / InodeSize

	// DirectPointers is the number of direct block pointers stored in an inode.
	DirectPointers = 10
	// IndirectFanout is the number of block pointers in one indirection block.
	IndirectFanout = BlockSize / 4

	// MaxFileBlocks is the largest logical block count a file can reach:
	// DirectPointers + IndirectFanout (single indirect) + IndirectFanout^2 (double indirect).
	MaxFileBlocks = DirectPointers + IndirectFanout + IndirectFanout*IndirectFanout

	// MaxNameLen is the longest filename component, not counting the NUL terminator.
	MaxNameLen = 11
	// nameFieldLen is the on-disk size of the filename field (MaxNameLen + NUL).
	nameFieldLen = MaxNameLen + 1

	// DirEntriesPerBlock is how many fixed-size directory entries fit in one block.
	DirEntriesPerBlock = BlockSize / dirEntrySize

	// MinBlocks is the smallest image format_fs will accept.
	MinBlocks = 32

	// OpenFileTableSize is the number of concurrently open file handles a
	// FileSystem supports.
	OpenFileTableSize = 20

	// rootInode is the inode number of the filesystem root; fixed at format time.
	rootInode = 0

	// freeListEnd / inUseInode are the next-free-inode sentinels.
	freeListEnd = -1
	inUseInode  = -2

	dirEntrySize = nameFieldLen + 4 // filename + int32 inode number
)

// geometry holds the values derived once from an image's total block count,
// as fields on the owning FileSystem handle rather than process-wide
// globals, so multiple images can be mounted concurrently.
type geometry struct {
	numBlocks      uint32
	numInodeBlocks uint32
	numInodes      uint32
	numDataBlocks  uint32
	dataStart      uint32 // first absolute data block index
}

func computeGeometry(numBlocks uint32) geometry {
	ib := numBlocks / 32
	return geometry{
		numBlocks:      numBlocks,
		numInodeBlocks: ib,
		numInodes:      ib * InodesPerBlock,
		numDataBlocks:  numBlocks - 2 - ib,
		dataStart:      2 + ib,
	}
}
