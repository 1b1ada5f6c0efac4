package ufs

import (
	"encoding/binary"
	"fmt"
)

// readIndirectionBlock decodes an indirection block (an array of
// IndirectFanout absolute block indices) at absolute block idx.
func (fsys *FileSystem) readIndirectionBlock(idx uint32) ([]uint32, error) {
	buf := make([]byte, BlockSize)
	if err := fsys.dev.ReadBlock(idx, buf); err != nil {
		return nil, fmt.Errorf("%w: read indirection block %d: %v", ErrInternal, idx, err)
	}
	entries := make([]uint32, IndirectFanout)
	for i := range entries {
		entries[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return entries, nil
}

func (fsys *FileSystem) writeIndirectionBlock(idx uint32, entries []uint32) error {
	buf := make([]byte, BlockSize)
	for i, e := range entries {
		binary.LittleEndian.PutUint32(buf[i*4:], e)
	}
	if err := fsys.dev.WriteBlock(idx, buf); err != nil {
		return fmt.Errorf("%w: write indirection block %d: %v", ErrInternal, idx, err)
	}
	return nil
}

// getDataBlock resolves the k-th logical block (0-based) of in to an absolute
// block index, walking direct pointers, one level of indirection, or two.
func (fsys *FileSystem) getDataBlock(in *inode, k uint32) (uint32, error) {
	switch {
	case k < DirectPointers:
		return in.direct[k], nil

	case k < DirectPointers+IndirectFanout:
		if in.indirect1 == 0 {
			return 0, fmt.Errorf("%w: block %d has no indirect1", ErrInternal, k)
		}
		entries, err := fsys.readIndirectionBlock(in.indirect1)
		if err != nil {
			return 0, err
		}
		return entries[k-DirectPointers], nil

	case k < MaxFileBlocks:
		if in.indirect2 == 0 {
			return 0, fmt.Errorf("%w: block %d has no indirect2", ErrInternal, k)
		}
		top, err := fsys.readIndirectionBlock(in.indirect2)
		if err != nil {
			return 0, err
		}
		rel := k - DirectPointers - IndirectFanout
		second := top[rel/IndirectFanout]
		if second == 0 {
			return 0, fmt.Errorf("%w: block %d has no second-level indirect", ErrInternal, k)
		}
		entries, err := fsys.readIndirectionBlock(second)
		if err != nil {
			return 0, err
		}
		return entries[rel%IndirectFanout], nil

	default:
		return 0, fmt.Errorf("%w: block index %d out of range", ErrInternal, k)
	}
}

// addDataBlock appends one logical block to in, growing direct pointers,
// indirect1, or indirect2 as needed, and persists every touched structure
// (new indirection blocks, the inode) before returning.
func (fsys *FileSystem) addDataBlock(in *inode) (uint32, error) {
	k := in.numBlocks
	if k >= MaxFileBlocks {
		return 0, fmt.Errorf("%w: file already at maximum size", ErrDiskFull)
	}

	newBlock, err := fsys.allocDataBlock()
	if err != nil {
		return 0, err
	}

	switch {
	case k < DirectPointers:
		in.direct[k] = newBlock

	case k == DirectPointers:
		indirBlk, err := fsys.allocDataBlock()
		if err != nil {
			return 0, err
		}
		entries := make([]uint32, IndirectFanout)
		entries[0] = newBlock
		if err := fsys.writeIndirectionBlock(indirBlk, entries); err != nil {
			return 0, err
		}
		in.indirect1 = indirBlk

	case k < DirectPointers+IndirectFanout:
		entries, err := fsys.readIndirectionBlock(in.indirect1)
		if err != nil {
			return 0, err
		}
		entries[k-DirectPointers] = newBlock
		if err := fsys.writeIndirectionBlock(in.indirect1, entries); err != nil {
			return 0, err
		}

	case k == DirectPointers+IndirectFanout:
		secondBlk, err := fsys.allocDataBlock()
		if err != nil {
			return 0, err
		}
		topBlk, err := fsys.allocDataBlock()
		if err != nil {
			return 0, err
		}
		secondEntries := make([]uint32, IndirectFanout)
		secondEntries[0] = newBlock
		if err := fsys.writeIndirectionBlock(secondBlk, secondEntries); err != nil {
			return 0, err
		}
		topEntries := make([]uint32, IndirectFanout)
		topEntries[0] = secondBlk
		if err := fsys.writeIndirectionBlock(topBlk, topEntries); err != nil {
			return 0, err
		}
		in.indirect2 = topBlk

	default:
		rel := k - DirectPointers - IndirectFanout
		top, err := fsys.readIndirectionBlock(in.indirect2)
		if err != nil {
			return 0, err
		}
		slot := rel / IndirectFanout
		if rel%IndirectFanout == 0 {
			secondBlk, err := fsys.allocDataBlock()
			if err != nil {
				return 0, err
			}
			secondEntries := make([]uint32, IndirectFanout)
			secondEntries[0] = newBlock
			if err := fsys.writeIndirectionBlock(secondBlk, secondEntries); err != nil {
				return 0, err
			}
			top[slot] = secondBlk
			if err := fsys.writeIndirectionBlock(in.indirect2, top); err != nil {
				return 0, err
			}
		} else {
			secondBlk := top[slot]
			secondEntries, err := fsys.readIndirectionBlock(secondBlk)
			if err != nil {
				return 0, err
			}
			secondEntries[rel%IndirectFanout] = newBlock
			if err := fsys.writeIndirectionBlock(secondBlk, secondEntries); err != nil {
				return 0, err
			}
		}
	}

	in.numBlocks++
	if err := fsys.putInode(in); err != nil {
		return 0, err
	}
	return newBlock, nil
}

// trimIndirectionBlocks frees indirection blocks after a shrink: indirect1
// once numBlocks is below DirectPointers, indirect2 once numBlocks is below
// DirectPointers+IndirectFanout, and a second-level block once numBlocks
// drops back to the first logical block that block would hold. An
// indirection block left empty by a shrink of exactly one step (indirect1 at
// numBlocks == DirectPointers, indirect2 at DirectPointers+IndirectFanout)
// is kept until the next shrink.
func (fsys *FileSystem) trimIndirectionBlocks(in *inode) error {
	n := in.numBlocks

	if n < DirectPointers && in.indirect1 != 0 {
		if err := fsys.freeDataBlock(in.indirect1); err != nil {
			return err
		}
		in.indirect1 = 0
	}

	if n < DirectPointers+IndirectFanout && in.indirect2 != 0 {
		if err := fsys.freeDataBlock(in.indirect2); err != nil {
			return err
		}
		in.indirect2 = 0
	}

	if n >= DirectPointers+IndirectFanout && in.indirect2 != 0 {
		rel := n - DirectPointers - IndirectFanout
		if rel%IndirectFanout == 0 {
			top, err := fsys.readIndirectionBlock(in.indirect2)
			if err != nil {
				return err
			}
			slot := rel / IndirectFanout
			if top[slot] != 0 {
				if err := fsys.freeDataBlock(top[slot]); err != nil {
					return err
				}
				top[slot] = 0
				if err := fsys.writeIndirectionBlock(in.indirect2, top); err != nil {
					return err
				}
			}
		}
	}

	return fsys.putInode(in)
}
