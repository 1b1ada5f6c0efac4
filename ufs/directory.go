package ufs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// dirEntry is one {filename, inode_number} record inside a directory data
// block. inodeNumber <= 0 marks an empty slot.
type dirEntry struct {
	name        string
	inodeNumber int32
}

func encodeDirEntry(e dirEntry) []byte {
	b := make([]byte, dirEntrySize)
	copy(b[:nameFieldLen], []byte(e.name))
	binary.LittleEndian.PutUint32(b[nameFieldLen:], uint32(e.inodeNumber))
	return b
}

func decodeDirEntry(b []byte) dirEntry {
	name := b[:nameFieldLen]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return dirEntry{
		name:        string(name),
		inodeNumber: int32(binary.LittleEndian.Uint32(b[nameFieldLen:])),
	}
}

func encodeDirBlock(entries [DirEntriesPerBlock]dirEntry) []byte {
	buf := make([]byte, BlockSize)
	for i, e := range entries {
		copy(buf[i*dirEntrySize:], encodeDirEntry(e))
	}
	return buf
}

func decodeDirBlock(b []byte) [DirEntriesPerBlock]dirEntry {
	var entries [DirEntriesPerBlock]dirEntry
	for i := range entries {
		entries[i] = decodeDirEntry(b[i*dirEntrySize : (i+1)*dirEntrySize])
	}
	return entries
}

func (fsys *FileSystem) readDirBlock(abs uint32) ([DirEntriesPerBlock]dirEntry, error) {
	buf := make([]byte, BlockSize)
	if err := fsys.dev.ReadBlock(abs, buf); err != nil {
		return [DirEntriesPerBlock]dirEntry{}, fmt.Errorf("%w: read directory block %d: %v", ErrInternal, abs, err)
	}
	return decodeDirBlock(buf), nil
}

func (fsys *FileSystem) writeDirBlock(abs uint32, entries [DirEntriesPerBlock]dirEntry) error {
	if err := fsys.dev.WriteBlock(abs, encodeDirBlock(entries)); err != nil {
		return fmt.Errorf("%w: write directory block %d: %v", ErrInternal, abs, err)
	}
	return nil
}

// addDirToInode inserts {name, childInode} into parent's directory contents,
// allocating a new directory block when the current last block is absent or
// full.
func (fsys *FileSystem) addDirToInode(parent *inode, name string, childInode uint32) error {
	entry := dirEntry{name: name, inodeNumber: int32(childInode)}

	if parent.numBlocks == 0 {
		abs, err := fsys.addDataBlock(parent)
		if err != nil {
			return ErrDiskFull
		}
		var entries [DirEntriesPerBlock]dirEntry
		entries[0] = entry
		return fsys.writeDirBlock(abs, entries)
	}

	lastBlockNum := parent.numBlocks - 1
	abs, err := fsys.getDataBlock(parent, lastBlockNum)
	if err != nil {
		return err
	}
	entries, err := fsys.readDirBlock(abs)
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].inodeNumber <= 0 {
			entries[i] = entry
			return fsys.writeDirBlock(abs, entries)
		}
	}

	// last block full: allocate a new one
	newAbs, err := fsys.addDataBlock(parent)
	if err != nil {
		return ErrDiskFull
	}
	var newEntries [DirEntriesPerBlock]dirEntry
	newEntries[0] = entry
	return fsys.writeDirBlock(newAbs, newEntries)
}

// hasFile scans every directory block of dirInode for an entry named name.
// Returns (inode number, nil) on a hit, (-1, nil) if absent, (-2, nil) if
// dirInode is not a directory.
func (fsys *FileSystem) hasFile(dirInode *inode, name string) (int32, error) {
	if !dirInode.isDir {
		return -2, nil
	}
	for b := uint32(0); b < dirInode.numBlocks; b++ {
		abs, err := fsys.getDataBlock(dirInode, b)
		if err != nil {
			return 0, err
		}
		entries, err := fsys.readDirBlock(abs)
		if err != nil {
			return 0, err
		}
		for _, e := range entries {
			if e.inodeNumber > 0 && e.name == name {
				return e.inodeNumber, nil
			}
		}
	}
	return -1, nil
}

// isEmptyDir reports whether no entry across any of dirInode's blocks has a
// nonzero inode number. Emptiness is judged by entry contents, not merely by
// numBlocks == 0, so a directory whose entries have all been removed but
// whose trailing (now-unused) block has not yet been reclaimed is still
// correctly reported empty.
func (fsys *FileSystem) isEmptyDir(dirInode *inode) (bool, error) {
	for b := uint32(0); b < dirInode.numBlocks; b++ {
		abs, err := fsys.getDataBlock(dirInode, b)
		if err != nil {
			return false, err
		}
		entries, err := fsys.readDirBlock(abs)
		if err != nil {
			return false, err
		}
		for _, e := range entries {
			if e.inodeNumber != 0 {
				return false, nil
			}
		}
	}
	return true, nil
}

// liveCount returns how many of a block's entries form the live (contiguous,
// non-empty) prefix.
func liveCount(entries [DirEntriesPerBlock]dirEntry) int {
	n := 0
	for _, e := range entries {
		if e.inodeNumber <= 0 {
			break
		}
		n++
	}
	return n
}

// removeEntry finds name in parent, swaps the last live entry of the parent's
// last directory block into its place, and clears the vacated tail slot. If
// that empties the last block, the block is freed and parent shrinks by one,
// followed by an indirection trim.
func (fsys *FileSystem) removeEntry(parent *inode, name string) error {
	var (
		targetBlockNum uint32
		targetAbs      uint32
		targetSlot     int
		found          bool
	)

	for b := uint32(0); b < parent.numBlocks && !found; b++ {
		abs, err := fsys.getDataBlock(parent, b)
		if err != nil {
			return err
		}
		entries, err := fsys.readDirBlock(abs)
		if err != nil {
			return err
		}
		for i, e := range entries {
			if e.inodeNumber > 0 && e.name == name {
				targetBlockNum, targetAbs, targetSlot = b, abs, i
				found = true
				break
			}
		}
	}
	if !found {
		return fmt.Errorf("%w: directory entry %q not found", ErrInternal, name)
	}

	lastBlockNum := parent.numBlocks - 1
	lastAbs, err := fsys.getDataBlock(parent, lastBlockNum)
	if err != nil {
		return err
	}
	lastEntries, err := fsys.readDirBlock(lastAbs)
	if err != nil {
		return err
	}
	k := liveCount(lastEntries)

	targetEntries := lastEntries
	if targetAbs != lastAbs {
		targetEntries, err = fsys.readDirBlock(targetAbs)
		if err != nil {
			return err
		}
	}

	targetEntries[targetSlot] = lastEntries[k-1]
	lastEntries[k-1] = dirEntry{}

	if targetAbs == lastAbs {
		targetEntries[k-1] = dirEntry{}
		if err := fsys.writeDirBlock(targetAbs, targetEntries); err != nil {
			return err
		}
	} else {
		if err := fsys.writeDirBlock(targetAbs, targetEntries); err != nil {
			return err
		}
		if err := fsys.writeDirBlock(lastAbs, lastEntries); err != nil {
			return err
		}
	}

	if k-1 == 0 {
		if err := fsys.freeDataBlock(lastAbs); err != nil {
			return err
		}
		parent.numBlocks--
		if err := fsys.trimIndirectionBlocks(parent); err != nil {
			return err
		}
	}

	return nil
}
