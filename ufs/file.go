package ufs

import (
	"fmt"
	"io"
)

// FileCreate creates a new regular file at path.
func (fsys *FileSystem) FileCreate(path string) error {
	return fsys.createFile(path, false)
}

// FileMkdir creates a new directory at path.
func (fsys *FileSystem) FileMkdir(path string) error {
	return fsys.createFile(path, true)
}

// createFile resolves path's parent, allocates a fresh inode for leaf, and
// links it into the parent directory.
func (fsys *FileSystem) createFile(path string, isDir bool) error {
	if path == "/" {
		return ErrFileExists
	}

	parentPath, leaf := splitParentAndLeaf(path)
	if path == "" || leaf == "" {
		return ErrInvalidPath
	}
	if len(leaf) > MaxNameLen {
		return ErrInvalidPath
	}

	parentNum, err := fsys.pathToInode(parentPath)
	if err != nil {
		return ErrInvalidPath
	}
	parent, err := fsys.getInode(parentNum)
	if err != nil {
		return err
	}
	if !parent.isDir {
		return ErrInvalidPath
	}

	existing, err := fsys.hasFile(parent, leaf)
	if err != nil {
		return err
	}
	if existing != -1 {
		return ErrFileExists
	}

	child, err := fsys.allocInode()
	if err != nil {
		return err
	}
	child.isDir = isDir
	if err := fsys.putInode(child); err != nil {
		return err
	}

	if err := fsys.addDirToInode(parent, leaf, child.number); err != nil {
		// keep the invariant that every used inode has a directory entry:
		// undo the allocation if it couldn't be linked in.
		_ = fsys.freeInode(child)
		return err
	}
	return nil
}

// FileOpen resolves path and allocates a free slot in the open-file table.
func (fsys *FileSystem) FileOpen(path string) (int, error) {
	num, err := fsys.pathToInode(path)
	if err != nil {
		return -1, ErrFileNotFound
	}
	in, err := fsys.getInode(num)
	if err != nil {
		return -1, err
	}
	if in.isDir {
		return -1, ErrFileNotFound
	}

	for i := range fsys.openFiles {
		if !fsys.openFiles[i].isOpen {
			fsys.openFiles[i] = openFileEntry{
				inodeNumber: int32(num),
				seekPos:     0,
				isOpen:      true,
			}
			return i, nil
		}
	}
	return -1, ErrTooManyFilesOpen
}

// FileClose releases handle. Closing an already-closed or out-of-range handle
// is a no-op: no data is buffered in memory, so there is nothing to flush.
func (fsys *FileSystem) FileClose(handle int) {
	if handle < 0 || handle >= OpenFileTableSize {
		return
	}
	fsys.openFiles[handle].isOpen = false
}

func (fsys *FileSystem) openHandle(handle int) (*openFileEntry, error) {
	if handle < 0 || handle >= OpenFileTableSize || !fsys.openFiles[handle].isOpen {
		return nil, ErrFileNotOpen
	}
	return &fsys.openFiles[handle], nil
}

// FileWrite writes up to n bytes of buf at the handle's current seek
// position, growing the file on demand. A short write (fewer than n bytes)
// signals disk-full, not an error.
func (fsys *FileSystem) FileWrite(handle int, buf []byte, n int) (int, error) {
	entry, err := fsys.openHandle(handle)
	if err != nil {
		return 0, err
	}
	if n > len(buf) {
		n = len(buf)
	}
	in, err := fsys.getInode(uint32(entry.inodeNumber))
	if err != nil {
		return 0, err
	}

	spos := entry.seekPos
	target := spos + int64(n)

	for int64(in.numBlocks)*BlockSize < target {
		if _, err := fsys.addDataBlock(in); err != nil {
			break
		}
	}

	avail := int64(in.numBlocks)*BlockSize - spos
	if avail < 0 {
		avail = 0
	}
	toWrite := int64(n)
	if toWrite > avail {
		toWrite = avail
	}

	written := int64(0)
	cur := spos
	for written < toWrite {
		blockIdx := uint32(cur / BlockSize)
		offset := int(cur % BlockSize)
		abs, err := fsys.getDataBlock(in, blockIdx)
		if err != nil {
			return int(written), err
		}
		block := make([]byte, BlockSize)
		if err := fsys.dev.ReadBlock(abs, block); err != nil {
			return int(written), fmt.Errorf("%w: %v", ErrInternal, err)
		}
		chunk := int64(BlockSize - offset)
		if remaining := toWrite - written; chunk > remaining {
			chunk = remaining
		}
		copy(block[offset:offset+int(chunk)], buf[written:written+chunk])
		if err := fsys.dev.WriteBlock(abs, block); err != nil {
			return int(written), fmt.Errorf("%w: %v", ErrInternal, err)
		}
		written += chunk
		cur += chunk
	}

	entry.seekPos = spos + written
	return int(written), nil
}

// FileRead reads up to n bytes into buf from the handle's current seek
// position. Returns 0 if the cursor is already at or past the end of the
// file.
func (fsys *FileSystem) FileRead(handle int, buf []byte, n int) (int, error) {
	entry, err := fsys.openHandle(handle)
	if err != nil {
		return 0, err
	}
	if n > len(buf) {
		n = len(buf)
	}
	in, err := fsys.getInode(uint32(entry.inodeNumber))
	if err != nil {
		return 0, err
	}

	size := int64(in.numBlocks) * BlockSize
	spos := entry.seekPos
	if spos >= size {
		return 0, nil
	}

	toRead := int64(n)
	if avail := size - spos; toRead > avail {
		toRead = avail
	}

	read := int64(0)
	cur := spos
	for read < toRead {
		blockIdx := uint32(cur / BlockSize)
		offset := int(cur % BlockSize)
		abs, err := fsys.getDataBlock(in, blockIdx)
		if err != nil {
			return int(read), err
		}
		block := make([]byte, BlockSize)
		if err := fsys.dev.ReadBlock(abs, block); err != nil {
			return int(read), fmt.Errorf("%w: %v", ErrInternal, err)
		}
		chunk := int64(BlockSize - offset)
		if remaining := toRead - read; chunk > remaining {
			chunk = remaining
		}
		copy(buf[read:read+chunk], block[offset:offset+int(chunk)])
		read += chunk
		cur += chunk
	}

	entry.seekPos = spos + read
	return int(read), nil
}

// FileLseek repositions handle's cursor. Seeking past the current end grows
// the file up to the requested offset; if growth only partly succeeds, the
// cursor lands on the last successfully allocated byte instead.
func (fsys *FileSystem) FileLseek(handle int, off int64, cmd LseekCmd) (int64, error) {
	entry, err := fsys.openHandle(handle)
	if err != nil {
		return 0, err
	}
	in, err := fsys.getInode(uint32(entry.inodeNumber))
	if err != nil {
		return 0, err
	}
	size := int64(in.numBlocks) * BlockSize

	var newSeek int64
	switch cmd {
	case LseekCurrent:
		newSeek = entry.seekPos + off
	case LseekAbsolute:
		newSeek = off
	case LseekEnd:
		newSeek = size + off
	default:
		return 0, ErrInvalidLseekCmd
	}

	if newSeek < 0 {
		return 0, ErrInvalidLseekOffset
	}
	if newSeek <= size {
		entry.seekPos = newSeek
		return newSeek, nil
	}

	needed := (newSeek + BlockSize - 1) / BlockSize
	for int64(in.numBlocks) < needed {
		if _, err := fsys.addDataBlock(in); err != nil {
			break
		}
	}

	grownSize := int64(in.numBlocks) * BlockSize
	if grownSize >= newSeek {
		entry.seekPos = newSeek
		return newSeek, nil
	}
	entry.seekPos = grownSize - 1
	return entry.seekPos, nil
}

// FileDelete removes a regular file.
func (fsys *FileSystem) FileDelete(path string) error {
	num, err := fsys.pathToInode(path)
	if err != nil {
		return ErrFileNotFound
	}
	in, err := fsys.getInode(num)
	if err != nil {
		return err
	}
	if in.isDir {
		return ErrNotAFile
	}
	return fsys.deleteFile(path, in)
}

// FileRmdir removes an empty directory. A non-empty directory cannot be
// removed; see isEmptyDir for how emptiness is judged.
func (fsys *FileSystem) FileRmdir(path string) error {
	num, err := fsys.pathToInode(path)
	if err != nil {
		return ErrFileNotFound
	}
	if num == rootInode {
		return ErrInvalidPath
	}
	in, err := fsys.getInode(num)
	if err != nil {
		return err
	}
	if !in.isDir {
		return ErrNotADir
	}
	empty, err := fsys.isEmptyDir(in)
	if err != nil {
		return err
	}
	if !empty {
		return ErrInvalidPath
	}
	return fsys.deleteFile(path, in)
}

// deleteFile frees every data and indirection block owned by in, returns the
// inode to the free-inode list, and compacts it out of its parent directory.
func (fsys *FileSystem) deleteFile(path string, in *inode) error {
	for k := int64(in.numBlocks) - 1; k >= 0; k-- {
		abs, err := fsys.getDataBlock(in, uint32(k))
		if err != nil {
			return err
		}
		if err := fsys.freeDataBlock(abs); err != nil {
			return err
		}
	}

	if in.indirect1 != 0 {
		if err := fsys.freeDataBlock(in.indirect1); err != nil {
			return err
		}
	}
	if in.indirect2 != 0 {
		top, err := fsys.readIndirectionBlock(in.indirect2)
		if err != nil {
			return err
		}
		for _, second := range top {
			if second != 0 {
				if err := fsys.freeDataBlock(second); err != nil {
					return err
				}
			}
		}
		if err := fsys.freeDataBlock(in.indirect2); err != nil {
			return err
		}
	}

	if err := fsys.freeInode(in); err != nil {
		return err
	}

	parentPath, leaf := splitParentAndLeaf(path)
	parentNum, err := fsys.pathToInode(parentPath)
	if err != nil {
		return fmt.Errorf("%w: parent of %s vanished mid-delete", ErrInternal, path)
	}
	parent, err := fsys.getInode(parentNum)
	if err != nil {
		return err
	}
	return fsys.removeEntry(parent, leaf)
}

// FileListDir returns the names in the directory at path, terminated by an
// empty string.
func (fsys *FileSystem) FileListDir(path string) ([]string, error) {
	num, err := fsys.pathToInode(path)
	if err != nil {
		return nil, ErrFileNotFound
	}
	in, err := fsys.getInode(num)
	if err != nil {
		return nil, err
	}
	if !in.isDir {
		return nil, ErrNotADir
	}

	if in.numBlocks == 0 {
		return []string{""}, nil
	}

	names := make([]string, 0, DirEntriesPerBlock*in.numBlocks+1)
	for b := uint32(0); b < in.numBlocks; b++ {
		abs, err := fsys.getDataBlock(in, b)
		if err != nil {
			return nil, err
		}
		entries, err := fsys.readDirBlock(abs)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.inodeNumber != 0 {
				names = append(names, e.name)
			}
		}
	}
	return append(names, ""), nil
}

// FilePrintDir writes each name from FileListDir to w, one per line, stopping
// at the empty-string terminator.
func (fsys *FileSystem) FilePrintDir(path string, w io.Writer) error {
	names, err := fsys.FileListDir(path)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == "" {
			break
		}
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
