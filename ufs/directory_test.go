package ufs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddDirAndHasFileRoundTrip(t *testing.T) {
	fsys := formatAndOpen(t, 64)
	root, err := fsys.getInode(rootInode)
	require.NoError(t, err)

	child, err := fsys.allocInode()
	require.NoError(t, err)
	require.NoError(t, fsys.addDirToInode(root, "hello", child.number))

	root, err = fsys.getInode(rootInode)
	require.NoError(t, err)
	num, err := fsys.hasFile(root, "hello")
	require.NoError(t, err)
	require.EqualValues(t, child.number, num)

	missing, err := fsys.hasFile(root, "nope")
	require.NoError(t, err)
	require.EqualValues(t, -1, missing)
}

func TestAddDirAllocatesNewBlockWhenFull(t *testing.T) {
	fsys := formatAndOpen(t, 256)
	root, err := fsys.getInode(rootInode)
	require.NoError(t, err)

	for i := 0; i < DirEntriesPerBlock; i++ {
		child, err := fsys.allocInode()
		require.NoError(t, err)
		name := string(rune('a' + i%26))
		if i >= 26 {
			name = name + string(rune('0'+i/26))
		}
		require.NoError(t, fsys.addDirToInode(root, name, child.number))
		root, err = fsys.getInode(rootInode)
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, root.numBlocks)

	extra, err := fsys.allocInode()
	require.NoError(t, err)
	require.NoError(t, fsys.addDirToInode(root, "overflow", extra.number))
	root, err = fsys.getInode(rootInode)
	require.NoError(t, err)
	require.EqualValues(t, 2, root.numBlocks)
}

func TestRemoveEntrySameBlockCompaction(t *testing.T) {
	fsys := formatAndOpen(t, 64)
	root, err := fsys.getInode(rootInode)
	require.NoError(t, err)

	names := []string{"a", "b", "c"}
	for _, n := range names {
		child, err := fsys.allocInode()
		require.NoError(t, err)
		require.NoError(t, fsys.addDirToInode(root, n, child.number))
		root, err = fsys.getInode(rootInode)
		require.NoError(t, err)
	}

	require.NoError(t, fsys.removeEntry(root, "a"))
	root, err = fsys.getInode(rootInode)
	require.NoError(t, err)

	remaining, err := fsys.hasFile(root, "b")
	require.NoError(t, err)
	require.Greater(t, remaining, int32(0))
	remaining, err = fsys.hasFile(root, "c")
	require.NoError(t, err)
	require.Greater(t, remaining, int32(0))
	gone, err := fsys.hasFile(root, "a")
	require.NoError(t, err)
	require.EqualValues(t, -1, gone)
}

func TestRemoveLastEntryFreesTrailingBlock(t *testing.T) {
	fsys := formatAndOpen(t, 64)
	root, err := fsys.getInode(rootInode)
	require.NoError(t, err)

	child, err := fsys.allocInode()
	require.NoError(t, err)
	require.NoError(t, fsys.addDirToInode(root, "only", child.number))
	root, err = fsys.getInode(rootInode)
	require.NoError(t, err)
	require.EqualValues(t, 1, root.numBlocks)

	require.NoError(t, fsys.removeEntry(root, "only"))
	root, err = fsys.getInode(rootInode)
	require.NoError(t, err)
	require.EqualValues(t, 0, root.numBlocks)

	empty, err := fsys.isEmptyDir(root)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestIsEmptyDirAfterAllEntriesRemovedButBlockNotShrunk(t *testing.T) {
	// isEmptyDir must scan entry contents, not just check numBlocks==0: here
	// we simulate a block with every slot cleared but still allocated.
	fsys := formatAndOpen(t, 64)
	root, err := fsys.getInode(rootInode)
	require.NoError(t, err)

	child, err := fsys.allocInode()
	require.NoError(t, err)
	require.NoError(t, fsys.addDirToInode(root, "x", child.number))
	root, err = fsys.getInode(rootInode)
	require.NoError(t, err)

	abs, err := fsys.getDataBlock(root, 0)
	require.NoError(t, err)
	var cleared [DirEntriesPerBlock]dirEntry
	require.NoError(t, fsys.writeDirBlock(abs, cleared))

	empty, err := fsys.isEmptyDir(root)
	require.NoError(t, err)
	require.True(t, empty)
}
