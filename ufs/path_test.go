package ufs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPathIgnoresLeadingAndRepeatedSlashes(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitPath("//a//b/"))
	require.Equal(t, []string{}, splitPath("/"))
	require.Equal(t, []string{"a"}, splitPath("a"))
}

func TestSplitParentAndLeaf(t *testing.T) {
	cases := []struct {
		path       string
		wantParent string
		wantLeaf   string
	}{
		{"/a", "/", "a"},
		{"/a/b", "/a", "b"},
		{"/a/b/", "/a", "b"},
		{"a", "", "a"},
	}
	for _, c := range cases {
		parent, leaf := splitParentAndLeaf(c.path)
		require.Equal(t, c.wantParent, parent, "path %q", c.path)
		require.Equal(t, c.wantLeaf, leaf, "path %q", c.path)
	}
}

func TestPathToInodeResolvesNestedDirectories(t *testing.T) {
	fsys := formatAndOpen(t, 64)
	root, err := fsys.getInode(rootInode)
	require.NoError(t, err)

	d, err := fsys.allocInode()
	require.NoError(t, err)
	d.isDir = true
	require.NoError(t, fsys.putInode(d))
	require.NoError(t, fsys.addDirToInode(root, "d", d.number))

	f, err := fsys.allocInode()
	require.NoError(t, err)
	require.NoError(t, fsys.putInode(f))
	require.NoError(t, fsys.addDirToInode(d, "f", f.number))

	num, err := fsys.pathToInode("/d/f")
	require.NoError(t, err)
	require.Equal(t, f.number, num)
}

func TestPathToInodeRejectsUnknownComponent(t *testing.T) {
	fsys := formatAndOpen(t, 64)
	_, err := fsys.pathToInode("/nope")
	require.ErrorIs(t, err, ErrInvalidPath)
}
