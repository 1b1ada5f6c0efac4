package ufs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbrt/unixfs/ufs/internal/testutil"
)

func formatAndOpen(t *testing.T, numBlocks uint32) *FileSystem {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, FormatFS(path, numBlocks))
	fsys, err := OpenFS(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Close() })
	return fsys
}

func TestFormatFSRejectsTooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	err := FormatFS(path, MinBlocks-1)
	require.ErrorIs(t, err, ErrMinBlocks)
}

func TestFormatFSGeometry(t *testing.T) {
	fsys := formatAndOpen(t, 64)

	geo := computeGeometry(64)
	require.Equal(t, geo, fsys.geo)
	require.Equal(t, uint32(12345), fsys.sb.magic)
	require.Equal(t, int32(geo.numInodes), fsys.sb.maxInodes)
	require.Equal(t, int32(geo.numDataBlocks), fsys.sb.maxDataBlocks)
	require.EqualValues(t, 1, fsys.sb.filesAllocated)
}

func TestFormatFSRootInode(t *testing.T) {
	fsys := formatAndOpen(t, 64)

	root, err := fsys.getInode(rootInode)
	require.NoError(t, err)
	require.True(t, root.isDir)
	require.False(t, root.isFree)
	require.EqualValues(t, 1, root.numBlocks)
	require.Equal(t, fsys.geo.dataStart, root.direct[0])
}

func TestFormatFSFreeInodeListLength(t *testing.T) {
	fsys := formatAndOpen(t, 64)

	seen := map[int32]bool{}
	chain := testutil.Walk(int64(fsys.sb.freeInodeList), func(node int64) int64 {
		seen[int32(node)] = true
		in, err := fsys.getInode(uint32(node))
		require.NoError(t, err)
		require.True(t, in.isFree)
		require.False(t, seen[in.nextFreeInode], "cycle in free-inode list")
		return int64(in.nextFreeInode)
	})
	require.EqualValues(t, int(fsys.geo.numInodes)-int(fsys.sb.filesAllocated), len(chain))
}

func TestFormatFSFreeDataBlockListExcludesRootBlock(t *testing.T) {
	fsys := formatAndOpen(t, 64)

	require.EqualValues(t, fsys.geo.dataStart+1, fsys.sb.freeDataBlockList)

	buf := make([]byte, BlockSize)
	chain := testutil.Walk(int64(fsys.sb.freeDataBlockList), func(node int64) int64 {
		require.NoError(t, fsys.dev.ReadBlock(uint32(node), buf))
		return int64(decodeFreeBlockNext(buf))
	})
	require.EqualValues(t, fsys.geo.numDataBlocks-1, len(chain))
}

func TestFormatThenFormatIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, FormatFS(path, 64))
	fsys1, err := OpenFS(path)
	require.NoError(t, err)
	root1, err := fsys1.getInode(rootInode)
	require.NoError(t, err)
	require.NoError(t, fsys1.Close())

	require.NoError(t, FormatFS(path, 64))
	fsys2, err := OpenFS(path)
	require.NoError(t, err)
	root2, err := fsys2.getInode(rootInode)
	require.NoError(t, err)
	defer fsys2.Close()

	require.Equal(t, root1, root2)
	require.Equal(t, fsys1.geo, fsys2.geo)
}
