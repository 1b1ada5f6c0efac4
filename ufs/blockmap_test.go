package ufs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// growTo appends n logical blocks to in via addDataBlock, returning the
// absolute block index of each.
func growTo(t *testing.T, fsys *FileSystem, in *inode, n int) []uint32 {
	t.Helper()
	blocks := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		abs, err := fsys.addDataBlock(in)
		require.NoError(t, err)
		blocks = append(blocks, abs)
	}
	return blocks
}

func newTestFile(t *testing.T, fsys *FileSystem) *inode {
	t.Helper()
	in, err := fsys.allocInode()
	require.NoError(t, err)
	return in
}

func TestAddDataBlockStaysDirectWithinTenBlocks(t *testing.T) {
	fsys := formatAndOpen(t, 64)
	in := newTestFile(t, fsys)

	blocks := growTo(t, fsys, in, DirectPointers)
	require.EqualValues(t, DirectPointers, in.numBlocks)
	require.Zero(t, in.indirect1)
	require.Zero(t, in.indirect2)
	for i, b := range blocks {
		require.Equal(t, b, in.direct[i])
	}
}

func TestAddDataBlockAllocatesIndirect1OnEleventhBlock(t *testing.T) {
	fsys := formatAndOpen(t, 300)
	in := newTestFile(t, fsys)

	growTo(t, fsys, in, DirectPointers)
	require.Zero(t, in.indirect1)

	growTo(t, fsys, in, 1)
	require.NotZero(t, in.indirect1)
	require.EqualValues(t, DirectPointers+1, in.numBlocks)
}

func TestAddDataBlockAllocatesIndirect2AfterIndirect1Fills(t *testing.T) {
	fsys := formatAndOpen(t, 1024)
	in := newTestFile(t, fsys)

	growTo(t, fsys, in, DirectPointers+IndirectFanout)
	require.NotZero(t, in.indirect1)
	require.Zero(t, in.indirect2)

	growTo(t, fsys, in, 1)
	require.NotZero(t, in.indirect2)
	require.EqualValues(t, DirectPointers+IndirectFanout+1, in.numBlocks)
}

func TestGetDataBlockRoundTripsAcrossAllThreeRegions(t *testing.T) {
	fsys := formatAndOpen(t, 1024)
	in := newTestFile(t, fsys)

	total := DirectPointers + IndirectFanout + IndirectFanout + 5
	blocks := growTo(t, fsys, in, total)

	for k, want := range blocks {
		got, err := fsys.getDataBlock(in, uint32(k))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestTrimIndirectionBlocksFreesIndirect1WhenShrunkBelowTen(t *testing.T) {
	fsys := formatAndOpen(t, 300)
	in := newTestFile(t, fsys)
	growTo(t, fsys, in, DirectPointers+3)
	require.NotZero(t, in.indirect1)

	in.numBlocks = DirectPointers - 1
	require.NoError(t, fsys.trimIndirectionBlocks(in))
	require.Zero(t, in.indirect1)
}

func TestTrimIndirectionBlocksFreesIndirect2WhenShrunkBelowThreshold(t *testing.T) {
	fsys := formatAndOpen(t, 1024)
	in := newTestFile(t, fsys)
	growTo(t, fsys, in, DirectPointers+IndirectFanout+3)
	require.NotZero(t, in.indirect2)

	in.numBlocks = DirectPointers + IndirectFanout - 1
	require.NoError(t, fsys.trimIndirectionBlocks(in))
	require.Zero(t, in.indirect2)
}
