package ufs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrnoCodesAreStable(t *testing.T) {
	cases := map[Errno]int{
		ErrDiskFull:           -1,
		ErrMaxFiles:           -2,
		ErrFileExists:         -3,
		ErrPastEnd:            -4,
		ErrFileNotFound:       -5,
		ErrInvalidPath:        -6,
		ErrTooManyFilesOpen:   -7,
		ErrFileNotOpen:        -8,
		ErrInternal:           -20,
		ErrMinBlocks:          -21,
		ErrInvalidLseekCmd:    -22,
		ErrInvalidLseekOffset: -23,
		ErrNotAFile:           -25,
		ErrNotADir:            -26,
		ErrInvalidDiskFile:    -27,
	}
	for errno, code := range cases {
		require.Equal(t, code, errno.Code())
		require.NotEmpty(t, errno.Error())
	}
}

func TestErrnoSatisfiesErrorInterface(t *testing.T) {
	var err error = ErrDiskFull
	require.ErrorIs(t, err, ErrDiskFull)
}
