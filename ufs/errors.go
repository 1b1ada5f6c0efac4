package ufs

import "fmt"

// Errno is a stable, negative error code. The numeric values are part of a
// fixed cross-process contract and must never be renumbered.
type Errno int

const (
	ErrDiskFull           Errno = -1
	ErrMaxFiles           Errno = -2
	ErrFileExists         Errno = -3
	ErrPastEnd            Errno = -4
	ErrFileNotFound       Errno = -5
	ErrInvalidPath        Errno = -6
	ErrTooManyFilesOpen   Errno = -7
	ErrFileNotOpen        Errno = -8
	ErrInternal           Errno = -20
	ErrMinBlocks          Errno = -21
	ErrInvalidLseekCmd    Errno = -22
	ErrInvalidLseekOffset Errno = -23
	ErrNotAFile           Errno = -25
	ErrNotADir            Errno = -26
	ErrInvalidDiskFile    Errno = -27
)

var errnoText = map[Errno]string{
	ErrDiskFull:           "disk full",
	ErrMaxFiles:           "maximum number of files allocated",
	ErrFileExists:         "file already exists",
	ErrPastEnd:            "operation past end of file",
	ErrFileNotFound:       "file not found",
	ErrInvalidPath:        "invalid path",
	ErrTooManyFilesOpen:   "too many files open",
	ErrFileNotOpen:        "file not open",
	ErrInternal:           "internal I/O error",
	ErrMinBlocks:          "image too small",
	ErrInvalidLseekCmd:    "invalid lseek command",
	ErrInvalidLseekOffset: "invalid lseek offset",
	ErrNotAFile:           "not a regular file",
	ErrNotADir:            "not a directory",
	ErrInvalidDiskFile:    "invalid disk image",
}

// Error implements the error interface, so an Errno can be returned and
// compared against with errors.Is like any other Go error, while still
// carrying its exact numeric code.
func (e Errno) Error() string {
	if s, ok := errnoText[e]; ok {
		return s
	}
	return fmt.Sprintf("ufs: unknown error %d", int(e))
}

// Code returns the bare numeric error code, for callers that need the
// fixed integer rather than a Go error value (e.g. a C-style shim).
func (e Errno) Code() int {
	return int(e)
}

// LseekCmd selects the reference point for FileSystem.FileLseek.
type LseekCmd int

const (
	LseekCurrent  LseekCmd = 0
	LseekAbsolute LseekCmd = 1
	LseekEnd      LseekCmd = 2
)
